package layout

import "strings"

// Frame is an open block on the parse stack. Frames are values; flagging a
// part as the device part replaces the frame rather than mutating it.
type Frame struct {
	Name        string
	Orientation Orientation
	// IsPart is set for blocks whose name starts with "part".
	IsPart bool
	// DevicePart is set once a part block declares name=device.
	DevicePart bool
}

// NewFrame builds the frame for a block header.
func NewFrame(name string) Frame {
	name = strings.TrimSpace(name)
	return Frame{
		Name:        name,
		Orientation: DetectOrientation(name),
		IsPart:      strings.HasPrefix(strings.ToLower(name), "part"),
	}
}

// DetectOrientation maps a block name to an orientation.
func DetectOrientation(name string) Orientation {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "land"), strings.Contains(lower, "horz"):
		return Landscape
	case strings.Contains(lower, "port"), strings.Contains(lower, "vert"):
		return Portrait
	default:
		return Neutral
	}
}

// stack is the list of open frames, innermost last. Every operation returns
// a new stack and never writes into a shared backing array.
type stack []Frame

func (s stack) push(f Frame) stack {
	next := make(stack, len(s)+1)
	copy(next, s)
	next[len(s)] = f
	return next
}

func (s stack) pop() stack {
	if len(s) == 0 {
		return s
	}
	return s[:len(s)-1:len(s)-1]
}

func (s stack) top() (Frame, bool) {
	if len(s) == 0 {
		return Frame{}, false
	}
	return s[len(s)-1], true
}

func (s stack) replaceTop(f Frame) stack {
	if len(s) == 0 {
		return s
	}
	next := make(stack, len(s))
	copy(next, s)
	next[len(s)-1] = f
	return next
}

// orientation returns the nearest enclosing non-neutral orientation.
func (s stack) orientation() Orientation {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].Orientation != Neutral {
			return s[i].Orientation
		}
	}
	return Neutral
}

// inDeviceDisplay reports whether the innermost block is "display" directly
// inside "device".
func (s stack) inDeviceDisplay() bool {
	if len(s) < 2 {
		return false
	}
	return strings.EqualFold(s[len(s)-1].Name, "display") &&
		strings.EqualFold(s[len(s)-2].Name, "device")
}

// inDevicePart reports whether any open frame is the flagged device part.
func (s stack) inDevicePart() bool {
	for _, f := range s {
		if f.IsPart && f.DevicePart {
			return true
		}
	}
	return false
}

func (s stack) names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}
