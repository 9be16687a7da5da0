package layout

import "strings"

var (
	frameHints   = []string{"device", "frame", "skin", "phone", "tablet", "background", "back", "shell", "body", "fore"}
	controlHints = []string{"button", "control", "icon", "touch", "shadow", "onion"}
	// imageryHints qualify a block whose "name" key refers to artwork.
	imageryHints = []string{"image", "background", "foreground", "frame", "skin", "device", "phone", "tablet", "onion", "overlay"}
)

// Candidate is an image referenced inside an orientation subtree.
type Candidate struct {
	Name      string
	Area      int64
	FrameLike bool
	// ControlLike marks buttons, icons and other small assets.
	ControlLike bool
}

// NewCandidate scores name against the enclosing block names.
func NewCandidate(name string, ancestors []string, area int64) Candidate {
	c := Candidate{Name: name, Area: area}
	c.score(name)
	for _, a := range ancestors {
		c.score(a)
	}
	return c
}

func (c *Candidate) score(s string) {
	lower := strings.ToLower(s)
	c.FrameLike = c.FrameLike || containsAny(lower, frameHints)
	c.ControlLike = c.ControlLike || containsAny(lower, controlHints)
}

// Compare orders candidates by preference: negative when a is preferred.
// Keys, most significant first: frame-like and not control-like, not
// control-like, larger area (unknown counts as 0), smaller name.
func Compare(a, b Candidate) int {
	if d := boolRank(a.FrameLike && !a.ControlLike) - boolRank(b.FrameLike && !b.ControlLike); d != 0 {
		return -d
	}
	if d := boolRank(!a.ControlLike) - boolRank(!b.ControlLike); d != 0 {
		return -d
	}
	if aa, ba := max(a.Area, 0), max(b.Area, 0); aa != ba {
		if aa > ba {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Name, b.Name)
}

// Better reports whether a should replace b as the selected image.
func Better(a, b Candidate) bool {
	return Compare(a, b) < 0
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func isImageKey(lowerKey string) bool {
	return lowerKey == "name" || lowerKey == "image" || lowerKey == "filename"
}

// imageEligible decides whether an image key counts as artwork. "image" and
// "filename" always do; "name" only inside a block named like imagery.
func imageEligible(block Frame, lowerKey string) bool {
	if lowerKey != "name" {
		return true
	}
	return containsAny(strings.ToLower(block.Name), imageryHints)
}
