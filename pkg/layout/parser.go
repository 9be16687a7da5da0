// Package layout interprets the nested block grammar of an emulator skin
// "layout" file and extracts, per orientation, the device image and the
// display rectangle.
//
// The grammar is line oriented: "//" and "#" start comments, a line ending in
// "{" opens a named block, a line equal to "}" closes it, and any other line
// is a key/value pair where "=" counts as whitespace. Parsing is a fold over
// the lines: each line maps the current state to a new one.
package layout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/alde/avdskin/pkg/imagedecode"
)

// SyntaxError reports a malformed value on a given line.
type SyntaxError struct {
	Line  int
	Key   string
	Value string
	Err   error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("layout line %d: invalid integer value '%s' for key %s", e.Line, e.Value, e.Key)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// AreaFunc returns the pixel area of an image file, or -1 if unreadable.
type AreaFunc func(path string) int64

// Option configures a Parser.
type Option func(*Parser)

// WithAreaFunc replaces the image area probe.
func WithAreaFunc(f AreaFunc) Option {
	return func(p *Parser) {
		p.area = f
	}
}

// Parser turns layout text into a Document.
type Parser struct {
	skinDir   string
	layoutDir string
	area      AreaFunc
}

// NewParser creates a parser resolving image names against skinDir first
// and layoutDir second.
func NewParser(skinDir, layoutDir string, opts ...Option) *Parser {
	p := &Parser{
		skinDir:   skinDir,
		layoutDir: layoutDir,
		area:      imagedecode.Area,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseFile reads and parses the layout file at path.
func ParseFile(path, skinDir string, opts ...Option) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file %s: %w", path, err)
	}
	return NewParser(skinDir, filepath.Dir(path), opts...).Parse(string(data))
}

// ResolveImagePath locates an image referenced by the layout: inside the skin
// directory, else beside the layout file, else the skin directory path even
// though nothing exists there.
func ResolveImagePath(skinDir, layoutDir, name string) string {
	candidate := filepath.Clean(filepath.Join(skinDir, name))
	if isRegularFile(candidate) {
		return candidate
	}
	if layoutDir != "" {
		sibling := filepath.Clean(filepath.Join(layoutDir, name))
		if isRegularFile(sibling) {
			return sibling
		}
	}
	return candidate
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// state is the fold accumulator.
type state struct {
	frames   stack
	base     rect
	builders map[Orientation]builder
}

func (s state) withBuilder(o Orientation, b builder) state {
	next := make(map[Orientation]builder, len(s.builders)+1)
	for k, v := range s.builders {
		next[k] = v
	}
	next[o] = b
	s.builders = next
	return s
}

// Parse interprets layout text.
func (p *Parser) Parse(text string) (*Document, error) {
	st := state{}
	for i, raw := range strings.Split(text, "\n") {
		next, err := p.step(st, raw)
		if err != nil {
			var se *SyntaxError
			if errors.As(err, &se) {
				se.Line = i + 1
			}
			return nil, err
		}
		st = next
	}
	return st.finish(), nil
}

func (s state) finish() *Document {
	doc := &Document{
		definitions: make(map[Orientation]Definition),
		problems:    make(map[Orientation]error),
	}
	for _, o := range Orientations {
		b, ok := s.builders[o]
		if !ok {
			continue
		}
		def, err := b.build(o, s.base)
		if err != nil {
			doc.problems[o] = err
			continue
		}
		doc.definitions[o] = def
	}
	return doc
}

// step is the per-line transition.
func (p *Parser) step(st state, raw string) (state, error) {
	line := strings.TrimSpace(stripComments(raw))
	switch {
	case line == "":
		return st, nil
	case strings.HasSuffix(line, "{"):
		st.frames = st.frames.push(NewFrame(line[:len(line)-1]))
		return st, nil
	case line == "}":
		st.frames = st.frames.pop()
		return st, nil
	default:
		return p.assign(st, line)
	}
}

func (p *Parser) assign(st state, line string) (state, error) {
	top, ok := st.frames.top()
	if !ok {
		return st, nil
	}
	key, value, ok := splitKeyValue(line)
	if !ok {
		return st, nil
	}
	value = unquote(value)
	lowerKey := strings.ToLower(key)
	orientation := st.frames.orientation()

	if orientation == Neutral && st.frames.inDeviceDisplay() {
		if !isRectKey(lowerKey) {
			return st, nil
		}
		n, err := parseInt(key, value)
		if err != nil {
			return st, err
		}
		st.base, _ = st.base.with(lowerKey, n)
		return st, nil
	}

	if top.IsPart && lowerKey == "name" {
		top.DevicePart = strings.EqualFold(value, "device")
		st.frames = st.frames.replaceTop(top)
	}
	if orientation == Neutral {
		return st, nil
	}

	b := st.builders[orientation]
	switch {
	case isImageKey(lowerKey) && imageEligible(top, lowerKey):
		path := ResolveImagePath(p.skinDir, p.layoutDir, value)
		b = b.consider(NewCandidate(value, st.frames.names(), p.area(path)))

	case strings.Contains(strings.ToLower(top.Name), "display"):
		if isRectKey(lowerKey) {
			n, err := parseInt(key, value)
			if err != nil {
				return st, err
			}
			b.override, _ = b.override.with(lowerKey, n)
		}

	case st.frames.inDevicePart():
		switch lowerKey {
		case "x", "y", "rotation":
			n, err := parseInt(key, value)
			if err != nil {
				return st, err
			}
			switch lowerKey {
			case "x":
				b.offsetX = &n
			case "y":
				b.offsetY = &n
			default:
				b.rotation = &n
			}
		}
	}
	return st.withBuilder(orientation, b), nil
}

func isRectKey(lowerKey string) bool {
	switch lowerKey {
	case "x", "y", "width", "height":
		return true
	}
	return false
}

// stripComments cuts the line at the first "//" or "#".
func stripComments(line string) string {
	cut := -1
	if i := strings.Index(line, "//"); i >= 0 {
		cut = i
	}
	if i := strings.IndexByte(line, '#'); i >= 0 && (cut < 0 || i < cut) {
		cut = i
	}
	if cut >= 0 {
		return line[:cut]
	}
	return line
}

// splitKeyValue treats "=" as whitespace and splits off the first token.
func splitKeyValue(line string) (key, value string, ok bool) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(line, "=", " "))
	i := strings.IndexFunc(cleaned, unicode.IsSpace)
	if i < 0 {
		return "", "", false
	}
	return cleaned[:i], strings.TrimSpace(cleaned[i:]), true
}

// unquote strips one pair of matching single or double quotes.
func unquote(value string) string {
	value = strings.TrimSpace(value)
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}

func parseInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, &SyntaxError{Key: key, Value: value, Err: err}
	}
	return n, nil
}
