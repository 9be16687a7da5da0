package layout

import (
	"errors"
	"fmt"
)

// Orientation is a display orientation. The zero value is neutral: a block
// whose name does not hint at an orientation.
type Orientation int

const (
	Neutral Orientation = iota
	Portrait
	Landscape
)

// Orientations lists the concrete orientations in output order.
var Orientations = []Orientation{Portrait, Landscape}

func (o Orientation) String() string {
	switch o {
	case Portrait:
		return "PORTRAIT"
	case Landscape:
		return "LANDSCAPE"
	default:
		return "NEUTRAL"
	}
}

// DisplayArea is the screen rectangle inside the device artwork.
type DisplayArea struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Valid reports whether both dimensions are positive.
func (d DisplayArea) Valid() bool {
	return d.Width > 0 && d.Height > 0
}

func (d DisplayArea) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", d.Width, d.Height, d.X, d.Y)
}

// Definition describes one orientation of the skin.
type Definition struct {
	Orientation Orientation
	ImageName   string
	Display     DisplayArea
}

// Errors reported for an orientation that cannot be finalized.
var (
	ErrMissingOrientation = errors.New("orientation not defined")
	ErrMissingImage       = errors.New("no device image found")
	ErrMissingDimensions  = errors.New("missing display dimensions")
)

// Document is the parse result: one definition per orientation, or the
// reason that orientation could not be resolved.
type Document struct {
	definitions map[Orientation]Definition
	problems    map[Orientation]error
}

// Get returns the definition for o, or the reason it is unavailable.
func (d *Document) Get(o Orientation) (Definition, error) {
	if def, ok := d.definitions[o]; ok {
		return def, nil
	}
	if err, ok := d.problems[o]; ok {
		return Definition{}, fmt.Errorf("layout definition for %s is incomplete: %w", o, err)
	}
	return Definition{}, fmt.Errorf("layout definition for %s: %w", o, ErrMissingOrientation)
}

// Portrait returns the portrait definition.
func (d *Document) Portrait() (Definition, error) {
	return d.Get(Portrait)
}

// Landscape returns the landscape definition.
func (d *Document) Landscape() (Definition, error) {
	return d.Get(Landscape)
}

// HasBothOrientations reports whether portrait and landscape both resolved.
func (d *Document) HasBothOrientations() bool {
	_, p := d.definitions[Portrait]
	_, l := d.definitions[Landscape]
	return p && l
}

// Validate returns the joined reasons for every unresolved orientation.
func (d *Document) Validate() error {
	var errs []error
	for _, o := range Orientations {
		if _, err := d.Get(o); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
