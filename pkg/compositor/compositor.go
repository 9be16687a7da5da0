// Package compositor derives the two drawing layers of a skin orientation
// from the device artwork and its display rectangle.
package compositor

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"github.com/alde/avdskin/pkg/layout"
)

var (
	transparent = image.NewUniform(color.NRGBA{})
	opaqueBlack = image.NewUniform(color.NRGBA{A: 0xff})
)

// DeviceImages pairs decoded device artwork with the screen rectangle inside
// it. The original is never modified.
type DeviceImages struct {
	Original image.Image
	Display  layout.DisplayArea
}

// New creates a DeviceImages value.
func New(original image.Image, display layout.DisplayArea) DeviceImages {
	return DeviceImages{Original: original, Display: display}
}

// WithTransparentDisplay returns a copy of the artwork with the display
// rectangle cleared to fully transparent pixels.
func (d DeviceImages) WithTransparentDisplay() *image.NRGBA {
	frame := imaging.Clone(d.Original)
	if r := d.clip(frame.Bounds()); !r.Empty() {
		draw.Draw(frame, r, transparent, image.Point{}, draw.Src)
	}
	return frame
}

// Overlay returns a transparent canvas the size of the artwork with the
// display rectangle filled opaque black.
func (d DeviceImages) Overlay() *image.NRGBA {
	bounds := d.Original.Bounds()
	mask := imaging.New(bounds.Dx(), bounds.Dy(), color.NRGBA{})
	if r := d.clip(mask.Bounds()); !r.Empty() {
		draw.Draw(mask, r, opaqueBlack, image.Point{}, draw.Src)
	}
	return mask
}

// Layers returns the frame and mask layers.
func (d DeviceImages) Layers() (frame, mask *image.NRGBA) {
	return d.WithTransparentDisplay(), d.Overlay()
}

// clip intersects the display rectangle with bounds. A rectangle without
// positive dimensions covers nothing.
func (d DeviceImages) clip(bounds image.Rectangle) image.Rectangle {
	if !d.Display.Valid() {
		return image.Rectangle{}
	}
	r := image.Rect(d.Display.X, d.Display.Y, d.Display.X+d.Display.Width, d.Display.Y+d.Display.Height)
	return r.Intersect(bounds)
}
