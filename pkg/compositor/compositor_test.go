package compositor

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alde/avdskin/pkg/layout"
)

// artwork returns an opaque gradient so every pixel is distinct.
func artwork(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 10), G: uint8(y * 10), B: 0x80, A: 0xff})
		}
	}
	return img
}

func inside(d layout.DisplayArea, x, y int) bool {
	return x >= d.X && x < d.X+d.Width && y >= d.Y && y < d.Y+d.Height
}

func TestWithTransparentDisplay(t *testing.T) {
	src := artwork(20, 30)
	display := layout.DisplayArea{X: 4, Y: 5, Width: 10, Height: 12}
	frame := New(src, display).WithTransparentDisplay()

	require.Equal(t, src.Bounds(), frame.Bounds())
	for y := 0; y < 30; y++ {
		for x := 0; x < 20; x++ {
			got := frame.NRGBAAt(x, y)
			if inside(display, x, y) {
				assert.Equal(t, color.NRGBA{}, got, "pixel %d,%d", x, y)
			} else {
				assert.Equal(t, src.NRGBAAt(x, y), got, "pixel %d,%d", x, y)
			}
		}
	}
}

func TestOverlay(t *testing.T) {
	src := artwork(20, 30)
	display := layout.DisplayArea{X: 4, Y: 5, Width: 10, Height: 12}
	mask := New(src, display).Overlay()

	require.Equal(t, 20, mask.Bounds().Dx())
	require.Equal(t, 30, mask.Bounds().Dy())
	for y := 0; y < 30; y++ {
		for x := 0; x < 20; x++ {
			want := color.NRGBA{}
			if inside(display, x, y) {
				want = color.NRGBA{A: 0xff}
			}
			assert.Equal(t, want, mask.NRGBAAt(x, y), "pixel %d,%d", x, y)
		}
	}
}

func TestOriginalIsNotModified(t *testing.T) {
	src := artwork(8, 8)
	before := make([]byte, len(src.Pix))
	copy(before, src.Pix)

	frame, mask := New(src, layout.DisplayArea{X: 1, Y: 1, Width: 4, Height: 4}).Layers()

	assert.Equal(t, before, src.Pix)
	assert.NotSame(t, src, frame)
	assert.NotEqual(t, src.Pix, frame.Pix)
	assert.Equal(t, uint8(0xff), mask.NRGBAAt(2, 2).A)
}

func TestClipping(t *testing.T) {
	tests := []struct {
		name        string
		display     layout.DisplayArea
		clearedArea int
	}{
		{"partially outside", layout.DisplayArea{X: 6, Y: -2, Width: 10, Height: 5}, 4 * 3},
		{"fully outside", layout.DisplayArea{X: 50, Y: 50, Width: 10, Height: 10}, 0},
		{"covers everything", layout.DisplayArea{X: -5, Y: -5, Width: 100, Height: 100}, 100},
		{"degenerate", layout.DisplayArea{X: 2, Y: 2, Width: -3, Height: 4}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, mask := New(artwork(10, 10), tt.display).Layers()

			cleared, marked := 0, 0
			for y := 0; y < 10; y++ {
				for x := 0; x < 10; x++ {
					if frame.NRGBAAt(x, y).A == 0 {
						cleared++
					}
					if mask.NRGBAAt(x, y).A == 0xff {
						marked++
					}
				}
			}
			assert.Equal(t, tt.clearedArea, cleared)
			assert.Equal(t, tt.clearedArea, marked)
		})
	}
}

func TestNonZeroOriginArtwork(t *testing.T) {
	src := image.NewNRGBA(image.Rect(100, 100, 110, 110))
	for i := range src.Pix {
		src.Pix[i] = 0xff
	}

	frame, mask := New(src, layout.DisplayArea{X: 0, Y: 0, Width: 2, Height: 2}).Layers()

	assert.Equal(t, image.Rect(0, 0, 10, 10), frame.Bounds())
	assert.Equal(t, color.NRGBA{}, frame.NRGBAAt(1, 1))
	assert.Equal(t, uint8(0xff), frame.NRGBAAt(2, 2).A)
	assert.Equal(t, uint8(0xff), mask.NRGBAAt(0, 0).A)
}
