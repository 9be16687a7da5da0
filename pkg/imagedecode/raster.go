package imagedecode

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"runtime"

	"golang.org/x/image/draw"
)

// IsHeadless reports whether the process runs without a graphical display.
func IsHeadless() bool {
	switch runtime.GOOS {
	case "windows", "darwin":
		return false
	}
	return os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == ""
}

// decodeRaster is the last resort: the raw bytes go through the generic
// decoder registry and the pixels are copied into a fresh NRGBA canvas with
// source-copy composition.
func decodeRaster(_ context.Context, path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: unsupported image format: %v", ErrUnsupported, err)
	}

	bounds := src.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("%w: image has no pixels", ErrUnsupported)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)
	return dst, nil
}
