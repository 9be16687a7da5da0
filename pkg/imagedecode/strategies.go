package imagedecode

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"slices"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	xwebp "golang.org/x/image/webp"
)

// Provider is an explicitly enumerated format reader.
type Provider struct {
	Name   string
	MIME   []string
	Decode func(r io.Reader) (image.Image, error)
}

// Providers lists every format reader known to the provider strategy, in the
// order they are tried when content sniffing is inconclusive.
var Providers = []Provider{
	{Name: "png", MIME: []string{"image/png"}, Decode: png.Decode},
	{Name: "jpeg", MIME: []string{"image/jpeg"}, Decode: jpeg.Decode},
	{Name: "gif", MIME: []string{"image/gif"}, Decode: gif.Decode},
	{Name: "bmp", MIME: []string{"image/bmp", "image/x-ms-bmp"}, Decode: bmp.Decode},
	{Name: "tiff", MIME: []string{"image/tiff"}, Decode: tiff.Decode},
	{Name: "webp", MIME: []string{"image/webp"}, Decode: webp.Decode},
	{Name: "webp-go", MIME: []string{"image/webp"}, Decode: xwebp.Decode},
}

// decodeWithImaging is the standard reader entry point.
func decodeWithImaging(_ context.Context, path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return img, nil
}

// decodeStream re-opens the file and hands the raw stream to the registered
// format table, bypassing any name-based handling.
func decodeStream(_ context.Context, path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return img, nil
}

// decodeWithProviders sniffs the content type and tries matching providers
// first, then every remaining provider.
func decodeWithProviders(_ context.Context, path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}

	detected := mimetype.Detect(data).String()

	var errs []error
	for _, p := range orderProviders(detected) {
		img, err := decodeSafely(p, data)
		if err == nil {
			return img, nil
		}
		errs = append(errs, fmt.Errorf("%s: %v", p.Name, err))
	}

	return nil, fmt.Errorf("%w: no provider accepted %s content (%v)", ErrUnsupported, detected, errs)
}

func orderProviders(mime string) []Provider {
	ordered := make([]Provider, 0, len(Providers))
	var rest []Provider
	for _, p := range Providers {
		if slices.Contains(p.MIME, mime) {
			ordered = append(ordered, p)
		} else {
			rest = append(rest, p)
		}
	}
	return append(ordered, rest...)
}

// decodeSafely guards against decoders that panic on foreign input.
func decodeSafely(p Provider, data []byte) (img image.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, fmt.Errorf("decoder panic: %v", r)
		}
	}()
	return p.Decode(bytes.NewReader(data))
}
