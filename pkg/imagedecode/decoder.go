// Package imagedecode resolves an image file on disk into a fully decoded
// bitmap. Decoding walks an ordered chain of strategies and stops at the
// first one that produces an image.
package imagedecode

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/alde/avdskin/internal/logging"
)

var (
	// ErrUnsupported is returned by a strategy that cannot read the file.
	// The chain moves on to the next strategy.
	ErrUnsupported = errors.New("unsupported by strategy")

	// ErrToolNotFound means the external conversion utility is not installed.
	ErrToolNotFound = errors.New("tool not found")
)

// Strategy is one attempt at decoding a file.
type Strategy struct {
	Name   string
	Decode func(ctx context.Context, path string) (image.Image, error)
}

// DecodeError is returned when every strategy failed.
type DecodeError struct {
	Path     string
	Attempts []error
	// NeedsDwebp is set for WebP input on a machine without a display.
	NeedsDwebp bool
}

func (e *DecodeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "failed to decode image %s", e.Path)
	if e.NeedsDwebp {
		b.WriteString(": WebP decoding requires the 'dwebp' command when running headless; install the 'webp' package and ensure 'dwebp' is on the PATH")
	}
	if len(e.Attempts) > 0 {
		msgs := make([]string, 0, len(e.Attempts))
		for _, err := range e.Attempts {
			msgs = append(msgs, err.Error())
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(msgs, "; "))
	}
	return b.String()
}

func (e *DecodeError) Unwrap() []error {
	return e.Attempts
}

// Options configures a Decoder.
type Options struct {
	// DwebpPath is the WebP conversion helper. Defaults to "dwebp".
	DwebpPath string
	// Runner spawns the helper. Defaults to ExecRunner.
	Runner CommandRunner
	// Headless reports whether no display is available. Defaults to IsHeadless.
	Headless func() bool
	Logger   *slog.Logger
}

// Decoder decodes images through an ordered strategy chain.
type Decoder struct {
	strategies []Strategy
	headless   func() bool
	logger     *slog.Logger
}

// New creates a decoder with the standard chain: imaging, re-opened stream,
// explicit provider enumeration, dwebp, raster pipeline.
func New(opts Options) *Decoder {
	if opts.DwebpPath == "" {
		opts.DwebpPath = "dwebp"
	}
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}
	if opts.Headless == nil {
		opts.Headless = IsHeadless
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}

	return &Decoder{
		strategies: []Strategy{
			{Name: "imaging", Decode: decodeWithImaging},
			{Name: "stream", Decode: decodeStream},
			{Name: "providers", Decode: decodeWithProviders},
			{Name: "dwebp", Decode: dwebpStrategy(opts.DwebpPath, opts.Runner, opts.Logger)},
			{Name: "raster", Decode: decodeRaster},
		},
		headless: opts.Headless,
		logger:   opts.Logger,
	}
}

// NewWithStrategies creates a decoder running exactly the given strategies.
func NewWithStrategies(logger *slog.Logger, headless func() bool, strategies ...Strategy) *Decoder {
	if logger == nil {
		logger = logging.Default()
	}
	if headless == nil {
		headless = IsHeadless
	}
	return &Decoder{strategies: strategies, headless: headless, logger: logger}
}

// Decode returns the first successful decode of path. A strategy error that
// does not wrap ErrUnsupported or ErrToolNotFound aborts the chain.
func (d *Decoder) Decode(ctx context.Context, path string) (image.Image, error) {
	var attempts []error

	for _, s := range d.strategies {
		img, err := s.Decode(ctx, path)
		if err == nil && img != nil && !img.Bounds().Empty() {
			d.logger.Debug("decoded image", logging.Path(path), logging.Strategy(s.Name),
				slog.Int("width", img.Bounds().Dx()), slog.Int("height", img.Bounds().Dy()))
			return img, nil
		}

		switch {
		case err == nil:
			attempts = append(attempts, fmt.Errorf("%s: empty image", s.Name))
		case errors.Is(err, ErrUnsupported), errors.Is(err, ErrToolNotFound):
			attempts = append(attempts, fmt.Errorf("%s: %w", s.Name, err))
		default:
			return nil, fmt.Errorf("%s decoding failed for %s: %w", s.Name, path, err)
		}
	}

	return nil, &DecodeError{
		Path:       path,
		Attempts:   attempts,
		NeedsDwebp: isWebP(path) && d.headless(),
	}
}

func isWebP(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".webp")
}
