// Package skinfile reads and writes .skin archives: four PNG layers and a
// properties file stored in a fixed order.
package skinfile

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/magiconair/properties"
)

// Archive entry names.
const (
	EntryFrame             = "skin.png"
	EntryFrameLandscape    = "skin_l.png"
	EntryMask              = "skin_map.png"
	EntryMaskLandscape     = "skin_map_l.png"
	EntryProperties        = "skin.properties"
	DefaultGenerator       = "avdskin"
	defaultCompressionName = "default"
)

// EntryOrder is the order entries are written in.
var EntryOrder = []string{EntryFrame, EntryFrameLandscape, EntryMask, EntryMaskLandscape, EntryProperties}

// ErrExists is returned when the output file already exists.
var ErrExists = errors.New("output file already exists")

// Properties is the ordered key/value set written to skin.properties.
type Properties = properties.Properties

// Images holds the four generated layers.
type Images struct {
	Portrait      image.Image
	Landscape     image.Image
	PortraitMask  image.Image
	LandscapeMask image.Image
}

func (i Images) ordered() []image.Image {
	return []image.Image{i.Portrait, i.Landscape, i.PortraitMask, i.LandscapeMask}
}

// Options configures a Writer.
type Options struct {
	// Compression is one of fast, default or best.
	Compression string
	// Generator appears in the properties header comment.
	Generator string
	// Now stamps the header comment and entry times. Defaults to time.Now.
	Now func() time.Time
}

// Writer serializes skin archives.
type Writer struct {
	level     png.CompressionLevel
	method    uint16
	generator string
	now       func() time.Time
}

// NewWriter creates a writer for the given options.
func NewWriter(opts Options) (*Writer, error) {
	level, method, err := compressionSettings(opts.Compression)
	if err != nil {
		return nil, err
	}
	w := &Writer{
		level:     level,
		method:    method,
		generator: opts.Generator,
		now:       opts.Now,
	}
	if w.generator == "" {
		w.generator = DefaultGenerator
	}
	if w.now == nil {
		w.now = time.Now
	}
	return w, nil
}

// compressionSettings maps a level name to the PNG encoder level and the zip
// method. Fast skips deflate entirely.
func compressionSettings(name string) (png.CompressionLevel, uint16, error) {
	switch strings.ToLower(name) {
	case "", defaultCompressionName:
		return png.DefaultCompression, zip.Deflate, nil
	case "best":
		return png.BestCompression, zip.Deflate, nil
	case "fast":
		return png.BestSpeed, zip.Store, nil
	default:
		return 0, 0, fmt.Errorf("invalid compression level: %s (valid options: fast, default, best)", name)
	}
}

// WriteFile creates path and writes the archive into it. An existing file is
// never touched; a partially written file is removed on failure.
func (w *Writer) WriteFile(path string, images Images, props *Properties) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	return w.Write(f, images, props)
}

// Write streams the archive to out.
func (w *Writer) Write(out io.Writer, images Images, props *Properties) error {
	layers := images.ordered()
	for i, img := range layers {
		if img == nil {
			return fmt.Errorf("missing image for %s", EntryOrder[i])
		}
	}
	if props == nil {
		return fmt.Errorf("missing properties for %s", EntryProperties)
	}

	now := w.now()
	zw := zip.NewWriter(out)

	for i, img := range layers {
		if err := w.addImage(zw, EntryOrder[i], img, now); err != nil {
			zw.Close()
			return err
		}
	}
	if err := w.addProperties(zw, props, now); err != nil {
		zw.Close()
		return err
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return nil
}

func (w *Writer) create(zw *zip.Writer, name string, now time.Time) (io.Writer, error) {
	header := &zip.FileHeader{
		Name:     name,
		Method:   w.method,
		Modified: now,
	}
	entry, err := zw.CreateHeader(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create zip entry %s: %w", name, err)
	}
	return entry, nil
}

func (w *Writer) addImage(zw *zip.Writer, name string, img image.Image, now time.Time) error {
	entry, err := w.create(zw, name, now)
	if err != nil {
		return err
	}
	if err := imaging.Encode(entry, img, imaging.PNG, imaging.PNGCompressionLevel(w.level)); err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return nil
}

func (w *Writer) addProperties(zw *zip.Writer, props *Properties, now time.Time) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "#Created by %s on %s\n", w.generator, now.Format(time.RFC3339))
	if _, err := props.Write(&buf, properties.UTF8); err != nil {
		return fmt.Errorf("failed to render %s: %w", EntryProperties, err)
	}

	entry, err := w.create(zw, EntryProperties, now)
	if err != nil {
		return err
	}
	if _, err := entry.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write %s: %w", EntryProperties, err)
	}
	return nil
}

// NewProperties returns an empty ordered property set with ${} expansion
// disabled, so values are written verbatim.
func NewProperties() *Properties {
	p := properties.NewProperties()
	p.DisableExpansion = true
	return p
}
