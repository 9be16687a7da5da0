package skinfile

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/magiconair/properties"
)

// EntryInfo describes one archive member.
type EntryInfo struct {
	Name           string
	Size           uint64
	CompressedSize uint64
	MIME           string
	Width          int
	Height         int
}

// Reader provides read-only access to a .skin archive.
type Reader struct {
	filePath  string
	zipReader *zip.ReadCloser
}

// NewReader opens the archive at filePath.
func NewReader(filePath string) (*Reader, error) {
	zipReader, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open skin file: %w", err)
	}

	return &Reader{
		filePath:  filePath,
		zipReader: zipReader,
	}, nil
}

// Close closes the archive.
func (r *Reader) Close() error {
	if r.zipReader != nil {
		return r.zipReader.Close()
	}
	return nil
}

// Names lists the entry names in archive order.
func (r *Reader) Names() []string {
	names := make([]string, 0, len(r.zipReader.File))
	for _, f := range r.zipReader.File {
		names = append(names, f.Name)
	}
	return names
}

// Validate checks that the archive holds exactly the expected entries in the
// expected order.
func (r *Reader) Validate() error {
	names := r.Names()
	if len(names) != len(EntryOrder) {
		return fmt.Errorf("expected %d entries, found %d: %s", len(EntryOrder), len(names), strings.Join(names, ", "))
	}
	for i, want := range EntryOrder {
		if names[i] != want {
			return fmt.Errorf("entry %d is %s, expected %s", i+1, names[i], want)
		}
	}
	return nil
}

// Entries describes every member, sniffing content types and image sizes.
func (r *Reader) Entries() ([]EntryInfo, error) {
	infos := make([]EntryInfo, 0, len(r.zipReader.File))
	for _, f := range r.zipReader.File {
		data, err := r.readFile(f)
		if err != nil {
			return nil, err
		}
		info := EntryInfo{
			Name:           f.Name,
			Size:           f.UncompressedSize64,
			CompressedSize: f.CompressedSize64,
			MIME:           mimetype.Detect(data).String(),
		}
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			info.Width, info.Height = cfg.Width, cfg.Height
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Image decodes an image entry.
func (r *Reader) Image(name string) (image.Image, error) {
	data, err := r.ReadEntry(name)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return img, nil
}

// Properties parses the properties entry.
func (r *Reader) Properties() (*Properties, error) {
	data, err := r.ReadEntry(EntryProperties)
	if err != nil {
		return nil, err
	}
	p, err := properties.Load(data, properties.UTF8)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", EntryProperties, err)
	}
	p.DisableExpansion = true
	return p, nil
}

// Header returns the leading comment lines of the properties entry.
func (r *Reader) Header() ([]string, error) {
	data, err := r.ReadEntry(EntryProperties)
	if err != nil {
		return nil, err
	}
	var header []string
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "#") {
			break
		}
		header = append(header, strings.TrimPrefix(line, "#"))
	}
	return header, nil
}

// ReadEntry returns the raw bytes of an entry.
func (r *Reader) ReadEntry(name string) ([]byte, error) {
	for _, f := range r.zipReader.File {
		if f.Name == name {
			return r.readFile(f)
		}
	}
	return nil, fmt.Errorf("entry not found in %s: %s", r.filePath, name)
}

func (r *Reader) readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	return io.ReadAll(rc)
}
