// Package converter turns an emulator skin directory into a .skin archive.
package converter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/alde/avdskin/internal/logging"
	"github.com/alde/avdskin/pkg/compositor"
	"github.com/alde/avdskin/pkg/hardware"
	"github.com/alde/avdskin/pkg/imagedecode"
	"github.com/alde/avdskin/pkg/layout"
	"github.com/alde/avdskin/pkg/platform"
	"github.com/alde/avdskin/pkg/skinfile"
)

// Options contains conversion settings
type Options struct {
	InputPath  string
	OutputPath string // defaults to DefaultOutputPath(InputPath)

	Platform              platform.Profile
	TabletThresholdInches float64
	Compression           string

	DwebpPath string
	Runner    imagedecode.CommandRunner
	Headless  func() bool

	Logger *slog.Logger
	Now    func() time.Time
}

// Converter runs the conversion pipeline for one skin directory.
type Converter struct {
	options   Options
	decoder   *imagedecode.Decoder
	writer    *skinfile.Writer
	logger    *slog.Logger
	stats     ConversionStats
	startTime time.Time
}

// OrientationStats describes one converted orientation.
type OrientationStats struct {
	Definition layout.Definition
	ImagePath  string
	Width      int
	Height     int
}

// ConversionStats tracks conversion results
type ConversionStats struct {
	InputPath      string
	OutputPath     string
	LayoutPath     string
	Hardware       hardware.Profile
	Portrait       OrientationStats
	Landscape      OrientationStats
	Tablet         bool
	PixelRatio     float64
	OutputFileSize uint64
	ProcessingTime time.Duration
}

// New creates a converter. Missing options fall back to the stock Android
// conversion.
func New(opts Options) (*Converter, error) {
	if opts.InputPath == "" {
		return nil, Usagef("missing skin directory")
	}
	if opts.Platform.PlatformName == "" {
		profile, err := platform.GetProfile(platform.DefaultProfile)
		if err != nil {
			return nil, err
		}
		opts.Platform = profile
	}
	if opts.TabletThresholdInches <= 0 {
		opts.TabletThresholdInches = hardware.TabletThresholdInches
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	writer, err := skinfile.NewWriter(skinfile.Options{Compression: opts.Compression, Now: opts.Now})
	if err != nil {
		return nil, err
	}

	return &Converter{
		options: opts,
		decoder: imagedecode.New(imagedecode.Options{
			DwebpPath: opts.DwebpPath,
			Runner:    opts.Runner,
			Headless:  opts.Headless,
			Logger:    opts.Logger,
		}),
		writer:    writer,
		logger:    opts.Logger,
		startTime: opts.Now(),
	}, nil
}

// Convert performs the conversion and returns the absolute output path.
func (c *Converter) Convert(ctx context.Context) (string, error) {
	skinDir, err := filepath.Abs(c.options.InputPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", c.options.InputPath, err)
	}
	if info, err := os.Stat(skinDir); err != nil || !info.IsDir() {
		return "", invalidf("Input path %s is not a directory", skinDir)
	}
	c.stats.InputPath = skinDir

	outputPath := c.options.OutputPath
	if outputPath == "" {
		outputPath = DefaultOutputPath(skinDir)
	}
	if outputPath, err = filepath.Abs(outputPath); err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", c.options.OutputPath, err)
	}
	if _, err := os.Lstat(outputPath); err == nil {
		return "", invalidf("Output file %s already exists", outputPath)
	}
	c.stats.OutputPath = outputPath

	layoutPath, err := FindLayoutFile(skinDir)
	if err != nil {
		return "", err
	}
	c.stats.LayoutPath = layoutPath
	c.logger.Debug("found layout", logging.Path(layoutPath))

	doc, err := layout.ParseFile(layoutPath, skinDir)
	if err != nil {
		return "", err
	}
	hw, err := hardware.Read(filepath.Join(skinDir, HardwareFileName), c.logger)
	if err != nil {
		return "", err
	}
	c.stats.Hardware = hw

	if !doc.HasBothOrientations() {
		return "", invalidWrap(doc.Validate(), "Layout file must define portrait and landscape display information")
	}
	portraitDef, _ := doc.Portrait()
	landscapeDef, _ := doc.Landscape()

	layoutDir := filepath.Dir(layoutPath)
	portrait, err := c.buildDeviceImages(ctx, skinDir, layoutDir, portraitDef, &c.stats.Portrait)
	if err != nil {
		return "", err
	}
	landscape, err := c.buildDeviceImages(ctx, skinDir, layoutDir, landscapeDef, &c.stats.Landscape)
	if err != nil {
		return "", err
	}

	c.stats.Tablet = hw.IsTabletLike(c.options.TabletThresholdInches)
	c.stats.PixelRatio = hw.PixelRatio()
	props, err := BuildProperties(c.options.Platform, c.stats.Tablet, c.stats.PixelRatio)
	if err != nil {
		return "", err
	}

	portraitFrame, portraitMask := portrait.Layers()
	landscapeFrame, landscapeMask := landscape.Layers()
	images := skinfile.Images{
		Portrait:      portraitFrame,
		Landscape:     landscapeFrame,
		PortraitMask:  portraitMask,
		LandscapeMask: landscapeMask,
	}
	if err := c.writer.WriteFile(outputPath, images, props); err != nil {
		if errors.Is(err, skinfile.ErrExists) {
			return "", invalidf("Output file %s already exists", outputPath)
		}
		return "", fmt.Errorf("failed to write skin: %w", err)
	}

	if err := c.calculateFinalStats(); err != nil {
		return "", err
	}
	c.logger.Debug("skin created", logging.Path(outputPath),
		slog.String("size", humanize.Bytes(c.stats.OutputFileSize)),
		slog.Bool("tablet", c.stats.Tablet))

	return outputPath, nil
}

// buildDeviceImages resolves, decodes and validates one orientation.
func (c *Converter) buildDeviceImages(ctx context.Context, skinDir, layoutDir string, def layout.Definition, stats *OrientationStats) (compositor.DeviceImages, error) {
	imagePath := layout.ResolveImagePath(skinDir, layoutDir, def.ImageName)
	if !isRegularFile(imagePath) {
		return compositor.DeviceImages{}, invalidf("Missing image '%s' for %s", def.ImageName, def.Orientation)
	}

	img, err := c.decoder.Decode(ctx, imagePath)
	if err != nil {
		return compositor.DeviceImages{}, fmt.Errorf("failed to read image %s: %w", imagePath, err)
	}
	if !def.Display.Valid() {
		return compositor.DeviceImages{}, invalidf("Invalid display dimensions for %s: %s", def.Orientation, def.Display)
	}

	c.logger.Debug("orientation resolved",
		logging.Orientation(def.Orientation.String()),
		logging.Path(imagePath),
		slog.String("display", def.Display.String()))

	*stats = OrientationStats{
		Definition: def,
		ImagePath:  imagePath,
		Width:      img.Bounds().Dx(),
		Height:     img.Bounds().Dy(),
	}
	return compositor.New(img, def.Display), nil
}

// calculateFinalStats records output size and elapsed time.
func (c *Converter) calculateFinalStats() error {
	outputStat, err := os.Stat(c.stats.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to get output file size: %w", err)
	}
	c.stats.OutputFileSize = uint64(outputStat.Size())
	c.stats.ProcessingTime = c.options.Now().Sub(c.startTime)
	return nil
}

// GetStats returns the current conversion statistics
func (c *Converter) GetStats() ConversionStats {
	return c.stats
}

