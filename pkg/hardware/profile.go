// Package hardware reads the emulator hardware profile (hardware.ini) that
// ships with an AVD skin and derives the device characteristics the skin
// format needs.
package hardware

import (
	"bufio"
	"bytes"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Defaults applied when a key is missing or unparseable.
const (
	DefaultWidthPixels  = 1080
	DefaultHeightPixels = 1920
	DefaultDensityDPI   = 420.0

	// FallbackPixelRatio is returned by PixelRatio for a non-positive density.
	FallbackPixelRatio = 6.0
	// fallbackTabletDensity is only used by IsTabletLike.
	fallbackTabletDensity = 320.0

	// TabletThresholdInches is the default screen diagonal at which a device is a tablet.
	TabletThresholdInches = 6.5

	mmPerInch = 25.4
)

// Profile keys recognized in hardware.ini.
const (
	KeyWidth        = "hw.lcd.width"
	KeyHeight       = "hw.lcd.height"
	KeyDensity      = "hw.lcd.density"
	KeyPixelDensity = "hw.lcd.pixelDensity"
)

// Profile holds the numeric device characteristics.
type Profile struct {
	WidthPixels  int
	HeightPixels int
	DensityDPI   float64
}

// DefaultProfile returns the profile used when no hardware.ini exists.
func DefaultProfile() Profile {
	return Profile{
		WidthPixels:  DefaultWidthPixels,
		HeightPixels: DefaultHeightPixels,
		DensityDPI:   DefaultDensityDPI,
	}
}

// PixelRatio returns pixels per millimetre.
func (p Profile) PixelRatio() float64 {
	if p.DensityDPI <= 0 {
		return FallbackPixelRatio
	}
	return p.DensityDPI / mmPerInch
}

// DiagonalInches returns the physical screen diagonal.
func (p Profile) DiagonalInches() float64 {
	density := p.DensityDPI
	if density <= 0 {
		density = fallbackTabletDensity
	}
	widthInches := float64(p.WidthPixels) / density
	heightInches := float64(p.HeightPixels) / density
	return math.Hypot(widthInches, heightInches)
}

// IsTabletLike reports whether the screen diagonal reaches thresholdInches.
func (p Profile) IsTabletLike(thresholdInches float64) bool {
	return p.DiagonalInches() >= thresholdInches
}

// Read loads the profile at path. A missing file yields DefaultProfile.
// Values are advisory: anything unparseable falls back to its default.
func Read(path string, logger *slog.Logger) (Profile, error) {
	if logger == nil {
		logger = slog.Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("no hardware profile, using defaults", slog.String("path", path))
			return DefaultProfile(), nil
		}
		return Profile{}, fmt.Errorf("failed to read hardware profile %s: %w", path, err)
	}

	values := parseValues(data, logger)
	return FromValues(values), nil
}

// FromValues interprets already parsed key/value pairs.
func FromValues(values map[string]string) Profile {
	density := parseFloat(values[KeyDensity], parseFloat(values[KeyPixelDensity], DefaultDensityDPI))
	return Profile{
		WidthPixels:  parseInt(values[KeyWidth], DefaultWidthPixels),
		HeightPixels: parseInt(values[KeyHeight], DefaultHeightPixels),
		DensityDPI:   density,
	}
}

// parseValues parses the whole file with godotenv, retrying line by line when
// a single malformed line makes the whole-file parse fail.
func parseValues(data []byte, logger *slog.Logger) map[string]string {
	values, err := godotenv.Parse(bytes.NewReader(data))
	if err == nil {
		return values
	}
	logger.Debug("hardware profile needs line-by-line parsing", slog.Any("error", err))

	values = make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		parsed, err := godotenv.Unmarshal(line)
		if err != nil {
			continue
		}
		for k, v := range parsed {
			values[k] = v
		}
	}
	return values
}

func parseInt(value string, defaultValue int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func parseFloat(value string, defaultValue float64) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return defaultValue
	}
	return f
}
