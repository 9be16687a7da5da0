package converter

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"github.com/alde/avdskin/internal/logging"
	"github.com/alde/avdskin/pkg/imagedecode"
	"github.com/alde/avdskin/pkg/platform"
	"github.com/alde/avdskin/pkg/skinfile"
)

const testLayout = `parts {
    device {
        display {
            width   40
            height  60
            x       0
            y       0
        }
    }
    portrait {
        background {
            image   port_back.png
        }
    }
    landscape {
        background {
            image   land_back.png
        }
    }
}
layouts {
    portrait {
        part2 {
            name    device
            x       10
            y       20
        }
    }
    landscape {
        part2 {
            name    device
            x       20
            y       10
            rotation 3
        }
    }
}
`

// writeSkin builds a synthetic emulator skin and returns its directory.
func writeSkin(t *testing.T, root, name, layoutText, hardwareIni string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, LayoutFileName), layoutText)
	if hardwareIni != "" {
		writeFile(t, filepath.Join(dir, HardwareFileName), hardwareIni)
	}
	saveImage(t, filepath.Join(dir, "port_back.png"), 60, 100)
	saveImage(t, filepath.Join(dir, "land_back.png"), 100, 60)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func saveImage(t *testing.T, path string, w, h int) {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 0x30, G: 0x60, B: 0x90, A: 0xff})
	if err := imaging.Save(img, path); err != nil {
		t.Fatal(err)
	}
}

func newTestConverter(t *testing.T, opts Options) *Converter {
	t.Helper()
	opts.Logger = logging.Discard()
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	}
	c, err := New(opts)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return c
}

func TestNewDefaults(t *testing.T) {
	c := newTestConverter(t, Options{InputPath: "skins/pixel"})

	if c.options.Platform.PlatformName != "and" {
		t.Errorf("Expected default platform 'and', got '%s'", c.options.Platform.PlatformName)
	}
	if c.options.TabletThresholdInches != 6.5 {
		t.Errorf("Expected threshold 6.5, got %v", c.options.TabletThresholdInches)
	}
	if c.startTime.IsZero() {
		t.Error("Start time should be set")
	}
}

func TestNewRequiresInput(t *testing.T) {
	_, err := New(Options{})
	if !errors.Is(err, ErrUsage) {
		t.Errorf("Expected usage error, got %v", err)
	}
}

func TestNewRejectsCompression(t *testing.T) {
	if _, err := New(Options{InputPath: "x", Compression: "maximum"}); err == nil {
		t.Error("Expected error for unknown compression level")
	}
}

func TestConvertPhoneSkin(t *testing.T) {
	root := t.TempDir()
	skinDir := writeSkin(t, root, "pixel", testLayout, "")

	c := newTestConverter(t, Options{InputPath: skinDir})
	out, err := c.Convert(context.Background())
	if err != nil {
		t.Fatalf("Convert() failed: %v", err)
	}

	if want := filepath.Join(root, "pixel.skin"); out != want {
		t.Errorf("Expected default output %s, got %s", want, out)
	}

	r, err := skinfile.NewReader(out)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if err := r.Validate(); err != nil {
		t.Errorf("Archive layout invalid: %v", err)
	}

	props, err := r.Properties()
	if err != nil {
		t.Fatal(err)
	}
	wantKeys := []string{
		PropTouch, PropPlatformName, PropTablet, PropSystemFontFamily, PropProportionalFontFamily,
		PropMonospaceFontFamily, PropSmallFontSize, PropMediumFontSize, PropLargeFontSize,
		PropPixelRatio, PropOverrideNames,
	}
	if got := props.Keys(); strings.Join(got, ",") != strings.Join(wantKeys, ",") {
		t.Errorf("Unexpected property order: %v", got)
	}
	for key, want := range map[string]string{
		PropTouch:               "true",
		PropPlatformName:        "and",
		PropTablet:              "false",
		PropMonospaceFontFamily: "Droid Sans Mono",
		PropLargeFontSize:       "20",
		PropPixelRatio:          "16.535433",
		PropOverrideNames:       "phone,android,android-phone",
	} {
		if got := props.GetString(key, ""); got != want {
			t.Errorf("Property %s: expected '%s', got '%s'", key, want, got)
		}
	}

	frame, err := r.Image(skinfile.EntryFrame)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, _, a := frame.At(10, 20).RGBA(); a != 0 {
		t.Errorf("Display origin should be transparent, alpha %d", a)
	}
	if _, _, _, a := frame.At(9, 20).RGBA(); a != 0xffff {
		t.Errorf("Pixel left of display should be opaque, alpha %d", a)
	}

	mask, err := r.Image(skinfile.EntryMaskLandscape)
	if err != nil {
		t.Fatal(err)
	}
	if got := mask.Bounds(); got != image.Rect(0, 0, 100, 60) {
		t.Errorf("Landscape mask bounds %v", got)
	}
	// rotated display: 60x40 at 20,10
	if _, _, _, a := mask.At(79, 49).RGBA(); a != 0xffff {
		t.Errorf("Last display pixel should be opaque in the mask, alpha %d", a)
	}
	if _, _, _, a := mask.At(80, 49).RGBA(); a != 0 {
		t.Errorf("Pixel right of display should be transparent in the mask, alpha %d", a)
	}

	stats := c.GetStats()
	if stats.OutputFileSize == 0 {
		t.Error("Output size should be recorded")
	}
	if stats.Landscape.Definition.Display.Width != 60 {
		t.Errorf("Expected rotated landscape width 60, got %d", stats.Landscape.Definition.Display.Width)
	}
}

func TestConvertTabletSkin(t *testing.T) {
	root := t.TempDir()
	skinDir := writeSkin(t, root, "tab", testLayout, "hw.lcd.width=1536\nhw.lcd.height=2048\nhw.lcd.density=160\n")
	out := filepath.Join(root, "out", "deep", "tablet.skin")

	c := newTestConverter(t, Options{InputPath: skinDir, OutputPath: out})
	got, err := c.Convert(context.Background())
	if err != nil {
		t.Fatalf("Convert() failed: %v", err)
	}
	if got != out {
		t.Errorf("Expected output %s, got %s", out, got)
	}

	r, err := skinfile.NewReader(out)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	props, err := r.Properties()
	if err != nil {
		t.Fatal(err)
	}
	if v := props.GetString(PropTablet, ""); v != "true" {
		t.Errorf("Expected tablet=true, got %s", v)
	}
	if v := props.GetString(PropPixelRatio, ""); v != "6.299213" {
		t.Errorf("Expected pixelRatio 6.299213, got %s", v)
	}
	if v := props.GetString(PropOverrideNames, ""); v != "tablet,android,android-tablet" {
		t.Errorf("Unexpected overrideNames %s", v)
	}
}

func TestConvertIOSProfile(t *testing.T) {
	root := t.TempDir()
	skinDir := writeSkin(t, root, "ios", testLayout, "")
	profile, err := platform.GetProfile("ios")
	if err != nil {
		t.Fatal(err)
	}

	c := newTestConverter(t, Options{InputPath: skinDir, Platform: profile.WithFonts(platform.Fonts{Small: 9})})
	out, err := c.Convert(context.Background())
	if err != nil {
		t.Fatalf("Convert() failed: %v", err)
	}

	r, err := skinfile.NewReader(out)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	props, _ := r.Properties()
	if v := props.GetString(PropPlatformName, ""); v != "ios" {
		t.Errorf("Expected platformName ios, got %s", v)
	}
	if v := props.GetString(PropSmallFontSize, ""); v != "9" {
		t.Errorf("Expected smallFontSize 9, got %s", v)
	}
	if v := props.GetString(PropSystemFontFamily, ""); v != "Helvetica" {
		t.Errorf("Expected Helvetica, got %s", v)
	}
}

func TestConvertRefusesExistingOutput(t *testing.T) {
	root := t.TempDir()
	skinDir := writeSkin(t, root, "pixel", testLayout, "")
	out := filepath.Join(root, "pixel.skin")
	writeFile(t, out, "original")

	_, err := newTestConverter(t, Options{InputPath: skinDir}).Convert(context.Background())
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("Expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("Unexpected message: %v", err)
	}

	data, _ := os.ReadFile(out)
	if string(data) != "original" {
		t.Error("Existing output must not be modified")
	}
}

func TestConvertTwiceFailsSecondTime(t *testing.T) {
	root := t.TempDir()
	skinDir := writeSkin(t, root, "pixel", testLayout, "")

	out, err := newTestConverter(t, Options{InputPath: skinDir}).Convert(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	before, _ := os.ReadFile(out)

	_, err = newTestConverter(t, Options{InputPath: skinDir}).Convert(context.Background())
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("Expected validation error, got %v", err)
	}
	after, _ := os.ReadFile(out)
	if !bytes.Equal(before, after) {
		t.Error("Second run modified the archive")
	}
}

func TestConvertValidationFailures(t *testing.T) {
	portraitOnly := strings.SplitN(testLayout, "    landscape {", 2)[0] + "}\n"
	badDisplay := strings.Replace(testLayout, "width   40", "width   0", 1)
	missingImage := strings.Replace(testLayout, "land_back.png", "missing.png", 1)

	tests := []struct {
		name    string
		layout  string
		message string
	}{
		{"missing orientation", portraitOnly, "portrait and landscape"},
		{"invalid display", badDisplay, "Invalid display dimensions for PORTRAIT"},
		{"missing image", missingImage, "Missing image 'missing.png' for LANDSCAPE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			skinDir := writeSkin(t, root, "skin", tt.layout, "")

			_, err := newTestConverter(t, Options{InputPath: skinDir}).Convert(context.Background())
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("Expected validation error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("Expected message containing %q, got %q", tt.message, err.Error())
			}
			if _, statErr := os.Stat(filepath.Join(root, "skin.skin")); !os.IsNotExist(statErr) {
				t.Error("No archive should be written on failure")
			}
		})
	}
}

func TestConvertInputNotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	writeFile(t, file, "x")

	_, err := newTestConverter(t, Options{InputPath: file}).Convert(context.Background())
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestConvertMalformedLayoutInteger(t *testing.T) {
	root := t.TempDir()
	skinDir := writeSkin(t, root, "skin", strings.Replace(testLayout, "x       10", "x       ten", 1), "")

	_, err := newTestConverter(t, Options{InputPath: skinDir}).Convert(context.Background())
	if err == nil || !strings.Contains(err.Error(), "invalid integer") {
		t.Errorf("Expected integer syntax error, got %v", err)
	}
}

func TestConvertNestedLayout(t *testing.T) {
	root := t.TempDir()
	skinDir := filepath.Join(root, "nexus")
	nested := filepath.Join(skinDir, "nexus_5")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(nested, LayoutFileName), testLayout)
	saveImage(t, filepath.Join(nested, "port_back.png"), 60, 100)
	saveImage(t, filepath.Join(nested, "land_back.png"), 100, 60)

	c := newTestConverter(t, Options{InputPath: skinDir})
	if _, err := c.Convert(context.Background()); err != nil {
		t.Fatalf("Convert() failed: %v", err)
	}
	if got := c.GetStats().Portrait.ImagePath; got != filepath.Join(nested, "port_back.png") {
		t.Errorf("Image should resolve beside the layout, got %s", got)
	}
}

// pngRunner stands in for dwebp by writing a PNG to the -o argument.
type pngRunner struct {
	calls int
}

func (r *pngRunner) CombinedOutput(_ context.Context, _ string, args ...string) ([]byte, error) {
	r.calls++
	img := imaging.New(100, 60, color.NRGBA{A: 0xff})
	return nil, imaging.Save(img, args[len(args)-1])
}

func TestConvertWebPThroughDwebp(t *testing.T) {
	root := t.TempDir()
	skinDir := writeSkin(t, root, "webp", strings.Replace(testLayout, "land_back.png", "land_back.webp", 1), "")
	writeFile(t, filepath.Join(skinDir, "land_back.webp"), "RIFF not really webp")

	runner := &pngRunner{}
	c := newTestConverter(t, Options{InputPath: skinDir, Runner: runner, Headless: func() bool { return true }})
	if _, err := c.Convert(context.Background()); err != nil {
		t.Fatalf("Convert() failed: %v", err)
	}
	if runner.calls != 1 {
		t.Errorf("Expected one dwebp invocation, got %d", runner.calls)
	}
}

func TestConvertUndecodableImage(t *testing.T) {
	root := t.TempDir()
	skinDir := writeSkin(t, root, "broken", strings.Replace(testLayout, "land_back.png", "land_back.webp", 1), "")
	writeFile(t, filepath.Join(skinDir, "land_back.webp"), "garbage")

	runner := missingToolRunner{}
	c := newTestConverter(t, Options{InputPath: skinDir, Runner: runner, Headless: func() bool { return true }})
	_, err := c.Convert(context.Background())

	var decodeErr *imagedecode.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Expected DecodeError, got %v", err)
	}
	if !decodeErr.NeedsDwebp || !strings.Contains(err.Error(), "dwebp") {
		t.Errorf("Headless WebP failure should mention dwebp: %v", err)
	}
}

type missingToolRunner struct{}

func (missingToolRunner) CombinedOutput(context.Context, string, ...string) ([]byte, error) {
	return nil, imagedecode.ErrToolNotFound
}

func TestFindLayoutFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := FindLayoutFile(dir); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error for empty dir, got %v", err)
	}

	for _, sub := range []string{"a", "b"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatal(err)
		}
		writeFile(t, filepath.Join(dir, sub, LayoutFileName), "")
	}
	_, err := FindLayoutFile(dir)
	if !errors.Is(err, ErrValidation) || !strings.Contains(err.Error(), "Multiple layout files") {
		t.Errorf("Expected ambiguity error, got %v", err)
	}
	if HasLayoutFile(dir) {
		t.Error("Ambiguous directory must not count as a skin")
	}

	writeFile(t, filepath.Join(dir, LayoutFileName), "")
	got, err := FindLayoutFile(dir)
	if err != nil || got != filepath.Join(dir, LayoutFileName) {
		t.Errorf("Direct layout should win, got %s, %v", got, err)
	}
}

func TestDefaultOutputPath(t *testing.T) {
	if got := DefaultOutputPath("/skins/pixel_4/"); got != filepath.Join("/skins", "pixel_4.skin") {
		t.Errorf("Unexpected default output path %s", got)
	}
}

func TestFormatPixelRatio(t *testing.T) {
	if got := FormatPixelRatio(560 / 25.4); got != "22.047244" {
		t.Errorf("Expected 22.047244, got %s", got)
	}
	if got := FormatPixelRatio(6); got != "6.000000" {
		t.Errorf("Expected 6.000000, got %s", got)
	}
}

func TestWriteSummary(t *testing.T) {
	root := t.TempDir()
	skinDir := writeSkin(t, root, "pixel", testLayout, "")
	c := newTestConverter(t, Options{InputPath: skinDir})
	if _, err := c.Convert(context.Background()); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	c.WriteSummary(&buf)
	out := buf.String()
	for _, want := range []string{"pixel.skin", "PORTRAIT:", "LANDSCAPE:", "display 60x40+20+10", "phone (phone,android,android-phone)", "16.535433"} {
		if !strings.Contains(out, want) {
			t.Errorf("Summary missing %q:\n%s", want, out)
		}
	}
}
