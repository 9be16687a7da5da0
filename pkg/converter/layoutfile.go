package converter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Well-known file names inside an emulator skin directory.
const (
	LayoutFileName   = "layout"
	HardwareFileName = "hardware.ini"
	SkinExtension    = ".skin"
)

// FindLayoutFile locates the layout file of a skin: directly inside skinDir,
// or exactly one directory level below it.
func FindLayoutFile(skinDir string) (string, error) {
	direct := filepath.Join(skinDir, LayoutFileName)
	if isRegularFile(direct) {
		return direct, nil
	}

	entries, err := os.ReadDir(skinDir)
	if err != nil {
		return "", fmt.Errorf("failed to locate layout file: %w", err)
	}

	var candidates []string
	for _, entry := range entries {
		child := filepath.Join(skinDir, entry.Name())
		switch {
		case entry.IsDir():
			if nested := filepath.Join(child, LayoutFileName); isRegularFile(nested) {
				candidates = append(candidates, nested)
			}
		case strings.EqualFold(entry.Name(), LayoutFileName) && isRegularFile(child):
			candidates = append(candidates, child)
		}
	}

	switch len(candidates) {
	case 0:
		return "", invalidf("Unable to locate layout file inside %s", skinDir)
	case 1:
		return candidates[0], nil
	default:
		return "", invalidf("Multiple layout files detected within %s: %s", skinDir, strings.Join(candidates, ", "))
	}
}

// HasLayoutFile reports whether FindLayoutFile would succeed.
func HasLayoutFile(skinDir string) bool {
	_, err := FindLayoutFile(skinDir)
	return err == nil
}

// DefaultOutputPath places <dir>.skin next to the skin directory.
func DefaultOutputPath(skinDir string) string {
	clean := filepath.Clean(skinDir)
	return filepath.Join(filepath.Dir(clean), filepath.Base(clean)+SkinExtension)
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
