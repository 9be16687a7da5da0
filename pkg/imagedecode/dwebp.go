package imagedecode

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/alde/avdskin/internal/logging"
)

// CommandRunner spawns an external process and returns its combined
// stdout/stderr. It blocks until the process exits.
type CommandRunner interface {
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// CombinedOutput implements CommandRunner.
func (ExecRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil && isNotFound(err) {
		return output, fmt.Errorf("%w: %v", ErrToolNotFound, err)
	}
	return output, err
}

// IsDwebpAvailable reports whether the dwebp binary can be found.
func IsDwebpAvailable(path string) bool {
	_, err := exec.LookPath(path)
	return err == nil
}

func isNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}

// dwebpStrategy converts WebP files to PNG with the dwebp utility. A missing
// utility is logged and skipped; any other failure is fatal for the file.
func dwebpStrategy(dwebpPath string, runner CommandRunner, logger *slog.Logger) func(context.Context, string) (image.Image, error) {
	return func(ctx context.Context, path string) (image.Image, error) {
		if !isWebP(path) {
			return nil, fmt.Errorf("%w: not a .webp file", ErrUnsupported)
		}

		tempFile, err := os.CreateTemp("", "avd-webp-*.png")
		if err != nil {
			return nil, fmt.Errorf("failed to create temp file: %w", err)
		}
		tempPath := tempFile.Name()
		tempFile.Close()
		defer os.Remove(tempPath)

		output, err := runner.CombinedOutput(ctx, dwebpPath, path, "-o", tempPath)
		if err != nil {
			if errors.Is(err, ErrToolNotFound) {
				logger.Warn("dwebp command not available; install the 'webp' package to enable WebP decoding",
					logging.Path(path), logging.Err(err))
				return nil, err
			}
			msg := strings.TrimSpace(string(output))
			if msg != "" {
				return nil, fmt.Errorf("dwebp failed: %w: %s", err, msg)
			}
			return nil, fmt.Errorf("dwebp failed: %w", err)
		}

		img, err := imaging.Open(tempPath)
		if err != nil {
			return nil, fmt.Errorf("dwebp produced an unreadable PNG for %s: %w", path, err)
		}
		return img, nil
	}
}
