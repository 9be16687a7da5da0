package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/alde/avdskin/internal/worker"
	"github.com/alde/avdskin/pkg/converter"
	"github.com/alde/avdskin/pkg/progress"
)

var (
	batchOutputDir string
	batchWorkers   int
)

var batchCmd = &cobra.Command{
	Use:   "batch <skins-root>",
	Short: "Convert every emulator skin below a directory",
	Long: `Convert every immediate sub-directory of <skins-root> that contains a
layout file. Skins are converted in parallel; each one still runs the same
sequential pipeline as convert. Output paths are printed to stdout, progress
to stderr. The command fails if any skin failed.

Examples:
  avdskin batch ~/Android/Sdk/skins
  avdskin batch skins/ --out dist/ --workers 4`,
	Args: argsRange(1, 1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchOutputDir, "out", "o", "", "Directory for the generated .skin files (default: next to each skin)")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "Number of worker goroutines (0 = auto)")
}

// skinJob converts one skin directory as a worker.Job.
type skinJob struct {
	opts   converter.Options
	output string
}

func (j *skinJob) ID() string {
	return filepath.Base(j.opts.InputPath)
}

func (j *skinJob) Process(ctx context.Context) error {
	conv, err := converter.New(j.opts)
	if err != nil {
		return err
	}
	out, err := conv.Convert(ctx)
	if err != nil {
		return err
	}
	j.output = out
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	dirs, err := findSkinDirs(args[0])
	if err != nil {
		return err
	}
	if len(dirs) == 0 {
		return fmt.Errorf("%w: no skin directories with a layout file found in %s", converter.ErrValidation, args[0])
	}

	jobs := make([]worker.Job, 0, len(dirs))
	skinJobs := make([]*skinJob, 0, len(dirs))
	for _, dir := range dirs {
		var out string
		if batchOutputDir != "" {
			out = filepath.Join(batchOutputDir, filepath.Base(dir)+converter.SkinExtension)
		}
		opts, err := converterOptions(dir, out)
		if err != nil {
			return err
		}
		job := &skinJob{opts: opts}
		jobs = append(jobs, job)
		skinJobs = append(skinJobs, job)
	}

	tracker := progress.NewProgressTracker(cmd.ErrOrStderr(), len(jobs))
	results := worker.Run(cmd.Context(), batchWorkers, tracker, jobs)
	tracker.Finish()

	failed := 0
	for i, r := range results {
		if r.Error != nil {
			failed++
			continue
		}
		fmt.Fprintln(cmd.OutOrStdout(), skinJobs[i].output)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d skins failed", failed, len(results))
	}
	return nil
}

// findSkinDirs lists the immediate sub-directories of root holding a layout.
func findSkinDirs(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: input path %s is not a directory", converter.ErrValidation, root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", root, err)
	}

	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		if converter.HasLayoutFile(dir) {
			dirs = append(dirs, dir)
		}
	}
	return dirs, nil
}
