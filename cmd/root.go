package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/alde/avdskin/internal/config"
	"github.com/alde/avdskin/internal/logging"
	"github.com/alde/avdskin/pkg/converter"
	"github.com/alde/avdskin/pkg/platform"
)

var (
	verbose    bool
	logJSON    bool
	configPath string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "avdskin",
	Short: "Convert Android emulator skins into .skin archives",
	Long: `avdskin converts Android emulator (AVD) device skins into portable .skin
archives: a transparent device frame and a screen mask per orientation plus
a skin.properties file describing the device.

Commands:
- convert: convert one skin directory
- batch:   convert every skin below a directory
- inspect: verify and describe an existing .skin file`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Emit logs as JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (default $"+config.EnvConfigPath+")")
}

// Execute runs the CLI and exits with status 1 on any error.
func Execute() {
	os.Exit(ExecuteArgs(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// ExecuteArgs runs the CLI with explicit arguments and streams and returns
// the process exit code.
func ExecuteArgs(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	resetFlags(rootCmd)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// resetFlags restores every flag to its default so repeated in-process runs
// do not leak state.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logging.SetDefault(logging.New(logging.Options{
		Level:  level,
		Output: cmd.ErrOrStderr(),
		JSON:   logJSON,
	}))

	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = loaded
	return nil
}

// converterOptions maps the loaded configuration onto conversion options.
func converterOptions(inputPath, outputPath string) (converter.Options, error) {
	profile, err := platform.GetProfile(cfg.Platform)
	if err != nil {
		return converter.Options{}, err
	}
	profile = profile.WithFonts(platform.Fonts{
		System:       cfg.Fonts.System,
		Proportional: cfg.Fonts.Proportional,
		Monospace:    cfg.Fonts.Monospace,
		Small:        cfg.Fonts.Small,
		Medium:       cfg.Fonts.Medium,
		Large:        cfg.Fonts.Large,
	})

	return converter.Options{
		InputPath:             inputPath,
		OutputPath:            outputPath,
		Platform:              profile,
		TabletThresholdInches: cfg.TabletThresholdInches,
		Compression:           cfg.Compression,
		DwebpPath:             cfg.DwebpPath,
		Logger:                logging.Default(),
	}, nil
}

// argsRange is cobra.RangeArgs with a usage error in place of cobra's text.
func argsRange(lo, hi int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < lo || len(args) > hi {
			return converter.Usagef("%s", cmd.UseLine())
		}
		return nil
	}
}
