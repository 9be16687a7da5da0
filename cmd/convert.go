package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alde/avdskin/internal/logging"
	"github.com/alde/avdskin/pkg/converter"
	"github.com/alde/avdskin/pkg/imagedecode"
)

var convertCmd = &cobra.Command{
	Use:   "convert <avd-skin-dir> [output-path]",
	Short: "Convert an emulator skin directory into a .skin archive",
	Long: `Convert an Android emulator skin directory into a .skin archive.

The directory must contain a layout file, either directly or one directory
level down, plus the device images it references. An optional hardware.ini
supplies screen size and density. Without an output path the archive is
written next to the skin directory as <dir>.skin. Existing files are never
overwritten.

Examples:
  avdskin convert ~/Android/Sdk/skins/pixel_7
  avdskin convert skins/pixel_7 out/pixel7.skin
  avdskin convert skins/pixel_tablet -v --config avdskin.yaml`,
	Args: argsRange(1, 2),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	var outputPath string
	if len(args) == 2 {
		outputPath = args[1]
	}

	opts, err := converterOptions(args[0], outputPath)
	if err != nil {
		return err
	}

	if !imagedecode.IsDwebpAvailable(opts.DwebpPath) {
		logging.Debug("dwebp not found; WebP images rely on the built-in decoders", "dwebp", opts.DwebpPath)
	}

	conv, err := converter.New(opts)
	if err != nil {
		return err
	}

	out, err := conv.Convert(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), out)
	if verbose {
		conv.WriteSummary(cmd.ErrOrStderr())
	}
	return nil
}
