package cmd

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/alde/avdskin/internal/ui"
	"github.com/alde/avdskin/pkg/skinfile"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.skin>",
	Short: "Verify and describe a .skin archive",
	Long: `Open a .skin archive, check that it holds the expected entries in the
expected order, and print each entry's size, content type and image
dimensions followed by the skin properties.

Examples:
  avdskin inspect pixel_7.skin`,
	Args: argsRange(1, 1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	r, err := skinfile.NewReader(args[0])
	if err != nil {
		return err
	}
	defer r.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n\n", ui.Bold(args[0]))

	entries, err := r.Entries()
	if err != nil {
		return err
	}
	printEntries(out, entries)

	validateErr := r.Validate()
	if validateErr == nil {
		if props, err := r.Properties(); err == nil {
			fmt.Fprintln(out)
			if header, err := r.Header(); err == nil {
				for _, line := range header {
					fmt.Fprintln(out, ui.Dim(line))
				}
			}
			for _, key := range props.Keys() {
				fmt.Fprintf(out, "  %-24s %s\n", key, props.GetString(key, ""))
			}
		} else {
			validateErr = err
		}
	}

	fmt.Fprintln(out)
	if validateErr != nil {
		fmt.Fprintln(out, ui.StatusError("archive layout invalid"))
		return validateErr
	}
	fmt.Fprintln(out, ui.StatusSuccess("archive layout valid"))
	return nil
}

func printEntries(out io.Writer, entries []skinfile.EntryInfo) {
	for _, e := range entries {
		dims := ""
		if e.Width > 0 {
			dims = fmt.Sprintf("%dx%d", e.Width, e.Height)
		}
		fmt.Fprintf(out, "  %-16s %9s %9s  %-28s %s\n",
			e.Name, humanize.Bytes(e.Size), humanize.Bytes(e.CompressedSize), e.MIME, dims)
	}
}
