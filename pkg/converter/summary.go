package converter

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
)

const rule = "================================================================"

// WriteSummary prints a human readable report of the last conversion.
func (c *Converter) WriteSummary(w io.Writer) {
	s := c.stats
	class := "phone"
	if s.Tablet {
		class = "tablet"
	}

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "Conversion Summary")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Input:         %s\n", s.InputPath)
	fmt.Fprintf(w, "Layout:        %s\n", s.LayoutPath)
	fmt.Fprintf(w, "Output:        %s (%s)\n", filepath.Base(s.OutputPath), humanize.Bytes(s.OutputFileSize))
	for _, o := range []OrientationStats{s.Portrait, s.Landscape} {
		fmt.Fprintf(w, "%-14s %s %dx%d, display %s\n",
			o.Definition.Orientation.String()+":", filepath.Base(o.ImagePath), o.Width, o.Height, o.Definition.Display)
	}
	fmt.Fprintf(w, "Hardware:      %dx%d @ %s dpi (%.2f in)\n",
		s.Hardware.WidthPixels, s.Hardware.HeightPixels, humanize.Ftoa(s.Hardware.DensityDPI), s.Hardware.DiagonalInches())
	fmt.Fprintf(w, "Device class:  %s (%s)\n", class, c.options.Platform.OverrideNames(s.Tablet))
	fmt.Fprintf(w, "Pixel ratio:   %s px/mm\n", FormatPixelRatio(s.PixelRatio))
	fmt.Fprintf(w, "Processing:    %v\n", s.ProcessingTime.Round(time.Millisecond))
	fmt.Fprintln(w, rule)
}
