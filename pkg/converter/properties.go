package converter

import (
	"fmt"
	"strconv"

	"github.com/alde/avdskin/pkg/platform"
	"github.com/alde/avdskin/pkg/skinfile"
)

// Property keys written to skin.properties, in output order.
const (
	PropTouch                  = "touch"
	PropPlatformName           = "platformName"
	PropTablet                 = "tablet"
	PropSystemFontFamily       = "systemFontFamily"
	PropProportionalFontFamily = "proportionalFontFamily"
	PropMonospaceFontFamily    = "monospaceFontFamily"
	PropSmallFontSize          = "smallFontSize"
	PropMediumFontSize         = "mediumFontSize"
	PropLargeFontSize          = "largeFontSize"
	PropPixelRatio             = "pixelRatio"
	PropOverrideNames          = "overrideNames"
)

// BuildProperties assembles the skin properties for a device class.
func BuildProperties(profile platform.Profile, tablet bool, pixelRatio float64) (*skinfile.Properties, error) {
	fonts := profile.Fonts
	values := [][2]string{
		{PropTouch, "true"},
		{PropPlatformName, profile.PlatformName},
		{PropTablet, strconv.FormatBool(tablet)},
		{PropSystemFontFamily, fonts.System},
		{PropProportionalFontFamily, fonts.Proportional},
		{PropMonospaceFontFamily, fonts.Monospace},
		{PropSmallFontSize, strconv.Itoa(fonts.Small)},
		{PropMediumFontSize, strconv.Itoa(fonts.Medium)},
		{PropLargeFontSize, strconv.Itoa(fonts.Large)},
		{PropPixelRatio, FormatPixelRatio(pixelRatio)},
		{PropOverrideNames, profile.OverrideNames(tablet)},
	}

	props := skinfile.NewProperties()
	for _, kv := range values {
		if _, _, err := props.Set(kv[0], kv[1]); err != nil {
			return nil, fmt.Errorf("failed to set property %s: %w", kv[0], err)
		}
	}
	return props, nil
}

// FormatPixelRatio renders a ratio with six fraction digits.
func FormatPixelRatio(ratio float64) string {
	return strconv.FormatFloat(ratio, 'f', 6, 64)
}
