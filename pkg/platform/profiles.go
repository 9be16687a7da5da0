// Package platform holds the target platform profiles a skin can be built
// for: the platform name, override names and font defaults written into
// skin.properties.
package platform

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Fonts are the font settings of a skin.
type Fonts struct {
	System       string
	Proportional string
	Monospace    string
	Small        int
	Medium       int
	Large        int
}

// Profile describes one target platform.
type Profile struct {
	Name         string
	PlatformName string // value of the platformName property
	Family       string // second override name
	PhoneName    string // last override name for phones
	TabletName   string // last override name for tablets
	Fonts        Fonts
}

var profiles = map[string]Profile{
	"android": {
		Name:         "Android",
		PlatformName: "and",
		Family:       "android",
		PhoneName:    "android-phone",
		TabletName:   "android-tablet",
		Fonts: Fonts{
			System:       "Roboto",
			Proportional: "Roboto",
			Monospace:    "Droid Sans Mono",
			Small:        11,
			Medium:       14,
			Large:        20,
		},
	},
	"ios": {
		Name:         "iOS",
		PlatformName: "ios",
		Family:       "ios",
		PhoneName:    "iphone",
		TabletName:   "ipad",
		Fonts: Fonts{
			System:       "Helvetica",
			Proportional: "Helvetica",
			Monospace:    "Courier",
			Small:        11,
			Medium:       14,
			Large:        20,
		},
	},
}

// DefaultProfile is used when no platform is configured.
const DefaultProfile = "android"

// GetProfile returns a platform profile by name.
func GetProfile(name string) (Profile, error) {
	normalizedName := strings.ToLower(strings.TrimSpace(name))
	if normalizedName == "" {
		normalizedName = DefaultProfile
	}

	if profile, exists := profiles[normalizedName]; exists {
		return profile, nil
	}

	available := slices.Sorted(maps.Keys(profiles))
	return Profile{}, fmt.Errorf("unknown platform profile '%s'. Available profiles: %v", name, available)
}

// ListProfiles returns all available platform profiles.
func ListProfiles() map[string]Profile {
	return maps.Clone(profiles)
}

// OverrideNames returns the comma-joined override triple for the device class.
func (p Profile) OverrideNames(tablet bool) string {
	if tablet {
		return strings.Join([]string{"tablet", p.Family, p.TabletName}, ",")
	}
	return strings.Join([]string{"phone", p.Family, p.PhoneName}, ",")
}

// WithFonts returns a copy of p where every non-zero field of overrides
// replaces the profile value.
func (p Profile) WithFonts(overrides Fonts) Profile {
	f := &p.Fonts
	if overrides.System != "" {
		f.System = overrides.System
	}
	if overrides.Proportional != "" {
		f.Proportional = overrides.Proportional
	}
	if overrides.Monospace != "" {
		f.Monospace = overrides.Monospace
	}
	if overrides.Small > 0 {
		f.Small = overrides.Small
	}
	if overrides.Medium > 0 {
		f.Medium = overrides.Medium
	}
	if overrides.Large > 0 {
		f.Large = overrides.Large
	}
	return p
}
