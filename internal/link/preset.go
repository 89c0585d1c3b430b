package link

import (
	"context"
	"math"

	"itermlink/internal/iterm"
	"itermlink/internal/logging"
)

// ColorsEqual compares two colors the way iTerm2 stores them: each
// channel rounded to an integer, halves to even, and the same color
// space.
func ColorsEqual(a, b iterm.Color) bool {
	return math.RoundToEven(a.Red) == math.RoundToEven(b.Red) &&
		math.RoundToEven(a.Green) == math.RoundToEven(b.Green) &&
		math.RoundToEven(a.Blue) == math.RoundToEven(b.Blue) &&
		math.RoundToEven(a.Alpha) == math.RoundToEven(b.Alpha) &&
		a.Space == b.Space
}

// ProfileUsesPreset reports whether every color of preset is set in p.
// A preset with no colors matches nothing, unlike a vacuous all-match
// which would pair it with any profile. This keeps an empty preset from
// shadowing the real one in CurrentPreset.
func ProfileUsesPreset(p *iterm.Profile, preset *iterm.ColorPreset) bool {
	if len(preset.Values) == 0 {
		return false
	}
	for _, v := range preset.Values {
		c, ok := p.ColorWithKey(v.Key)
		if !ok || !ColorsEqual(c, v.Color) {
			return false
		}
	}
	return true
}

// Presets lists the installed color presets.
func Presets(ctx context.Context, conn *iterm.Connection) ([]string, error) {
	return iterm.ListColorPresets(ctx, conn)
}

// CurrentPreset returns the first installed preset whose colors all match
// profile, or false if none does. A nil profile means the default one.
func CurrentPreset(ctx context.Context, conn *iterm.Connection, profile *iterm.Profile) (string, bool, error) {
	profile, err := orDefaultProfile(ctx, conn, profile)
	if err != nil {
		return "", false, err
	}

	names, err := iterm.ListColorPresets(ctx, conn)
	if err != nil {
		return "", false, err
	}
	for _, name := range names {
		preset, err := iterm.GetColorPreset(ctx, conn, name)
		if err != nil {
			return "", false, err
		}
		if ProfileUsesPreset(profile, preset) {
			return name, true, nil
		}
	}
	return "", false, nil
}

// ChangePreset applies the preset called name to profile, or to the
// default profile when profile is nil.
func ChangePreset(ctx context.Context, conn *iterm.Connection, name string, profile *iterm.Profile) error {
	profile, err := orDefaultProfile(ctx, conn, profile)
	if err != nil {
		return err
	}
	preset, err := iterm.GetColorPreset(ctx, conn, name)
	if err != nil {
		return err
	}
	if err := profile.SetColorPreset(ctx, preset); err != nil {
		return err
	}
	logging.Info("Applied color preset", "preset", name, "profile", profile.Name(), "colors", len(preset.Values))
	return nil
}

func orDefaultProfile(ctx context.Context, conn *iterm.Connection, profile *iterm.Profile) (*iterm.Profile, error) {
	if profile != nil {
		return profile, nil
	}
	return iterm.GetDefaultProfile(ctx, conn)
}
