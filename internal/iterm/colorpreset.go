package iterm

import (
	"context"

	"itermlink/internal/protocol"
)

// PresetColor is one color of a preset together with the profile key it
// is written to, e.g. "Ansi 0 Color".
type PresetColor struct {
	Color
	Key string
}

// ColorPreset is a named color scheme installed in iTerm2.
type ColorPreset struct {
	Name   string
	Values []PresetColor
}

// ListColorPresets returns the names of all installed presets.
func ListColorPresets(ctx context.Context, conn *Connection) ([]string, error) {
	resp, err := conn.Call(ctx, &protocol.ClientMessage{ColorPreset: &protocol.ColorPresetRequest{ListPresets: true}})
	if err != nil {
		return nil, err
	}
	if resp.ColorPreset == nil {
		return nil, unexpectedResponse("color preset")
	}
	if err := resp.ColorPreset.Err(); err != nil {
		return nil, err
	}
	return resp.ColorPreset.Names, nil
}

// GetColorPreset fetches the preset called name.
func GetColorPreset(ctx context.Context, conn *Connection, name string) (*ColorPreset, error) {
	resp, err := conn.Call(ctx, &protocol.ClientMessage{ColorPreset: &protocol.ColorPresetRequest{GetPreset: name}})
	if err != nil {
		return nil, err
	}
	if resp.ColorPreset == nil {
		return nil, unexpectedResponse("color preset")
	}
	if err := resp.ColorPreset.Err(); err != nil {
		return nil, err
	}

	preset := &ColorPreset{Name: name}
	for _, s := range resp.ColorPreset.ColorSettings {
		preset.Values = append(preset.Values, PresetColor{
			Color: Color{
				Red:   float64(s.Red) * 255,
				Green: float64(s.Green) * 255,
				Blue:  float64(s.Blue) * 255,
				Alpha: float64(s.Alpha) * 255,
				Space: ColorSpace(s.ColorSpace),
			},
			Key: s.Key,
		})
	}
	return preset, nil
}
