package iterm

import (
	"encoding/json"
	"fmt"
)

// ColorSpace is the color space tag stored with every iTerm2 color.
type ColorSpace string

const (
	ColorSpaceSRGB       ColorSpace = "sRGB"
	ColorSpaceCalibrated ColorSpace = "Calibrated"
	ColorSpaceP3         ColorSpace = "P3"
)

// Color is an iTerm2 color. Components are in [0, 255].
type Color struct {
	Red   float64
	Green float64
	Blue  float64
	Alpha float64
	Space ColorSpace
}

// colorDict is the JSON dictionary iTerm2 uses in profiles, where
// components are in [0, 1].
type colorDict struct {
	Red   float64  `json:"Red Component"`
	Green float64  `json:"Green Component"`
	Blue  float64  `json:"Blue Component"`
	Alpha *float64 `json:"Alpha Component,omitempty"`
	Space string   `json:"Color Space,omitempty"`
}

// MarshalJSON encodes the color as an iTerm2 profile color dictionary.
func (c Color) MarshalJSON() ([]byte, error) {
	alpha := c.Alpha / 255
	space := c.Space
	if space == "" {
		space = ColorSpaceSRGB
	}
	return json.Marshal(colorDict{
		Red:   c.Red / 255,
		Green: c.Green / 255,
		Blue:  c.Blue / 255,
		Alpha: &alpha,
		Space: string(space),
	})
}

// UnmarshalJSON decodes an iTerm2 profile color dictionary. A missing
// alpha is opaque and a missing color space is Calibrated.
func (c *Color) UnmarshalJSON(data []byte) error {
	var d colorDict
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("iterm: color: %w", err)
	}
	alpha := 1.0
	if d.Alpha != nil {
		alpha = *d.Alpha
	}
	space := ColorSpace(d.Space)
	if space == "" {
		space = ColorSpaceCalibrated
	}
	*c = Color{
		Red:   d.Red * 255,
		Green: d.Green * 255,
		Blue:  d.Blue * 255,
		Alpha: alpha * 255,
		Space: space,
	}
	return nil
}

// Hex renders the color as #rrggbb, ignoring alpha and color space.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", clampByte(c.Red), clampByte(c.Green), clampByte(c.Blue))
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}
