package iterm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		json string
		want Color
	}{
		{
			name: "full dictionary",
			json: `{"Red Component": 1, "Green Component": 0.5, "Blue Component": 0, "Alpha Component": 0.5, "Color Space": "sRGB"}`,
			want: Color{Red: 255, Green: 127.5, Blue: 0, Alpha: 127.5, Space: ColorSpaceSRGB},
		},
		{
			name: "missing alpha is opaque",
			json: `{"Red Component": 0, "Green Component": 0, "Blue Component": 0, "Color Space": "P3"}`,
			want: Color{Alpha: 255, Space: ColorSpaceP3},
		},
		{
			name: "missing color space is calibrated",
			json: `{"Red Component": 0, "Green Component": 0, "Blue Component": 1}`,
			want: Color{Blue: 255, Alpha: 255, Space: ColorSpaceCalibrated},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Color
			require.NoError(t, json.Unmarshal([]byte(tt.json), &c))
			assert.Equal(t, tt.want, c)
		})
	}

	var c Color
	assert.Error(t, json.Unmarshal([]byte(`"red"`), &c))
}

func TestColorMarshal(t *testing.T) {
	data, err := json.Marshal(Color{Red: 255, Green: 0, Blue: 51, Alpha: 255})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"Red Component": 1,
		"Green Component": 0,
		"Blue Component": 0.2,
		"Alpha Component": 1,
		"Color Space": "sRGB"
	}`, string(data))
}

func TestColorHex(t *testing.T) {
	tests := []struct {
		c    Color
		want string
	}{
		{Color{}, "#000000"},
		{Color{Red: 255, Green: 255, Blue: 255}, "#ffffff"},
		{Color{Red: 6, Green: 117, Blue: 187}, "#0675bb"},
		{Color{Red: 127.5, Green: -3, Blue: 300}, "#8000ff"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.c.Hex())
	}
}
