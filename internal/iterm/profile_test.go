package iterm

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"itermlink/internal/iterm/itermtest"
	"itermlink/internal/protocol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profileFake() *itermtest.Fake {
	f := twoWindowFake()
	f.DefaultGUID = "guid-default"
	f.Profiles["guid-default"] = map[string]string{
		KeyGUID: `"guid-default"`,
		KeyName: `"Default"`,
	}
	f.Profiles["guid-work"] = map[string]string{
		KeyGUID: `"guid-work"`,
		KeyName: `"Work"`,
	}
	f.Presets["Solarized"] = []*protocol.ColorSetting{
		{Red: 0, Green: 0.5, Blue: 1, Alpha: 1, ColorSpace: "sRGB", Key: "Background Color"},
		{Red: 1, Green: 1, Blue: 1, Alpha: 1, ColorSpace: "sRGB", Key: "Foreground Color"},
	}
	return f
}

func TestGetDefaultProfile(t *testing.T) {
	conn := dialFake(t, profileFake())

	p, err := GetDefaultProfile(context.Background(), conn)
	require.NoError(t, err)
	assert.Equal(t, "guid-default", p.GUID())
	assert.Equal(t, "Default", p.Name())
	assert.Empty(t, p.SessionID())
}

func TestGetDefaultProfileMissing(t *testing.T) {
	f := profileFake()
	f.DefaultGUID = "guid-deleted"
	conn := dialFake(t, f)

	_, err := GetDefaultProfile(context.Background(), conn)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestListProfiles(t *testing.T) {
	conn := dialFake(t, profileFake())
	ctx := context.Background()

	all, err := ListProfiles(ctx, conn)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Default", all[0].Name())
	assert.Equal(t, "Work", all[1].Name())

	some, err := ListProfiles(ctx, conn, "guid-work")
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.Equal(t, "guid-work", some[0].GUID())
}

func TestSharedProfileSetColorPreset(t *testing.T) {
	f := profileFake()
	conn := dialFake(t, f)
	ctx := context.Background()

	p, err := GetDefaultProfile(ctx, conn)
	require.NoError(t, err)
	preset, err := GetColorPreset(ctx, conn, "Solarized")
	require.NoError(t, err)

	require.NoError(t, p.SetColorPreset(ctx, preset))

	raw, ok := f.ProfileProperty("guid-default", "Background Color")
	require.True(t, ok)
	var c Color
	require.NoError(t, json.Unmarshal([]byte(raw), &c))
	assert.Equal(t, Color{Red: 0, Green: 127.5, Blue: 255, Alpha: 255, Space: ColorSpaceSRGB}, c)

	got, ok := p.ColorWithKey("Foreground Color")
	require.True(t, ok)
	assert.Equal(t, "#ffffff", got.Hex())

	_, ok = f.ProfileProperty("guid-work", "Background Color")
	assert.False(t, ok)
}

func TestSetColorPresetUnencodableColor(t *testing.T) {
	f := profileFake()
	conn := dialFake(t, f)
	ctx := context.Background()

	p, err := GetDefaultProfile(ctx, conn)
	require.NoError(t, err)
	preset := &ColorPreset{Name: "Broken", Values: []PresetColor{
		{Key: "Background Color", Color: Color{Red: 10, Alpha: 255}},
		{Key: "Cursor Color", Color: Color{Blue: math.Inf(1), Alpha: 255}},
	}}

	assert.ErrorContains(t, p.SetColorPreset(ctx, preset), "Cursor Color")
	_, ok := f.ProfileProperty("guid-default", "Background Color")
	assert.False(t, ok)
}

func TestProfileWithoutTarget(t *testing.T) {
	p := newProfile(nil, "", nil)
	err := p.SetProperty(context.Background(), KeyName, "x")
	assert.ErrorContains(t, err, "neither session nor GUID")
}

func TestLocalWriteOnlyProfile(t *testing.T) {
	w := NewLocalWriteOnlyProfile()
	require.NoError(t, w.SetName("first"))
	require.NoError(t, w.SetAllowTitleSetting(false))
	require.NoError(t, w.SetColor("Cursor Color", Color{Red: 255, Alpha: 255, Space: ColorSpaceP3}))
	require.NoError(t, w.SetName("second"))

	assert.Equal(t, 3, w.Len())

	got := w.assignments()
	require.Len(t, got, 3)
	assert.Equal(t, KeyName, got[0].Key)
	assert.Equal(t, `"second"`, got[0].JSONValue)
	assert.Equal(t, KeyAllowTitleSetting, got[1].Key)
	assert.Equal(t, "false", got[1].JSONValue)
	assert.Equal(t, "Cursor Color", got[2].Key)
	assert.JSONEq(t, itermtest.ColorJSON(1, 0, 0, 1, "P3"), got[2].JSONValue)

	assert.Error(t, w.Set("bad", func() {}))
	assert.ErrorContains(t, w.SetColor("Cursor Guide Color", Color{Red: math.NaN(), Alpha: 255}), "Cursor Guide Color")
	assert.Equal(t, 3, w.Len())
}

func TestListColorPresets(t *testing.T) {
	conn := dialFake(t, profileFake())

	names, err := ListColorPresets(context.Background(), conn)
	require.NoError(t, err)
	assert.Equal(t, []string{"Solarized"}, names)
}

func TestGetColorPreset(t *testing.T) {
	conn := dialFake(t, profileFake())

	preset, err := GetColorPreset(context.Background(), conn, "Solarized")
	require.NoError(t, err)
	assert.Equal(t, "Solarized", preset.Name)
	require.Len(t, preset.Values, 2)
	assert.Equal(t, "Background Color", preset.Values[0].Key)
	assert.Equal(t, 127.5, preset.Values[0].Green)
	assert.Equal(t, ColorSpaceSRGB, preset.Values[0].Space)

	_, err = GetColorPreset(context.Background(), conn, "Nope")
	var se *protocol.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "PRESET_NOT_FOUND", se.Status)
}
