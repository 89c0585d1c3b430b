package iterm

import (
	"context"
	"encoding/json"
	"fmt"

	"itermlink/internal/protocol"
)

// Profile property keys used by this package.
const (
	KeyName              = "Name"
	KeyGUID              = "Guid"
	KeyAllowTitleSetting = "Allow Title Setting"
)

// Profile is a snapshot of a profile's properties. A profile read from a
// session writes back to that session's local copy; a shared profile
// writes by GUID.
type Profile struct {
	conn      *Connection
	sessionID string
	props     map[string]json.RawMessage
}

func newProfile(conn *Connection, sessionID string, props []*protocol.ProfileProperty) *Profile {
	p := &Profile{
		conn:      conn,
		sessionID: sessionID,
		props:     make(map[string]json.RawMessage, len(props)),
	}
	for _, prop := range props {
		p.props[prop.Key] = json.RawMessage(prop.JSONValue)
	}
	return p
}

// SessionID is the session this profile belongs to, if any.
func (p *Profile) SessionID() string { return p.sessionID }

// GUID returns the profile's unique identifier.
func (p *Profile) GUID() string { return p.stringProperty(KeyGUID) }

// Name returns the profile's name.
func (p *Profile) Name() string { return p.stringProperty(KeyName) }

func (p *Profile) stringProperty(key string) string {
	raw, ok := p.props[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Property returns the raw JSON value of key.
func (p *Profile) Property(key string) (json.RawMessage, bool) {
	raw, ok := p.props[key]
	return raw, ok
}

// ColorWithKey returns the color stored under key. It reports false
// when the key is absent or does not hold a color.
func (p *Profile) ColorWithKey(key string) (Color, bool) {
	raw, ok := p.props[key]
	if !ok {
		return Color{}, false
	}
	var c Color
	if err := json.Unmarshal(raw, &c); err != nil {
		return Color{}, false
	}
	return c, true
}

// SetProperty writes one property and updates the snapshot.
func (p *Profile) SetProperty(ctx context.Context, key string, value any) error {
	w := NewLocalWriteOnlyProfile()
	if err := w.Set(key, value); err != nil {
		return err
	}
	return p.apply(ctx, w)
}

// SetColorPreset writes every color of preset into the profile.
func (p *Profile) SetColorPreset(ctx context.Context, preset *ColorPreset) error {
	w := NewLocalWriteOnlyProfile()
	for _, v := range preset.Values {
		if err := w.SetColor(v.Key, v.Color); err != nil {
			return err
		}
	}
	return p.apply(ctx, w)
}

func (p *Profile) apply(ctx context.Context, w *LocalWriteOnlyProfile) error {
	req := &protocol.SetProfilePropertyRequest{Assignments: w.assignments()}
	if p.sessionID != "" {
		req.Session = p.sessionID
	} else {
		guid := p.GUID()
		if guid == "" {
			return fmt.Errorf("iterm: profile has neither session nor GUID")
		}
		req.GuidList = &protocol.GuidList{Guids: []string{guid}}
	}
	if err := setProfileProperties(ctx, p.conn, req); err != nil {
		return err
	}
	for _, a := range req.Assignments {
		p.props[a.Key] = json.RawMessage(a.JSONValue)
	}
	return nil
}

func setProfileProperties(ctx context.Context, conn *Connection, req *protocol.SetProfilePropertyRequest) error {
	resp, err := conn.Call(ctx, &protocol.ClientMessage{SetProfileProperty: req})
	if err != nil {
		return err
	}
	if resp.SetProfileProperty == nil {
		return unexpectedResponse("set profile property")
	}
	return resp.SetProfileProperty.Err()
}

// GetDefaultProfile returns the profile new sessions are created with.
func GetDefaultProfile(ctx context.Context, conn *Connection) (*Profile, error) {
	resp, err := conn.Call(ctx, &protocol.ClientMessage{Preferences: &protocol.PreferencesRequest{
		Requests: []*protocol.PreferenceQuery{{DefaultProfile: true}},
	}})
	if err != nil {
		return nil, err
	}
	if resp.Preferences == nil || len(resp.Preferences.Results) == 0 {
		return nil, unexpectedResponse("preferences")
	}
	guid := resp.Preferences.Results[0].DefaultProfileGUID
	if guid == "" {
		return nil, fmt.Errorf("iterm: no default profile")
	}

	profiles, err := ListProfiles(ctx, conn, guid)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, guid)
	}
	return profiles[0], nil
}

// ListProfiles returns the shared profiles with the given GUIDs, or all
// of them when none are given.
func ListProfiles(ctx context.Context, conn *Connection, guids ...string) ([]*Profile, error) {
	resp, err := conn.Call(ctx, &protocol.ClientMessage{ListProfiles: &protocol.ListProfilesRequest{Guids: guids}})
	if err != nil {
		return nil, err
	}
	if resp.ListProfiles == nil {
		return nil, unexpectedResponse("list profiles")
	}
	profiles := make([]*Profile, 0, len(resp.ListProfiles.Profiles))
	for _, lp := range resp.ListProfiles.Profiles {
		profiles = append(profiles, newProfile(conn, "", lp.Properties))
	}
	return profiles, nil
}

// LocalWriteOnlyProfile collects property assignments to apply in one
// request. Later writes to the same key replace earlier ones.
type LocalWriteOnlyProfile struct {
	keys   []string
	values map[string]string
}

func NewLocalWriteOnlyProfile() *LocalWriteOnlyProfile {
	return &LocalWriteOnlyProfile{values: make(map[string]string)}
}

// Set assigns any JSON-encodable value to key.
func (p *LocalWriteOnlyProfile) Set(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("iterm: encode %q: %w", key, err)
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = string(data)
	return nil
}

func (p *LocalWriteOnlyProfile) SetName(name string) error {
	return p.Set(KeyName, name)
}

func (p *LocalWriteOnlyProfile) SetAllowTitleSetting(allow bool) error {
	return p.Set(KeyAllowTitleSetting, allow)
}

// SetColor fails for components JSON cannot carry, such as NaN.
func (p *LocalWriteOnlyProfile) SetColor(key string, c Color) error {
	return p.Set(key, c)
}

// Len returns the number of pending assignments.
func (p *LocalWriteOnlyProfile) Len() int { return len(p.keys) }

func (p *LocalWriteOnlyProfile) assignments() []*protocol.ProfileProperty {
	out := make([]*protocol.ProfileProperty, 0, len(p.keys))
	for _, k := range p.keys {
		out = append(out, &protocol.ProfileProperty{Key: k, JSONValue: p.values[k]})
	}
	return out
}
