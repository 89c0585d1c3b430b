package itermtest

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"itermlink/internal/protocol"
)

// Fake is a scripted iTerm2. Populate it, then pass Fake.Handle to
// NewServer. Writes made by clients are recorded and applied.
type Fake struct {
	mu sync.Mutex

	Windows []*protocol.ListWindow
	Focus   []*protocol.FocusChangedNotification

	// Screens maps session ID to its visible lines.
	Screens map[string][]string
	// Variables maps session ID to variable name to JSON value.
	Variables map[string]map[string]string
	// SessionProfiles maps session ID to its profile properties.
	SessionProfiles map[string]map[string]string
	// Profiles maps GUID to shared profile properties.
	Profiles    map[string]map[string]string
	DefaultGUID string
	// Presets maps preset name to its colors.
	Presets map[string][]*protocol.ColorSetting
	// Functions names the methods InvokeFunction accepts. Names are
	// case sensitive, as in iTerm2.
	Functions map[string]bool

	// Recorded client writes.
	SentText    []SentText
	Invocations []*protocol.InvokeFunctionRequest
	Activations []*protocol.ActivateRequest
}

// SentText is one SendTextRequest received by the fake.
type SentText struct {
	Session string
	Text    string
}

// NewFake returns an empty fake iTerm2.
func NewFake() *Fake {
	return &Fake{
		Screens:         map[string][]string{},
		Variables:       map[string]map[string]string{},
		SessionProfiles: map[string]map[string]string{},
		Profiles:        map[string]map[string]string{},
		Presets:         map[string][]*protocol.ColorSetting{},
		Functions:       map[string]bool{"iterm2.set_title": true},
	}
}

// AddWindow appends a window whose tabs each hold the given sessions,
// side by side. It returns the window for further tweaking.
func (f *Fake) AddWindow(windowID string, tabs map[string][]string) *protocol.ListWindow {
	f.mu.Lock()
	defer f.mu.Unlock()

	tabIDs := make([]string, 0, len(tabs))
	for id := range tabs {
		tabIDs = append(tabIDs, id)
	}
	sort.Strings(tabIDs)

	w := &protocol.ListWindow{WindowID: windowID, Number: int32(len(f.Windows))}
	for _, tabID := range tabIDs {
		root := &protocol.SplitTreeNode{}
		for _, sid := range tabs[tabID] {
			root.Links = append(root.Links, &protocol.SplitTreeLink{Session: &protocol.SessionSummary{
				UniqueIdentifier: sid,
				Title:            sid,
				GridSize:         &protocol.Size{Width: 80, Height: 24},
			}})
		}
		w.Tabs = append(w.Tabs, &protocol.ListTab{TabID: tabID, Root: root})
	}
	f.Windows = append(f.Windows, w)
	return w
}

// FocusOn marks windowID as key, tabID as selected and sessionID active.
func (f *Fake) FocusOn(windowID, tabID, sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Focus = append(f.Focus,
		&protocol.FocusChangedNotification{HasApplicationActive: true, ApplicationActive: true},
		&protocol.FocusChangedNotification{Window: &protocol.FocusWindow{Status: protocol.WindowBecameKey, WindowID: windowID}},
		&protocol.FocusChangedNotification{HasSelectedTab: true, SelectedTab: tabID},
		&protocol.FocusChangedNotification{HasSession: true, Session: sessionID},
	)
}

// AddFocus appends raw focus notifications.
func (f *Fake) AddFocus(n ...*protocol.FocusChangedNotification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Focus = append(f.Focus, n...)
}

// Invoked returns a copy of the recorded InvokeFunction requests.
func (f *Fake) Invoked() []*protocol.InvokeFunctionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*protocol.InvokeFunctionRequest(nil), f.Invocations...)
}

// Activated returns a copy of the recorded Activate requests.
func (f *Fake) Activated() []*protocol.ActivateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*protocol.ActivateRequest(nil), f.Activations...)
}

// Sent returns a copy of the recorded SendText requests.
func (f *Fake) Sent() []SentText {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SentText(nil), f.SentText...)
}

// SessionProperty returns the JSON value of a session profile property.
func (f *Fake) SessionProperty(sessionID, key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.SessionProfiles[sessionID][key]
	return v, ok
}

// ProfileProperty returns the JSON value of a shared profile property.
func (f *Fake) ProfileProperty(guid, key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.Profiles[guid][key]
	return v, ok
}

// Handle answers req from the fake's state.
func (f *Fake) Handle(req *protocol.ClientMessage) *protocol.ServerMessage {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case req.ListSessions != nil:
		return &protocol.ServerMessage{ListSessions: &protocol.ListSessionsResponse{
			Windows: append([]*protocol.ListWindow(nil), f.Windows...),
		}}

	case req.Focus != nil:
		return &protocol.ServerMessage{Focus: &protocol.FocusResponse{
			Notifications: append([]*protocol.FocusChangedNotification(nil), f.Focus...),
		}}

	case req.SendText != nil:
		if !f.hasSession(req.SendText.Session) {
			return &protocol.ServerMessage{SendText: &protocol.SendTextResponse{Status: protocol.SendTextSessionNotFound}}
		}
		f.SentText = append(f.SentText, SentText{Session: req.SendText.Session, Text: req.SendText.Text})
		return &protocol.ServerMessage{SendText: &protocol.SendTextResponse{}}

	case req.GetBuffer != nil:
		lines, ok := f.Screens[req.GetBuffer.Session]
		if !ok {
			return &protocol.ServerMessage{GetBuffer: &protocol.GetBufferResponse{Status: protocol.GetBufferSessionNotFound}}
		}
		resp := &protocol.GetBufferResponse{Cursor: &protocol.Coord{}}
		for _, l := range lines {
			resp.Contents = append(resp.Contents, &protocol.LineContents{Text: l, Continuation: protocol.ContinuationHardEOL})
		}
		return &protocol.ServerMessage{GetBuffer: resp}

	case req.Variable != nil:
		return &protocol.ServerMessage{Variable: f.variable(req.Variable)}

	case req.GetProfileProperty != nil:
		if !f.hasSession(req.GetProfileProperty.Session) {
			return &protocol.ServerMessage{GetProfileProperty: &protocol.GetProfilePropertyResponse{Status: protocol.ProfilePropertySessionNotFound}}
		}
		props := f.SessionProfiles[req.GetProfileProperty.Session]
		return &protocol.ServerMessage{GetProfileProperty: &protocol.GetProfilePropertyResponse{Properties: toProperties(props)}}

	case req.SetProfileProperty != nil:
		return &protocol.ServerMessage{SetProfileProperty: f.setProfileProperty(req.SetProfileProperty)}

	case req.Preferences != nil:
		resp := &protocol.PreferencesResponse{}
		for _, q := range req.Preferences.Requests {
			if q.DefaultProfile {
				resp.Results = append(resp.Results, &protocol.PreferenceResult{DefaultProfileGUID: f.DefaultGUID})
			} else {
				resp.Results = append(resp.Results, &protocol.PreferenceResult{Unrecognized: true})
			}
		}
		return &protocol.ServerMessage{Preferences: resp}

	case req.ListProfiles != nil:
		resp := &protocol.ListProfilesResponse{}
		for _, guid := range f.profileGUIDs(req.ListProfiles.Guids) {
			resp.Profiles = append(resp.Profiles, &protocol.ListedProfile{Properties: toProperties(f.Profiles[guid])})
		}
		return &protocol.ServerMessage{ListProfiles: resp}

	case req.ColorPreset != nil:
		if req.ColorPreset.ListPresets {
			names := make([]string, 0, len(f.Presets))
			for name := range f.Presets {
				names = append(names, name)
			}
			sort.Strings(names)
			return &protocol.ServerMessage{ColorPreset: &protocol.ColorPresetResponse{HasList: true, Names: names}}
		}
		settings, ok := f.Presets[req.ColorPreset.GetPreset]
		if !ok {
			return &protocol.ServerMessage{ColorPreset: &protocol.ColorPresetResponse{Status: protocol.ColorPresetNotFound}}
		}
		return &protocol.ServerMessage{ColorPreset: &protocol.ColorPresetResponse{ColorSettings: settings}}

	case req.InvokeFunction != nil:
		f.Invocations = append(f.Invocations, req.InvokeFunction)
		name, _, _ := strings.Cut(req.InvokeFunction.Invocation, "(")
		if !f.Functions[name] {
			return &protocol.ServerMessage{InvokeFunction: &protocol.InvokeFunctionResponse{
				Failed:      true,
				ErrorStatus: protocol.InvokeFunctionFailed,
				ErrorReason: "no function named " + name,
			}}
		}
		return &protocol.ServerMessage{InvokeFunction: &protocol.InvokeFunctionResponse{JSONResult: "null"}}

	case req.Activate != nil:
		f.Activations = append(f.Activations, req.Activate)
		return &protocol.ServerMessage{Activate: &protocol.ActivateResponse{}}
	}
	return nil
}

func (f *Fake) hasSession(id string) bool {
	for _, w := range f.Windows {
		for _, t := range w.Tabs {
			for _, s := range t.Root.Sessions() {
				if s.UniqueIdentifier == id {
					return true
				}
			}
		}
	}
	return false
}

func (f *Fake) variable(req *protocol.VariableRequest) *protocol.VariableResponse {
	if req.SessionID == "" {
		return &protocol.VariableResponse{Status: protocol.VariableMissingScope}
	}
	if !f.hasSession(req.SessionID) {
		return &protocol.VariableResponse{Status: protocol.VariableSessionNotFound}
	}
	vars := f.Variables[req.SessionID]
	if vars == nil {
		vars = map[string]string{}
		f.Variables[req.SessionID] = vars
	}
	for _, set := range req.Set {
		vars[set.Name] = set.Value
	}
	resp := &protocol.VariableResponse{}
	for _, name := range req.Get {
		v, ok := vars[name]
		if !ok {
			v = "null"
		}
		resp.Values = append(resp.Values, v)
	}
	return resp
}

func (f *Fake) setProfileProperty(req *protocol.SetProfilePropertyRequest) *protocol.SetProfilePropertyResponse {
	var targets []map[string]string
	switch {
	case req.Session != "":
		if !f.hasSession(req.Session) {
			return &protocol.SetProfilePropertyResponse{Status: protocol.ProfilePropertySessionNotFound}
		}
		props := f.SessionProfiles[req.Session]
		if props == nil {
			props = map[string]string{}
			f.SessionProfiles[req.Session] = props
		}
		targets = append(targets, props)
	case req.GuidList != nil:
		for _, guid := range req.GuidList.Guids {
			props, ok := f.Profiles[guid]
			if !ok {
				return &protocol.SetProfilePropertyResponse{Status: protocol.ProfilePropertyBadGUID}
			}
			targets = append(targets, props)
		}
	default:
		return &protocol.SetProfilePropertyResponse{Status: protocol.ProfilePropertyRequestMalformed}
	}

	for _, props := range targets {
		for _, a := range req.Assignments {
			props[a.Key] = a.JSONValue
		}
	}
	return &protocol.SetProfilePropertyResponse{}
}

func (f *Fake) profileGUIDs(filter []string) []string {
	if len(filter) > 0 {
		var out []string
		for _, guid := range filter {
			if _, ok := f.Profiles[guid]; ok {
				out = append(out, guid)
			}
		}
		return out
	}
	out := make([]string, 0, len(f.Profiles))
	for guid := range f.Profiles {
		out = append(out, guid)
	}
	sort.Strings(out)
	return out
}

func toProperties(props map[string]string) []*protocol.ProfileProperty {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*protocol.ProfileProperty, 0, len(keys))
	for _, k := range keys {
		out = append(out, &protocol.ProfileProperty{Key: k, JSONValue: props[k]})
	}
	return out
}

// JSON encodes v, panicking on failure. It keeps fixtures short.
func JSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}

// ColorJSON renders an iTerm2 profile color dictionary with components
// in [0, 1].
func ColorJSON(r, g, b, a float64, space string) string {
	return JSON(map[string]any{
		"Red Component":   r,
		"Green Component": g,
		"Blue Component":  b,
		"Alpha Component": a,
		"Color Space":     space,
	})
}
