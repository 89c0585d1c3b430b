package protocol

// PreferenceQuery is one entry of a PreferencesRequest. Set GetKey to read
// a preference, or DefaultProfile to read the default profile's GUID.
type PreferenceQuery struct {
	GetKey         string
	DefaultProfile bool
}

func (m *PreferenceQuery) marshal() []byte {
	var b []byte
	switch {
	case m.GetKey != "":
		b = appendMessage(b, 2, appendString(nil, 1, m.GetKey))
	case m.DefaultProfile:
		b = appendMessage(b, 4, nil)
	}
	return b
}

func (m *PreferenceQuery) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 2:
			return walk(f.bytes, func(g field) error {
				if g.num == 1 {
					m.GetKey = g.String()
				}
				return nil
			})
		case 4:
			m.DefaultProfile = true
		}
		return nil
	})
}

type PreferencesRequest struct {
	Requests []*PreferenceQuery
}

func (m *PreferencesRequest) marshal() []byte {
	var b []byte
	for _, r := range m.Requests {
		b = appendSub(b, 1, r)
	}
	return b
}

func (m *PreferencesRequest) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		if f.num == 1 {
			r, err := decodeSub[PreferenceQuery](f.bytes)
			if err != nil {
				return err
			}
			m.Requests = append(m.Requests, r)
		}
		return nil
	})
}

// PreferenceResult answers the PreferenceQuery at the same index.
// Unrecognized is set when the server did not understand the query.
type PreferenceResult struct {
	Unrecognized       bool
	HasJSONValue       bool
	JSONValue          string
	DefaultProfileGUID string
}

func (m *PreferenceResult) marshal() []byte {
	var b []byte
	switch {
	case m.Unrecognized:
		b = appendMessage(b, 1, nil)
	case m.HasJSONValue:
		b = appendMessage(b, 3, appendString(nil, 1, m.JSONValue))
	case m.DefaultProfileGUID != "":
		b = appendMessage(b, 5, appendString(nil, 1, m.DefaultProfileGUID))
	}
	return b
}

func (m *PreferenceResult) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.Unrecognized = true
		case 3:
			m.HasJSONValue = true
			return walk(f.bytes, func(g field) error {
				if g.num == 1 {
					m.JSONValue = g.String()
				}
				return nil
			})
		case 5:
			return walk(f.bytes, func(g field) error {
				if g.num == 1 {
					m.DefaultProfileGUID = g.String()
				}
				return nil
			})
		}
		return nil
	})
}

type PreferencesResponse struct {
	Results []*PreferenceResult
}

func (m *PreferencesResponse) marshal() []byte {
	var b []byte
	for _, r := range m.Results {
		b = appendSub(b, 1, r)
	}
	return b
}

func (m *PreferencesResponse) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		if f.num == 1 {
			r, err := decodeSub[PreferenceResult](f.bytes)
			if err != nil {
				return err
			}
			m.Results = append(m.Results, r)
		}
		return nil
	})
}

// ColorPresetRequest either lists preset names or fetches one preset.
type ColorPresetRequest struct {
	ListPresets bool
	GetPreset   string
}

func (m *ColorPresetRequest) marshal() []byte {
	if m.ListPresets {
		return appendMessage(nil, 1, nil)
	}
	return appendMessage(nil, 2, appendString(nil, 1, m.GetPreset))
}

func (m *ColorPresetRequest) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.ListPresets = true
		case 2:
			return walk(f.bytes, func(g field) error {
				if g.num == 1 {
					m.GetPreset = g.String()
				}
				return nil
			})
		}
		return nil
	})
}

// ColorSetting is one color of a preset. Components are in [0, 1].
type ColorSetting struct {
	Red        float32
	Green      float32
	Blue       float32
	Alpha      float32
	ColorSpace string
	Key        string
}

func (m *ColorSetting) marshal() []byte {
	var b []byte
	b = appendFloat(b, 1, m.Red)
	b = appendFloat(b, 2, m.Green)
	b = appendFloat(b, 3, m.Blue)
	b = appendFloat(b, 4, m.Alpha)
	b = appendOptString(b, 5, m.ColorSpace)
	b = appendOptString(b, 6, m.Key)
	return b
}

func (m *ColorSetting) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.Red = f.Float32()
		case 2:
			m.Green = f.Float32()
		case 3:
			m.Blue = f.Float32()
		case 4:
			m.Alpha = f.Float32()
		case 5:
			m.ColorSpace = f.String()
		case 6:
			m.Key = f.String()
		}
		return nil
	})
}

// ColorPresetResponse carries either the preset names or the settings of
// the requested preset.
type ColorPresetResponse struct {
	Status        ColorPresetStatus
	HasList       bool
	Names         []string
	ColorSettings []*ColorSetting
}

func (m *ColorPresetResponse) Err() error {
	return statusErr("color preset", colorPresetStatusNames, int32(m.Status))
}

func (m *ColorPresetResponse) marshal() []byte {
	var b []byte
	if m.HasList {
		b = appendMessage(b, 1, appendStrings(nil, 1, m.Names))
	} else if m.Status == ColorPresetOK {
		var get []byte
		for _, s := range m.ColorSettings {
			get = appendSub(get, 1, s)
		}
		b = appendMessage(b, 2, get)
	}
	b = appendOptInt(b, 3, int64(m.Status))
	return b
}

func (m *ColorPresetResponse) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.HasList = true
			return walk(f.bytes, func(g field) error {
				if g.num == 1 {
					m.Names = append(m.Names, g.String())
				}
				return nil
			})
		case 2:
			return walk(f.bytes, func(g field) error {
				if g.num != 1 {
					return nil
				}
				s, err := decodeSub[ColorSetting](g.bytes)
				if err != nil {
					return err
				}
				m.ColorSettings = append(m.ColorSettings, s)
				return nil
			})
		case 3:
			m.Status = ColorPresetStatus(f.Int32())
		}
		return nil
	})
}

// InvokeFunctionRequest calls a registered iTerm2 function. Receiver, when
// set, makes the invocation a method call on that window/tab/session ID.
// Otherwise the function runs in the app context.
type InvokeFunctionRequest struct {
	Receiver   string
	Invocation string
	Timeout    float64
}

func (m *InvokeFunctionRequest) marshal() []byte {
	var b []byte
	if m.Receiver != "" {
		b = appendMessage(b, 7, appendString(nil, 1, m.Receiver))
	} else {
		b = appendMessage(b, 4, nil)
	}
	b = appendString(b, 5, m.Invocation)
	b = appendDouble(b, 6, m.Timeout)
	return b
}

func (m *InvokeFunctionRequest) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 7:
			return walk(f.bytes, func(g field) error {
				if g.num == 1 {
					m.Receiver = g.String()
				}
				return nil
			})
		case 5:
			m.Invocation = f.String()
		case 6:
			m.Timeout = f.Float64()
		}
		return nil
	})
}

// InvokeFunctionResponse is either a JSON result or an error.
type InvokeFunctionResponse struct {
	ErrorStatus InvokeFunctionStatus
	ErrorReason string
	Failed      bool
	JSONResult  string
}

func (m *InvokeFunctionResponse) Err() error {
	if !m.Failed {
		return nil
	}
	err := &StatusError{Op: "invoke function", Code: int32(m.ErrorStatus), Status: m.ErrorStatus.String()}
	if m.ErrorReason != "" {
		err.Status += " (" + m.ErrorReason + ")"
	}
	return err
}

func (m *InvokeFunctionResponse) marshal() []byte {
	if m.Failed {
		var e []byte
		e = appendVarint(e, 1, uint64(m.ErrorStatus))
		e = appendOptString(e, 2, m.ErrorReason)
		return appendMessage(nil, 1, e)
	}
	return appendMessage(nil, 2, appendString(nil, 1, m.JSONResult))
}

func (m *InvokeFunctionResponse) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.Failed = true
			return walk(f.bytes, func(g field) error {
				switch g.num {
				case 1:
					m.ErrorStatus = InvokeFunctionStatus(g.Int32())
				case 2:
					m.ErrorReason = g.String()
				}
				return nil
			})
		case 2:
			return walk(f.bytes, func(g field) error {
				if g.num == 1 {
					m.JSONResult = g.String()
				}
				return nil
			})
		}
		return nil
	})
}
