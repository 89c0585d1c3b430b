package protocol

// VariableAssignment sets one variable in a VariableRequest.
type VariableAssignment struct {
	Name  string
	Value string // JSON
}

func (m *VariableAssignment) marshal() []byte {
	var b []byte
	b = appendOptString(b, 1, m.Name)
	b = appendString(b, 2, m.Value)
	return b
}

func (m *VariableAssignment) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.Name = f.String()
		case 2:
			m.Value = f.String()
		}
		return nil
	})
}

// VariableRequest reads and writes variables in one scope. Exactly one
// of SessionID, TabID, WindowID or App should be set.
type VariableRequest struct {
	SessionID string
	TabID     string
	WindowID  string
	App       bool
	Set       []*VariableAssignment
	Get       []string
}

func (m *VariableRequest) marshal() []byte {
	var b []byte
	b = appendOptString(b, 1, m.SessionID)
	for _, s := range m.Set {
		b = appendSub(b, 2, s)
	}
	b = appendStrings(b, 3, m.Get)
	b = appendOptBool(b, 4, m.App)
	b = appendOptString(b, 5, m.TabID)
	b = appendOptString(b, 6, m.WindowID)
	return b
}

func (m *VariableRequest) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.SessionID = f.String()
		case 2:
			s, err := decodeSub[VariableAssignment](f.bytes)
			if err != nil {
				return err
			}
			m.Set = append(m.Set, s)
		case 3:
			m.Get = append(m.Get, f.String())
		case 4:
			m.App = f.Bool()
		case 5:
			m.TabID = f.String()
		case 6:
			m.WindowID = f.String()
		}
		return nil
	})
}

// VariableResponse holds one JSON-encoded value per requested name.
type VariableResponse struct {
	Status VariableStatus
	Values []string
}

func (m *VariableResponse) Err() error {
	return statusErr("variable", variableStatusNames, int32(m.Status))
}

func (m *VariableResponse) marshal() []byte {
	var b []byte
	b = appendOptInt(b, 1, int64(m.Status))
	b = appendStrings(b, 2, m.Values)
	return b
}

func (m *VariableResponse) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.Status = VariableStatus(f.Int32())
		case 2:
			m.Values = append(m.Values, f.String())
		}
		return nil
	})
}

// ProfileProperty is a key with a JSON-encoded value. It doubles as the
// assignment type of SetProfilePropertyRequest.
type ProfileProperty struct {
	Key       string
	JSONValue string
}

func (m *ProfileProperty) marshal() []byte {
	var b []byte
	b = appendOptString(b, 1, m.Key)
	b = appendString(b, 2, m.JSONValue)
	return b
}

func (m *ProfileProperty) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.Key = f.String()
		case 2:
			m.JSONValue = f.String()
		}
		return nil
	})
}

type GuidList struct {
	Guids []string
}

func (m *GuidList) marshal() []byte { return appendStrings(nil, 1, m.Guids) }

func (m *GuidList) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		if f.num == 1 {
			m.Guids = append(m.Guids, f.String())
		}
		return nil
	})
}

// SetProfilePropertyRequest targets either a session's local profile or
// a list of shared profiles by GUID.
type SetProfilePropertyRequest struct {
	Session     string
	GuidList    *GuidList
	Assignments []*ProfileProperty
}

func (m *SetProfilePropertyRequest) marshal() []byte {
	var b []byte
	if m.Session != "" {
		b = appendString(b, 1, m.Session)
	} else if m.GuidList != nil {
		b = appendSub(b, 3, m.GuidList)
	}
	for _, a := range m.Assignments {
		b = appendSub(b, 5, a)
	}
	return b
}

func (m *SetProfilePropertyRequest) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.Session = f.String()
		case 3:
			g, err := decodeSub[GuidList](f.bytes)
			if err != nil {
				return err
			}
			m.GuidList = g
		case 5:
			a, err := decodeSub[ProfileProperty](f.bytes)
			if err != nil {
				return err
			}
			m.Assignments = append(m.Assignments, a)
		}
		return nil
	})
}

type SetProfilePropertyResponse struct {
	Status ProfilePropertyStatus
}

func (m *SetProfilePropertyResponse) Err() error {
	return statusErr("set profile property", profilePropertyStatusNames, int32(m.Status))
}

func (m *SetProfilePropertyResponse) marshal() []byte {
	return appendOptInt(nil, 1, int64(m.Status))
}

func (m *SetProfilePropertyResponse) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		if f.num == 1 {
			m.Status = ProfilePropertyStatus(f.Int32())
		}
		return nil
	})
}

// GetProfilePropertyRequest reads a session's profile. No keys means all.
type GetProfilePropertyRequest struct {
	Session string
	Keys    []string
}

func (m *GetProfilePropertyRequest) marshal() []byte {
	var b []byte
	b = appendOptString(b, 1, m.Session)
	b = appendStrings(b, 2, m.Keys)
	return b
}

func (m *GetProfilePropertyRequest) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.Session = f.String()
		case 2:
			m.Keys = append(m.Keys, f.String())
		}
		return nil
	})
}

type GetProfilePropertyResponse struct {
	Status     ProfilePropertyStatus
	Properties []*ProfileProperty
}

func (m *GetProfilePropertyResponse) Err() error {
	return statusErr("get profile property", profilePropertyStatusNames, int32(m.Status))
}

func (m *GetProfilePropertyResponse) marshal() []byte {
	var b []byte
	b = appendOptInt(b, 1, int64(m.Status))
	for _, p := range m.Properties {
		b = appendSub(b, 2, p)
	}
	return b
}

func (m *GetProfilePropertyResponse) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.Status = ProfilePropertyStatus(f.Int32())
		case 2:
			p, err := decodeSub[ProfileProperty](f.bytes)
			if err != nil {
				return err
			}
			m.Properties = append(m.Properties, p)
		}
		return nil
	})
}

// ListProfilesRequest lists shared profiles. Empty filters mean all.
type ListProfilesRequest struct {
	Properties []string
	Guids      []string
}

func (m *ListProfilesRequest) marshal() []byte {
	var b []byte
	b = appendStrings(b, 1, m.Properties)
	b = appendStrings(b, 2, m.Guids)
	return b
}

func (m *ListProfilesRequest) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.Properties = append(m.Properties, f.String())
		case 2:
			m.Guids = append(m.Guids, f.String())
		}
		return nil
	})
}

type ListedProfile struct {
	Properties []*ProfileProperty
}

func (m *ListedProfile) marshal() []byte {
	var b []byte
	for _, p := range m.Properties {
		b = appendSub(b, 1, p)
	}
	return b
}

func (m *ListedProfile) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		if f.num == 1 {
			p, err := decodeSub[ProfileProperty](f.bytes)
			if err != nil {
				return err
			}
			m.Properties = append(m.Properties, p)
		}
		return nil
	})
}

type ListProfilesResponse struct {
	Profiles []*ListedProfile
}

func (m *ListProfilesResponse) marshal() []byte {
	var b []byte
	for _, p := range m.Profiles {
		b = appendSub(b, 1, p)
	}
	return b
}

func (m *ListProfilesResponse) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		if f.num == 1 {
			p, err := decodeSub[ListedProfile](f.bytes)
			if err != nil {
				return err
			}
			m.Profiles = append(m.Profiles, p)
		}
		return nil
	})
}
