package protocol

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Submessage field numbers shared by ClientOriginatedMessage and
// ServerOriginatedMessage.
const (
	fieldID                 protowire.Number = 1
	fieldError              protowire.Number = 2
	fieldGetBuffer          protowire.Number = 100
	fieldSetProfileProperty protowire.Number = 105
	fieldListSessions       protowire.Number = 106
	fieldSendText           protowire.Number = 107
	fieldGetProfileProperty protowire.Number = 110
	fieldActivate           protowire.Number = 114
	fieldVariable           protowire.Number = 115
	fieldFocus              protowire.Number = 117
	fieldListProfiles       protowire.Number = 118
	fieldPreferences        protowire.Number = 126
	fieldColorPreset        protowire.Number = 127
	fieldInvokeFunction     protowire.Number = 132
	fieldNotification       protowire.Number = 1000
)

// ErrNoSubmessage is returned when marshaling a ClientMessage with no
// request set.
var ErrNoSubmessage = errors.New("protocol: message has no submessage")

// ClientMessage is a ClientOriginatedMessage. Exactly one request
// pointer should be non-nil.
type ClientMessage struct {
	ID int64

	GetBuffer          *GetBufferRequest
	SetProfileProperty *SetProfilePropertyRequest
	ListSessions       *ListSessionsRequest
	SendText           *SendTextRequest
	GetProfileProperty *GetProfilePropertyRequest
	Activate           *ActivateRequest
	Variable           *VariableRequest
	Focus              *FocusRequest
	ListProfiles       *ListProfilesRequest
	Preferences        *PreferencesRequest
	ColorPreset        *ColorPresetRequest
	InvokeFunction     *InvokeFunctionRequest
}

func (m *ClientMessage) submessage() (protowire.Number, marshaler) {
	switch {
	case m.GetBuffer != nil:
		return fieldGetBuffer, m.GetBuffer
	case m.SetProfileProperty != nil:
		return fieldSetProfileProperty, m.SetProfileProperty
	case m.ListSessions != nil:
		return fieldListSessions, m.ListSessions
	case m.SendText != nil:
		return fieldSendText, m.SendText
	case m.GetProfileProperty != nil:
		return fieldGetProfileProperty, m.GetProfileProperty
	case m.Activate != nil:
		return fieldActivate, m.Activate
	case m.Variable != nil:
		return fieldVariable, m.Variable
	case m.Focus != nil:
		return fieldFocus, m.Focus
	case m.ListProfiles != nil:
		return fieldListProfiles, m.ListProfiles
	case m.Preferences != nil:
		return fieldPreferences, m.Preferences
	case m.ColorPreset != nil:
		return fieldColorPreset, m.ColorPreset
	case m.InvokeFunction != nil:
		return fieldInvokeFunction, m.InvokeFunction
	}
	return 0, nil
}

// Kind names the request carried by the message, for logging.
func (m *ClientMessage) Kind() string {
	num, _ := m.submessage()
	return kindName(num)
}

// Marshal encodes the message in protobuf wire format.
func (m *ClientMessage) Marshal() ([]byte, error) {
	num, sub := m.submessage()
	if sub == nil {
		return nil, ErrNoSubmessage
	}
	var b []byte
	b = appendVarint(b, fieldID, uint64(m.ID))
	b = appendSub(b, num, sub)
	return b, nil
}

// Unmarshal decodes a ClientOriginatedMessage. Requests this package does
// not model leave every request pointer nil.
func (m *ClientMessage) Unmarshal(b []byte) error {
	*m = ClientMessage{}
	return walk(b, func(f field) error {
		var err error
		switch f.num {
		case fieldID:
			m.ID = f.Int64()
		case fieldGetBuffer:
			m.GetBuffer, err = decodeSub[GetBufferRequest](f.bytes)
		case fieldSetProfileProperty:
			m.SetProfileProperty, err = decodeSub[SetProfilePropertyRequest](f.bytes)
		case fieldListSessions:
			m.ListSessions, err = decodeSub[ListSessionsRequest](f.bytes)
		case fieldSendText:
			m.SendText, err = decodeSub[SendTextRequest](f.bytes)
		case fieldGetProfileProperty:
			m.GetProfileProperty, err = decodeSub[GetProfilePropertyRequest](f.bytes)
		case fieldActivate:
			m.Activate, err = decodeSub[ActivateRequest](f.bytes)
		case fieldVariable:
			m.Variable, err = decodeSub[VariableRequest](f.bytes)
		case fieldFocus:
			m.Focus, err = decodeSub[FocusRequest](f.bytes)
		case fieldListProfiles:
			m.ListProfiles, err = decodeSub[ListProfilesRequest](f.bytes)
		case fieldPreferences:
			m.Preferences, err = decodeSub[PreferencesRequest](f.bytes)
		case fieldColorPreset:
			m.ColorPreset, err = decodeSub[ColorPresetRequest](f.bytes)
		case fieldInvokeFunction:
			m.InvokeFunction, err = decodeSub[InvokeFunctionRequest](f.bytes)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", kindName(f.num), err)
		}
		return nil
	})
}

// ServerMessage is a ServerOriginatedMessage. HasError is set when the
// server rejected the request outright; Error then holds its reason.
type ServerMessage struct {
	ID       int64
	HasError bool
	Error    string

	// Notification is set for unsolicited messages. Its payload is kept
	// raw because nothing in this module subscribes to notifications.
	Notification []byte

	GetBuffer          *GetBufferResponse
	SetProfileProperty *SetProfilePropertyResponse
	ListSessions       *ListSessionsResponse
	SendText           *SendTextResponse
	GetProfileProperty *GetProfilePropertyResponse
	Activate           *ActivateResponse
	Variable           *VariableResponse
	Focus              *FocusResponse
	ListProfiles       *ListProfilesResponse
	Preferences        *PreferencesResponse
	ColorPreset        *ColorPresetResponse
	InvokeFunction     *InvokeFunctionResponse
}

func (m *ServerMessage) submessage() (protowire.Number, marshaler) {
	switch {
	case m.GetBuffer != nil:
		return fieldGetBuffer, m.GetBuffer
	case m.SetProfileProperty != nil:
		return fieldSetProfileProperty, m.SetProfileProperty
	case m.ListSessions != nil:
		return fieldListSessions, m.ListSessions
	case m.SendText != nil:
		return fieldSendText, m.SendText
	case m.GetProfileProperty != nil:
		return fieldGetProfileProperty, m.GetProfileProperty
	case m.Activate != nil:
		return fieldActivate, m.Activate
	case m.Variable != nil:
		return fieldVariable, m.Variable
	case m.Focus != nil:
		return fieldFocus, m.Focus
	case m.ListProfiles != nil:
		return fieldListProfiles, m.ListProfiles
	case m.Preferences != nil:
		return fieldPreferences, m.Preferences
	case m.ColorPreset != nil:
		return fieldColorPreset, m.ColorPreset
	case m.InvokeFunction != nil:
		return fieldInvokeFunction, m.InvokeFunction
	}
	return 0, nil
}

// Marshal encodes the message in protobuf wire format.
func (m *ServerMessage) Marshal() ([]byte, error) {
	var b []byte
	if m.Notification != nil {
		return appendMessage(b, fieldNotification, m.Notification), nil
	}
	b = appendVarint(b, fieldID, uint64(m.ID))
	if m.HasError {
		return appendString(b, fieldError, m.Error), nil
	}
	num, sub := m.submessage()
	if sub == nil {
		return nil, ErrNoSubmessage
	}
	return appendSub(b, num, sub), nil
}

// Unmarshal decodes a ServerOriginatedMessage.
func (m *ServerMessage) Unmarshal(b []byte) error {
	*m = ServerMessage{}
	return walk(b, func(f field) error {
		var err error
		switch f.num {
		case fieldID:
			m.ID = f.Int64()
		case fieldError:
			m.HasError = true
			m.Error = f.String()
		case fieldNotification:
			m.Notification = append([]byte{}, f.bytes...)
		case fieldGetBuffer:
			m.GetBuffer, err = decodeSub[GetBufferResponse](f.bytes)
		case fieldSetProfileProperty:
			m.SetProfileProperty, err = decodeSub[SetProfilePropertyResponse](f.bytes)
		case fieldListSessions:
			m.ListSessions, err = decodeSub[ListSessionsResponse](f.bytes)
		case fieldSendText:
			m.SendText, err = decodeSub[SendTextResponse](f.bytes)
		case fieldGetProfileProperty:
			m.GetProfileProperty, err = decodeSub[GetProfilePropertyResponse](f.bytes)
		case fieldActivate:
			m.Activate, err = decodeSub[ActivateResponse](f.bytes)
		case fieldVariable:
			m.Variable, err = decodeSub[VariableResponse](f.bytes)
		case fieldFocus:
			m.Focus, err = decodeSub[FocusResponse](f.bytes)
		case fieldListProfiles:
			m.ListProfiles, err = decodeSub[ListProfilesResponse](f.bytes)
		case fieldPreferences:
			m.Preferences, err = decodeSub[PreferencesResponse](f.bytes)
		case fieldColorPreset:
			m.ColorPreset, err = decodeSub[ColorPresetResponse](f.bytes)
		case fieldInvokeFunction:
			m.InvokeFunction, err = decodeSub[InvokeFunctionResponse](f.bytes)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", kindName(f.num), err)
		}
		return nil
	})
}

// IsNotification reports whether the message was not sent in reply to a
// request.
func (m *ServerMessage) IsNotification() bool {
	return m.Notification != nil
}

func kindName(num protowire.Number) string {
	switch num {
	case fieldGetBuffer:
		return "get_buffer"
	case fieldSetProfileProperty:
		return "set_profile_property"
	case fieldListSessions:
		return "list_sessions"
	case fieldSendText:
		return "send_text"
	case fieldGetProfileProperty:
		return "get_profile_property"
	case fieldActivate:
		return "activate"
	case fieldVariable:
		return "variable"
	case fieldFocus:
		return "focus"
	case fieldListProfiles:
		return "list_profiles"
	case fieldPreferences:
		return "preferences"
	case fieldColorPreset:
		return "color_preset"
	case fieldInvokeFunction:
		return "invoke_function"
	case fieldNotification:
		return "notification"
	}
	return fmt.Sprintf("field_%d", num)
}
