package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestClientMessageMarshal(t *testing.T) {
	tests := []struct {
		name string
		msg  *ClientMessage
		kind string
	}{
		{
			name: "send text",
			msg:  &ClientMessage{ID: 7, SendText: &SendTextRequest{Session: "s1", Text: "ls\n"}},
			kind: "send_text",
		},
		{
			name: "empty list sessions",
			msg:  &ClientMessage{ID: 1, ListSessions: &ListSessionsRequest{}},
			kind: "list_sessions",
		},
		{
			name: "invoke function on a tab",
			msg: &ClientMessage{ID: 3, InvokeFunction: &InvokeFunctionRequest{
				Receiver:   "tab-1",
				Invocation: `iterm2.set_title(title: "x")`,
				Timeout:    -1,
			}},
			kind: "invoke_function",
		},
		{
			name: "default profile preference",
			msg: &ClientMessage{ID: 9, Preferences: &PreferencesRequest{
				Requests: []*PreferenceQuery{{DefaultProfile: true}},
			}},
			kind: "preferences",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.msg.Kind())

			data, err := tt.msg.Marshal()
			require.NoError(t, err)

			var got ClientMessage
			require.NoError(t, got.Unmarshal(data))
			assert.Equal(t, tt.msg, &got)
		})
	}
}

func TestClientMessageWithoutRequest(t *testing.T) {
	_, err := (&ClientMessage{ID: 1}).Marshal()
	assert.ErrorIs(t, err, ErrNoSubmessage)
}

func TestServerMessageError(t *testing.T) {
	data, err := (&ServerMessage{ID: 4, HasError: true, Error: "bad request"}).Marshal()
	require.NoError(t, err)

	var msg ServerMessage
	require.NoError(t, msg.Unmarshal(data))
	assert.Equal(t, int64(4), msg.ID)
	assert.True(t, msg.HasError)
	assert.Equal(t, "bad request", msg.Error)
	assert.False(t, msg.IsNotification())
}

func TestServerMessageNotification(t *testing.T) {
	payload := appendString(nil, 1, "anything")
	data, err := (&ServerMessage{Notification: payload}).Marshal()
	require.NoError(t, err)

	var msg ServerMessage
	require.NoError(t, msg.Unmarshal(data))
	assert.True(t, msg.IsNotification())
	assert.Equal(t, payload, msg.Notification)
}

func TestUnknownFieldsAreSkipped(t *testing.T) {
	var b []byte
	b = appendVarint(b, fieldID, 12)
	// Fields this package does not model, in every wire type.
	b = appendString(b, 5000, "future")
	b = appendFloat(b, 5001, 1.5)
	b = appendDouble(b, 5002, 2.5)
	b = appendVarint(b, 5003, 99)
	b = appendSub(b, fieldSendText, &SendTextResponse{Status: SendTextSessionNotFound})

	var msg ServerMessage
	require.NoError(t, msg.Unmarshal(b))
	assert.Equal(t, int64(12), msg.ID)
	require.NotNil(t, msg.SendText)
	assert.Equal(t, SendTextSessionNotFound, msg.SendText.Status)
}

func TestUnmarshalTruncated(t *testing.T) {
	data, err := (&ClientMessage{ID: 1, SendText: &SendTextRequest{Session: "s", Text: "hello"}}).Marshal()
	require.NoError(t, err)

	var msg ClientMessage
	assert.Error(t, msg.Unmarshal(data[:len(data)-2]))
}

func TestStatusErrors(t *testing.T) {
	assert.NoError(t, (&SendTextResponse{}).Err())

	err := (&GetBufferResponse{Status: GetBufferSessionNotFound}).Err()
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "SESSION_NOT_FOUND", se.Status)
	assert.Equal(t, "get buffer: SESSION_NOT_FOUND", err.Error())

	err = (&ColorPresetResponse{Status: 42}).Err()
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "STATUS_42", se.Status)

	err = (&InvokeFunctionResponse{Failed: true, ErrorStatus: InvokeFunctionInvalidID, ErrorReason: "no such tab"}).Err()
	assert.EqualError(t, err, "invoke function: INVALID_ID (no such tab)")
}

func TestSplitTreeSessions(t *testing.T) {
	leaf := func(id string) *SplitTreeLink {
		return &SplitTreeLink{Session: &SessionSummary{UniqueIdentifier: id}}
	}
	root := &SplitTreeNode{Links: []*SplitTreeLink{
		leaf("a"),
		{Node: &SplitTreeNode{Vertical: true, Links: []*SplitTreeLink{leaf("b"), leaf("c")}}},
		leaf("d"),
	}}

	var ids []string
	for _, s := range root.Sessions() {
		ids = append(ids, s.UniqueIdentifier)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids)
	assert.Nil(t, (*SplitTreeNode)(nil).Sessions())
}

func TestListSessionsRoundTrip(t *testing.T) {
	resp := &ServerMessage{ID: 2, ListSessions: &ListSessionsResponse{Windows: []*ListWindow{{
		WindowID: "w1",
		Number:   1,
		Tabs: []*ListTab{{
			TabID: "t1",
			Root: &SplitTreeNode{Links: []*SplitTreeLink{{Session: &SessionSummary{
				UniqueIdentifier: "s1",
				Title:            "zsh",
				GridSize:         &Size{Width: 80, Height: 24},
			}}}},
		}},
	}}}}

	data, err := resp.Marshal()
	require.NoError(t, err)

	var got ServerMessage
	require.NoError(t, got.Unmarshal(data))
	assert.Equal(t, resp, &got)
}

func TestFocusOneofBranches(t *testing.T) {
	resp := &FocusResponse{Notifications: []*FocusChangedNotification{
		{HasApplicationActive: true, ApplicationActive: false},
		{Window: &FocusWindow{Status: WindowBecameKey, WindowID: "w1"}},
		{HasSelectedTab: true, SelectedTab: "t1"},
		{HasSession: true, Session: ""},
	}}

	var got FocusResponse
	require.NoError(t, got.unmarshal(resp.marshal()))
	require.Len(t, got.Notifications, 4)
	assert.True(t, got.Notifications[0].HasApplicationActive)
	assert.False(t, got.Notifications[0].ApplicationActive)
	assert.Equal(t, WindowBecameKey, got.Notifications[1].Window.Status)
	assert.Equal(t, "t1", got.Notifications[2].SelectedTab)
	assert.True(t, got.Notifications[3].HasSession)
}

func TestColorSettingIsFixed32(t *testing.T) {
	b := (&ColorSetting{Red: 0.5, Key: "Ansi 0 Color"}).marshal()

	num, typ, n := protowire.ConsumeTag(b)
	require.Greater(t, n, 0)
	assert.Equal(t, protowire.Number(1), num)
	assert.Equal(t, protowire.Fixed32Type, typ)

	var got ColorSetting
	require.NoError(t, got.unmarshal(b))
	assert.Equal(t, float32(0.5), got.Red)
	assert.Equal(t, "Ansi 0 Color", got.Key)
}

func TestColorPresetResponseBranches(t *testing.T) {
	list := &ColorPresetResponse{HasList: true, Names: []string{"Dark", "Light"}}
	var got ColorPresetResponse
	require.NoError(t, got.unmarshal(list.marshal()))
	assert.True(t, got.HasList)
	assert.Equal(t, []string{"Dark", "Light"}, got.Names)

	missing := &ColorPresetResponse{Status: ColorPresetNotFound}
	got = ColorPresetResponse{}
	require.NoError(t, got.unmarshal(missing.marshal()))
	assert.False(t, got.HasList)
	assert.Empty(t, got.ColorSettings)
	assert.Equal(t, ColorPresetNotFound, got.Status)
}

func TestPreferenceResultBranches(t *testing.T) {
	tests := []struct {
		name string
		in   *PreferenceResult
	}{
		{"unrecognized", &PreferenceResult{Unrecognized: true}},
		{"json value", &PreferenceResult{HasJSONValue: true, JSONValue: `"x"`}},
		{"default profile", &PreferenceResult{DefaultProfileGUID: "guid-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got PreferenceResult
			require.NoError(t, got.unmarshal(tt.in.marshal()))
			assert.Equal(t, tt.in, &got)
		})
	}
}

func TestInvokeFunctionRequestAppContext(t *testing.T) {
	req := &InvokeFunctionRequest{Invocation: "iTerm2.get_string()", Timeout: 5}

	var got InvokeFunctionRequest
	require.NoError(t, got.unmarshal(req.marshal()))
	assert.Equal(t, req, &got)
	assert.Empty(t, got.Receiver)
}
