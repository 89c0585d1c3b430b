package iterm

import (
	"context"
	"encoding/json"
	"fmt"

	"itermlink/internal/protocol"
)

// Session is a single pane.
type Session struct {
	conn *Connection

	ID    string
	Title string
	Cols  int
	Rows  int
}

func newSession(conn *Connection, s *protocol.SessionSummary) *Session {
	sess := &Session{conn: conn, ID: s.UniqueIdentifier, Title: s.Title}
	if s.GridSize != nil {
		sess.Cols = int(s.GridSize.Width)
		sess.Rows = int(s.GridSize.Height)
	}
	return sess
}

// SessionByID returns a handle on a session without listing the layout.
// Calls on it fail with SESSION_NOT_FOUND if the ID is stale.
func SessionByID(conn *Connection, id string) *Session {
	return &Session{conn: conn, ID: id}
}

func (s *Session) String() string {
	return fmt.Sprintf("Session %q (%s)", s.Title, s.ID)
}

// SendText types text into the session. Include "\n" to press return.
func (s *Session) SendText(ctx context.Context, text string) error {
	resp, err := s.conn.Call(ctx, &protocol.ClientMessage{SendText: &protocol.SendTextRequest{
		Session: s.ID,
		Text:    text,
	}})
	if err != nil {
		return err
	}
	if resp.SendText == nil {
		return unexpectedResponse("send text")
	}
	return resp.SendText.Err()
}

// ScreenContents is the visible portion of a session.
type ScreenContents struct {
	Lines   []string
	CursorX int
	CursorY int64
}

// NumberOfLines returns the number of visible lines.
func (c *ScreenContents) NumberOfLines() int { return len(c.Lines) }

// Line returns the i'th visible line.
func (c *ScreenContents) Line(i int) string { return c.Lines[i] }

// ScreenContents reads the lines currently on screen.
func (s *Session) ScreenContents(ctx context.Context) (*ScreenContents, error) {
	resp, err := s.conn.Call(ctx, &protocol.ClientMessage{GetBuffer: &protocol.GetBufferRequest{
		Session:   s.ID,
		LineRange: &protocol.LineRange{ScreenContentsOnly: true},
	}})
	if err != nil {
		return nil, err
	}
	buf := resp.GetBuffer
	if buf == nil {
		return nil, unexpectedResponse("get buffer")
	}
	if err := buf.Err(); err != nil {
		return nil, err
	}

	contents := &ScreenContents{Lines: make([]string, 0, len(buf.Contents))}
	for _, line := range buf.Contents {
		contents.Lines = append(contents.Lines, line.Text)
	}
	if buf.Cursor != nil {
		contents.CursorX = int(buf.Cursor.X)
		contents.CursorY = buf.Cursor.Y
	}
	return contents, nil
}

// Variable returns the JSON-decoded value of a session variable such as
// "path" or "jobName". Unset variables decode to nil.
func (s *Session) Variable(ctx context.Context, name string) (any, error) {
	resp, err := s.conn.Call(ctx, &protocol.ClientMessage{Variable: &protocol.VariableRequest{
		SessionID: s.ID,
		Get:       []string{name},
	}})
	if err != nil {
		return nil, err
	}
	if resp.Variable == nil {
		return nil, unexpectedResponse("variable")
	}
	if err := resp.Variable.Err(); err != nil {
		return nil, err
	}
	if len(resp.Variable.Values) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal([]byte(resp.Variable.Values[0]), &v); err != nil {
		return nil, fmt.Errorf("iterm: variable %q: %w", name, err)
	}
	return v, nil
}

// StringVariable is Variable for string-valued variables. An unset
// variable is the empty string.
func (s *Session) StringVariable(ctx context.Context, name string) (string, error) {
	v, err := s.Variable(ctx, name)
	if err != nil || v == nil {
		return "", err
	}
	str, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("iterm: variable %q is %T, not a string", name, v)
	}
	return str, nil
}

// SetVariable sets a session variable. User-defined names must start
// with "user.".
func (s *Session) SetVariable(ctx context.Context, name string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("iterm: encode variable %q: %w", name, err)
	}
	resp, err := s.conn.Call(ctx, &protocol.ClientMessage{Variable: &protocol.VariableRequest{
		SessionID: s.ID,
		Set:       []*protocol.VariableAssignment{{Name: name, Value: string(data)}},
	}})
	if err != nil {
		return err
	}
	if resp.Variable == nil {
		return unexpectedResponse("variable")
	}
	return resp.Variable.Err()
}

// Profile reads every property of the session's profile.
func (s *Session) Profile(ctx context.Context) (*Profile, error) {
	resp, err := s.conn.Call(ctx, &protocol.ClientMessage{GetProfileProperty: &protocol.GetProfilePropertyRequest{
		Session: s.ID,
	}})
	if err != nil {
		return nil, err
	}
	if resp.GetProfileProperty == nil {
		return nil, unexpectedResponse("get profile property")
	}
	if err := resp.GetProfileProperty.Err(); err != nil {
		return nil, err
	}
	return newProfile(s.conn, s.ID, resp.GetProfileProperty.Properties), nil
}

// SetProfileProperties writes the pending assignments of p into the
// session's local profile.
func (s *Session) SetProfileProperties(ctx context.Context, p *LocalWriteOnlyProfile) error {
	return setProfileProperties(ctx, s.conn, &protocol.SetProfilePropertyRequest{
		Session:     s.ID,
		Assignments: p.assignments(),
	})
}

// Activate makes the session active, selecting its tab and optionally
// bringing its window to the front.
func (s *Session) Activate(ctx context.Context, selectTab, orderWindowFront bool) error {
	resp, err := s.conn.Call(ctx, &protocol.ClientMessage{Activate: &protocol.ActivateRequest{
		SessionID:        s.ID,
		SelectSession:    true,
		SelectTab:        selectTab,
		OrderWindowFront: orderWindowFront,
	}})
	if err != nil {
		return err
	}
	if resp.Activate == nil {
		return unexpectedResponse("activate")
	}
	return resp.Activate.Err()
}
