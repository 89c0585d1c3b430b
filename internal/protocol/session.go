package protocol

// SendTextRequest types text into a session as if typed on the keyboard.
type SendTextRequest struct {
	Session           string
	Text              string
	SuppressBroadcast bool
}

func (m *SendTextRequest) marshal() []byte {
	var b []byte
	b = appendOptString(b, 1, m.Session)
	b = appendOptString(b, 2, m.Text)
	b = appendOptBool(b, 3, m.SuppressBroadcast)
	return b
}

func (m *SendTextRequest) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.Session = f.String()
		case 2:
			m.Text = f.String()
		case 3:
			m.SuppressBroadcast = f.Bool()
		}
		return nil
	})
}

type SendTextResponse struct {
	Status SendTextStatus
}

// Err returns a *StatusError unless the status is OK.
func (m *SendTextResponse) Err() error {
	return statusErr("send text", sessionStatusNames, int32(m.Status))
}

func (m *SendTextResponse) marshal() []byte {
	return appendOptInt(nil, 1, int64(m.Status))
}

func (m *SendTextResponse) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		if f.num == 1 {
			m.Status = SendTextStatus(f.Int32())
		}
		return nil
	})
}

// LineRange selects which lines a GetBufferRequest returns.
type LineRange struct {
	ScreenContentsOnly bool
	TrailingLines      int32
}

func (m *LineRange) marshal() []byte {
	var b []byte
	b = appendOptBool(b, 1, m.ScreenContentsOnly)
	b = appendOptInt(b, 2, int64(m.TrailingLines))
	return b
}

func (m *LineRange) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.ScreenContentsOnly = f.Bool()
		case 2:
			m.TrailingLines = f.Int32()
		}
		return nil
	})
}

type GetBufferRequest struct {
	Session   string
	LineRange *LineRange
}

func (m *GetBufferRequest) marshal() []byte {
	var b []byte
	b = appendOptString(b, 1, m.Session)
	if m.LineRange != nil {
		b = appendSub(b, 2, m.LineRange)
	}
	return b
}

func (m *GetBufferRequest) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.Session = f.String()
		case 2:
			lr, err := decodeSub[LineRange](f.bytes)
			if err != nil {
				return err
			}
			m.LineRange = lr
		}
		return nil
	})
}

// Continuation says how a line ends.
type Continuation int32

const (
	ContinuationNone Continuation = iota
	ContinuationHardEOL
	ContinuationSoftEOL
)

// LineContents is one line of a session buffer.
type LineContents struct {
	Text         string
	Continuation Continuation
}

func (m *LineContents) marshal() []byte {
	var b []byte
	b = appendOptString(b, 1, m.Text)
	b = appendOptInt(b, 3, int64(m.Continuation))
	return b
}

func (m *LineContents) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.Text = f.String()
		case 3:
			m.Continuation = Continuation(f.Int32())
		}
		return nil
	})
}

// Coord is a cell position. Y counts from the top of the scrollback.
type Coord struct {
	X int32
	Y int64
}

func (m *Coord) marshal() []byte {
	var b []byte
	b = appendVarint(b, 1, uint64(m.X))
	b = appendVarint(b, 2, uint64(m.Y))
	return b
}

func (m *Coord) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.X = f.Int32()
		case 2:
			m.Y = f.Int64()
		}
		return nil
	})
}

type GetBufferResponse struct {
	Status              GetBufferStatus
	Contents            []*LineContents
	Cursor              *Coord
	NumLinesAboveScreen int64
}

func (m *GetBufferResponse) Err() error {
	return statusErr("get buffer", getBufferStatusNames, int32(m.Status))
}

func (m *GetBufferResponse) marshal() []byte {
	var b []byte
	b = appendOptInt(b, 1, int64(m.Status))
	for _, line := range m.Contents {
		b = appendSub(b, 3, line)
	}
	if m.Cursor != nil {
		b = appendSub(b, 4, m.Cursor)
	}
	b = appendOptInt(b, 5, m.NumLinesAboveScreen)
	return b
}

func (m *GetBufferResponse) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.Status = GetBufferStatus(f.Int32())
		case 3:
			line, err := decodeSub[LineContents](f.bytes)
			if err != nil {
				return err
			}
			m.Contents = append(m.Contents, line)
		case 4:
			c, err := decodeSub[Coord](f.bytes)
			if err != nil {
				return err
			}
			m.Cursor = c
		case 5:
			m.NumLinesAboveScreen = f.Int64()
		}
		return nil
	})
}

// ActivateApp asks iTerm2 to become the active application.
type ActivateApp struct {
	RaiseAllWindows   bool
	IgnoringOtherApps bool
}

func (m *ActivateApp) marshal() []byte {
	var b []byte
	b = appendOptBool(b, 1, m.RaiseAllWindows)
	b = appendOptBool(b, 2, m.IgnoringOtherApps)
	return b
}

func (m *ActivateApp) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.RaiseAllWindows = f.Bool()
		case 2:
			m.IgnoringOtherApps = f.Bool()
		}
		return nil
	})
}

// ActivateRequest focuses a tab, session or window. Exactly one of the
// identifiers should be set.
type ActivateRequest struct {
	TabID            string
	SessionID        string
	WindowID         string
	OrderWindowFront bool
	SelectTab        bool
	SelectSession    bool
	ActivateApp      *ActivateApp
}

func (m *ActivateRequest) marshal() []byte {
	var b []byte
	b = appendOptString(b, 1, m.TabID)
	b = appendOptString(b, 2, m.SessionID)
	b = appendOptString(b, 3, m.WindowID)
	b = appendOptBool(b, 4, m.OrderWindowFront)
	b = appendOptBool(b, 5, m.SelectTab)
	b = appendOptBool(b, 6, m.SelectSession)
	if m.ActivateApp != nil {
		b = appendSub(b, 7, m.ActivateApp)
	}
	return b
}

func (m *ActivateRequest) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.TabID = f.String()
		case 2:
			m.SessionID = f.String()
		case 3:
			m.WindowID = f.String()
		case 4:
			m.OrderWindowFront = f.Bool()
		case 5:
			m.SelectTab = f.Bool()
		case 6:
			m.SelectSession = f.Bool()
		case 7:
			a, err := decodeSub[ActivateApp](f.bytes)
			if err != nil {
				return err
			}
			m.ActivateApp = a
		}
		return nil
	})
}

type ActivateResponse struct {
	Status ActivateStatus
}

func (m *ActivateResponse) Err() error {
	return statusErr("activate", activateStatusNames, int32(m.Status))
}

func (m *ActivateResponse) marshal() []byte {
	return appendOptInt(nil, 1, int64(m.Status))
}

func (m *ActivateResponse) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		if f.num == 1 {
			m.Status = ActivateStatus(f.Int32())
		}
		return nil
	})
}
