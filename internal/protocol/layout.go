package protocol

// ListSessionsRequest asks for every window, tab and session.
type ListSessionsRequest struct{}

func (m *ListSessionsRequest) marshal() []byte           { return nil }
func (m *ListSessionsRequest) unmarshal(b []byte) error { return walk(b, skipField) }

func skipField(field) error { return nil }

// Size is a grid size in cells.
type Size struct {
	Width  int32
	Height int32
}

func (m *Size) marshal() []byte {
	var b []byte
	b = appendVarint(b, 1, uint64(m.Width))
	b = appendVarint(b, 2, uint64(m.Height))
	return b
}

func (m *Size) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.Width = f.Int32()
		case 2:
			m.Height = f.Int32()
		}
		return nil
	})
}

// SessionSummary describes one session in a ListSessionsResponse.
type SessionSummary struct {
	UniqueIdentifier string
	GridSize         *Size
	Title            string
}

func (m *SessionSummary) marshal() []byte {
	var b []byte
	b = appendOptString(b, 1, m.UniqueIdentifier)
	if m.GridSize != nil {
		b = appendSub(b, 3, m.GridSize)
	}
	b = appendOptString(b, 4, m.Title)
	return b
}

func (m *SessionSummary) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.UniqueIdentifier = f.String()
		case 3:
			s, err := decodeSub[Size](f.bytes)
			if err != nil {
				return err
			}
			m.GridSize = s
		case 4:
			m.Title = f.String()
		}
		return nil
	})
}

// SplitTreeLink is a child of a split: either a session or another split.
type SplitTreeLink struct {
	Session *SessionSummary
	Node    *SplitTreeNode
}

func (m *SplitTreeLink) marshal() []byte {
	var b []byte
	switch {
	case m.Session != nil:
		b = appendSub(b, 1, m.Session)
	case m.Node != nil:
		b = appendSub(b, 2, m.Node)
	}
	return b
}

func (m *SplitTreeLink) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			s, err := decodeSub[SessionSummary](f.bytes)
			if err != nil {
				return err
			}
			m.Session = s
		case 2:
			n, err := decodeSub[SplitTreeNode](f.bytes)
			if err != nil {
				return err
			}
			m.Node = n
		}
		return nil
	})
}

// SplitTreeNode is a split pane container.
type SplitTreeNode struct {
	Vertical bool
	Links    []*SplitTreeLink
}

func (m *SplitTreeNode) marshal() []byte {
	var b []byte
	b = appendOptBool(b, 1, m.Vertical)
	for _, l := range m.Links {
		b = appendSub(b, 2, l)
	}
	return b
}

func (m *SplitTreeNode) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.Vertical = f.Bool()
		case 2:
			l, err := decodeSub[SplitTreeLink](f.bytes)
			if err != nil {
				return err
			}
			m.Links = append(m.Links, l)
		}
		return nil
	})
}

// Sessions flattens the tree into its sessions, depth first.
func (m *SplitTreeNode) Sessions() []*SessionSummary {
	if m == nil {
		return nil
	}
	var out []*SessionSummary
	for _, l := range m.Links {
		if l.Session != nil {
			out = append(out, l.Session)
		} else if l.Node != nil {
			out = append(out, l.Node.Sessions()...)
		}
	}
	return out
}

type ListTab struct {
	TabID        string
	Root         *SplitTreeNode
	TmuxWindowID string
}

func (m *ListTab) marshal() []byte {
	var b []byte
	b = appendOptString(b, 2, m.TabID)
	if m.Root != nil {
		b = appendSub(b, 3, m.Root)
	}
	b = appendOptString(b, 4, m.TmuxWindowID)
	return b
}

func (m *ListTab) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 2:
			m.TabID = f.String()
		case 3:
			n, err := decodeSub[SplitTreeNode](f.bytes)
			if err != nil {
				return err
			}
			m.Root = n
		case 4:
			m.TmuxWindowID = f.String()
		}
		return nil
	})
}

type ListWindow struct {
	Tabs     []*ListTab
	WindowID string
	Number   int32
}

func (m *ListWindow) marshal() []byte {
	var b []byte
	for _, t := range m.Tabs {
		b = appendSub(b, 1, t)
	}
	b = appendOptString(b, 2, m.WindowID)
	b = appendOptInt(b, 4, int64(m.Number))
	return b
}

func (m *ListWindow) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			t, err := decodeSub[ListTab](f.bytes)
			if err != nil {
				return err
			}
			m.Tabs = append(m.Tabs, t)
		case 2:
			m.WindowID = f.String()
		case 4:
			m.Number = f.Int32()
		}
		return nil
	})
}

type ListSessionsResponse struct {
	Windows        []*ListWindow
	BuriedSessions []*SessionSummary
}

func (m *ListSessionsResponse) marshal() []byte {
	var b []byte
	for _, w := range m.Windows {
		b = appendSub(b, 1, w)
	}
	for _, s := range m.BuriedSessions {
		b = appendSub(b, 2, s)
	}
	return b
}

func (m *ListSessionsResponse) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			w, err := decodeSub[ListWindow](f.bytes)
			if err != nil {
				return err
			}
			m.Windows = append(m.Windows, w)
		case 2:
			s, err := decodeSub[SessionSummary](f.bytes)
			if err != nil {
				return err
			}
			m.BuriedSessions = append(m.BuriedSessions, s)
		}
		return nil
	})
}

// FocusRequest asks for the current focus state.
type FocusRequest struct{}

func (m *FocusRequest) marshal() []byte           { return nil }
func (m *FocusRequest) unmarshal(b []byte) error { return walk(b, skipField) }

// WindowStatus is how a window's key state changed.
type WindowStatus int32

const (
	WindowBecameKey WindowStatus = iota
	WindowIsCurrent
	WindowResignedKey
)

type FocusWindow struct {
	Status   WindowStatus
	WindowID string
}

func (m *FocusWindow) marshal() []byte {
	var b []byte
	b = appendVarint(b, 1, uint64(m.Status))
	b = appendOptString(b, 2, m.WindowID)
	return b
}

func (m *FocusWindow) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.Status = WindowStatus(f.Int32())
		case 2:
			m.WindowID = f.String()
		}
		return nil
	})
}

// FocusChangedNotification carries exactly one focus event. The Has*
// flags record which branch of the oneof was present.
type FocusChangedNotification struct {
	HasApplicationActive bool
	ApplicationActive    bool
	Window               *FocusWindow
	HasSelectedTab       bool
	SelectedTab          string
	HasSession           bool
	Session              string
}

func (m *FocusChangedNotification) marshal() []byte {
	var b []byte
	switch {
	case m.HasApplicationActive:
		b = appendBool(b, 1, m.ApplicationActive)
	case m.Window != nil:
		b = appendSub(b, 2, m.Window)
	case m.HasSelectedTab:
		b = appendString(b, 3, m.SelectedTab)
	case m.HasSession:
		b = appendString(b, 4, m.Session)
	}
	return b
}

func (m *FocusChangedNotification) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			m.HasApplicationActive = true
			m.ApplicationActive = f.Bool()
		case 2:
			w, err := decodeSub[FocusWindow](f.bytes)
			if err != nil {
				return err
			}
			m.Window = w
		case 3:
			m.HasSelectedTab = true
			m.SelectedTab = f.String()
		case 4:
			m.HasSession = true
			m.Session = f.String()
		}
		return nil
	})
}

type FocusResponse struct {
	Notifications []*FocusChangedNotification
}

func (m *FocusResponse) marshal() []byte {
	var b []byte
	for _, n := range m.Notifications {
		b = appendSub(b, 1, n)
	}
	return b
}

func (m *FocusResponse) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		if f.num == 1 {
			n, err := decodeSub[FocusChangedNotification](f.bytes)
			if err != nil {
				return err
			}
			m.Notifications = append(m.Notifications, n)
		}
		return nil
	})
}
