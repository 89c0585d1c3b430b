package iterm

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"itermlink/internal/protocol"
)

// App is a snapshot of iTerm2's windows, tabs, sessions and focus.
type App struct {
	conn *Connection

	Windows []*Window
	// Active reports whether iTerm2 is the frontmost application.
	Active bool

	currentWindowID string
}

// Window is a terminal window.
type Window struct {
	conn *Connection

	ID     string
	Number int
	Tabs   []*Tab

	selectedTabID string
}

// Tab is a tab holding one or more split sessions.
type Tab struct {
	conn *Connection

	ID     string
	Window *Window
	Root   *protocol.SplitTreeNode

	sessions        []*Session
	activeSessionID string
}

// GetApp lists the layout and focus state of iTerm2.
func GetApp(ctx context.Context, conn *Connection) (*App, error) {
	a := &App{conn: conn}
	if err := a.Refresh(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// Refresh reloads the layout and focus state.
func (a *App) Refresh(ctx context.Context) error {
	resp, err := a.conn.Call(ctx, &protocol.ClientMessage{ListSessions: &protocol.ListSessionsRequest{}})
	if err != nil {
		return err
	}
	if resp.ListSessions == nil {
		return unexpectedResponse("list sessions")
	}

	a.Windows = make([]*Window, 0, len(resp.ListSessions.Windows))
	for _, lw := range resp.ListSessions.Windows {
		w := &Window{conn: a.conn, ID: lw.WindowID, Number: int(lw.Number)}
		for _, lt := range lw.Tabs {
			t := &Tab{conn: a.conn, ID: lt.TabID, Window: w, Root: lt.Root}
			for _, s := range lt.Root.Sessions() {
				t.sessions = append(t.sessions, newSession(a.conn, s))
			}
			w.Tabs = append(w.Tabs, t)
		}
		a.Windows = append(a.Windows, w)
	}

	focus, err := a.conn.Call(ctx, &protocol.ClientMessage{Focus: &protocol.FocusRequest{}})
	if err != nil {
		return err
	}
	if focus.Focus == nil {
		return unexpectedResponse("focus")
	}
	for _, n := range focus.Focus.Notifications {
		a.applyFocus(n)
	}
	return nil
}

func (a *App) applyFocus(n *protocol.FocusChangedNotification) {
	switch {
	case n.HasApplicationActive:
		a.Active = n.ApplicationActive
	case n.Window != nil:
		if n.Window.Status != protocol.WindowResignedKey {
			a.currentWindowID = n.Window.WindowID
		}
	case n.HasSelectedTab:
		if t := a.TabByID(n.SelectedTab); t != nil {
			t.Window.selectedTabID = t.ID
		}
	case n.HasSession:
		for _, w := range a.Windows {
			for _, t := range w.Tabs {
				if t.sessionByID(n.Session) != nil {
					t.activeSessionID = n.Session
				}
			}
		}
	}
}

// CurrentWindow returns the key window, or nil if iTerm2 has none.
func (a *App) CurrentWindow() *Window {
	return a.WindowByID(a.currentWindowID)
}

func (a *App) WindowByID(id string) *Window {
	if id == "" {
		return nil
	}
	for _, w := range a.Windows {
		if w.ID == id {
			return w
		}
	}
	return nil
}

func (a *App) TabByID(id string) *Tab {
	for _, w := range a.Windows {
		for _, t := range w.Tabs {
			if t.ID == id {
				return t
			}
		}
	}
	return nil
}

func (a *App) SessionByID(id string) *Session {
	for _, w := range a.Windows {
		for _, t := range w.Tabs {
			if s := t.sessionByID(id); s != nil {
				return s
			}
		}
	}
	return nil
}

// CurrentTab returns the selected tab, or nil.
func (w *Window) CurrentTab() *Tab {
	for _, t := range w.Tabs {
		if t.ID == w.selectedTabID {
			return t
		}
	}
	return nil
}

// SetTitle overrides the window title.
func (w *Window) SetTitle(ctx context.Context, title string) error {
	_, err := InvokeMethod(ctx, w.conn, w.ID, "iterm2.set_title", map[string]any{"title": title})
	return err
}

// Sessions returns the tab's split panes in layout order.
func (t *Tab) Sessions() []*Session {
	return t.sessions
}

// CurrentSession returns the active pane, or nil.
func (t *Tab) CurrentSession() *Session {
	return t.sessionByID(t.activeSessionID)
}

func (t *Tab) sessionByID(id string) *Session {
	if id == "" {
		return nil
	}
	for _, s := range t.sessions {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// SetTitle overrides the tab title.
func (t *Tab) SetTitle(ctx context.Context, title string) error {
	_, err := InvokeMethod(ctx, t.conn, t.ID, "iterm2.set_title", map[string]any{"title": title})
	return err
}

// Activate selects the tab and optionally brings its window forward.
func (t *Tab) Activate(ctx context.Context, orderWindowFront bool) error {
	resp, err := t.conn.Call(ctx, &protocol.ClientMessage{Activate: &protocol.ActivateRequest{
		TabID:            t.ID,
		SelectTab:        true,
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

// InvokeMethod calls a registered function with receiver (a window, tab
// or session ID) as its target and returns the JSON result.
func InvokeMethod(ctx context.Context, conn *Connection, receiver, method string, args map[string]any) (json.RawMessage, error) {
	invocation, err := Invocation(method, args)
	if err != nil {
		return nil, err
	}
	resp, err := conn.Call(ctx, &protocol.ClientMessage{InvokeFunction: &protocol.InvokeFunctionRequest{
		Receiver:   receiver,
		Invocation: invocation,
		Timeout:    -1,
	}})
	if err != nil {
		return nil, err
	}
	if resp.InvokeFunction == nil {
		return nil, unexpectedResponse("invoke function")
	}
	if err := resp.InvokeFunction.Err(); err != nil {
		return nil, err
	}
	return json.RawMessage(resp.InvokeFunction.JSONResult), nil
}

// Invocation renders a function call as iTerm2 expects it, for example
// `iterm2.set_title(title: "build")`. Arguments are sorted by name.
func Invocation(name string, args map[string]any) (string, error) {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		data, err := json.Marshal(args[k])
		if err != nil {
			return "", fmt.Errorf("iterm: encode argument %q: %w", k, err)
		}
		parts = append(parts, k+": "+string(data))
	}
	return name + "(" + strings.Join(parts, ", ") + ")", nil
}
