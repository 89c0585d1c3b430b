package link

import (
	"context"
	"fmt"
	"time"

	"itermlink/internal/iterm"
	"itermlink/internal/logging"
	"itermlink/internal/presets"
)

// Kind names what a title applies to.
type Kind string

const (
	KindSession Kind = "session"
	KindTab     Kind = "tab"
	KindWindow  Kind = "window"
)

// ParseKind accepts session, tab or window.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindSession, KindTab, KindWindow:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedTarget, s)
}

// Controller checks for and launches the iTerm2 application.
type Controller interface {
	IsRunning(ctx context.Context) bool
	Launch(ctx context.Context) error
}

// Client runs one request per call over a fresh connection. Every
// method taking a session ID treats "" as the current session.
type Client struct {
	Options    iterm.Options
	TitleDelay time.Duration
	// Controller, when set, is asked whether iTerm2 runs before dialing
	// the default socket.
	Controller Controller
	Store      *presets.Store
}

// NewClient returns a client dialing with opts.
func NewClient(opts iterm.Options) *Client {
	return &Client{
		Options:    opts,
		TitleDelay: DefaultTitleDelay,
		Controller: iterm.NewController(),
		Store:      presets.NewStore(""),
	}
}

func (c *Client) run(ctx context.Context, fn func(ctx context.Context, conn *iterm.Connection) error) error {
	if c.Controller != nil && c.Options.URL == "" && !c.Controller.IsRunning(ctx) {
		return iterm.ErrNotRunning
	}
	return iterm.Run(ctx, c.Options, fn)
}

func (c *Client) withSession(ctx context.Context, id string, fn func(ctx context.Context, s *iterm.Session) error) error {
	return c.run(ctx, func(ctx context.Context, conn *iterm.Connection) error {
		app, err := iterm.GetApp(ctx, conn)
		if err != nil {
			return err
		}
		s, err := findSession(app, id)
		if err != nil {
			return err
		}
		return fn(ctx, s)
	})
}

func findSession(app *iterm.App, id string) (*iterm.Session, error) {
	if id == "" {
		return currentSession(app)
	}
	if s := app.SessionByID(id); s != nil {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
}

// CD changes directory in a session.
func (c *Client) CD(ctx context.Context, sessionID, path string) error {
	return c.withSession(ctx, sessionID, func(ctx context.Context, s *iterm.Session) error {
		return CD(ctx, s, path)
	})
}

// RunCommand runs command in a session.
func (c *Client) RunCommand(ctx context.Context, sessionID, command string) error {
	return c.withSession(ctx, sessionID, func(ctx context.Context, s *iterm.Session) error {
		return RunCommand(ctx, s, command)
	})
}

// ClearedCommand clears a session, then runs command in it.
func (c *Client) ClearedCommand(ctx context.Context, sessionID, command string) error {
	return c.withSession(ctx, sessionID, func(ctx context.Context, s *iterm.Session) error {
		return ClearedCommand(ctx, s, command)
	})
}

// VisibleHistory returns the non-blank screen lines of a session.
func (c *Client) VisibleHistory(ctx context.Context, sessionID string) ([]string, error) {
	var lines []string
	err := c.withSession(ctx, sessionID, func(ctx context.Context, s *iterm.Session) error {
		var err error
		lines, err = VisibleHistory(ctx, s)
		return err
	})
	return lines, err
}

// SetTitle renames the session, tab or window with the given ID. An
// empty ID picks the current one of that kind.
func (c *Client) SetTitle(ctx context.Context, kind Kind, id, title string) error {
	return c.run(ctx, func(ctx context.Context, conn *iterm.Connection) error {
		app, err := iterm.GetApp(ctx, conn)
		if err != nil {
			return err
		}
		target, err := titleTarget(app, kind, id)
		if err != nil {
			return err
		}
		logging.Debug("Setting title", "kind", kind, "id", id, "title", title)
		return SetTitleAfter(ctx, target, title, c.TitleDelay)
	})
}

func titleTarget(app *iterm.App, kind Kind, id string) (any, error) {
	switch kind {
	case KindSession:
		return findSession(app, id)
	case KindTab:
		if id != "" {
			if t := app.TabByID(id); t != nil {
				return t, nil
			}
			return nil, fmt.Errorf("link: tab not found: %s", id)
		}
		if w := app.CurrentWindow(); w != nil && w.CurrentTab() != nil {
			return w.CurrentTab(), nil
		}
		return nil, ErrNoCurrentSession
	case KindWindow:
		if id != "" {
			if w := app.WindowByID(id); w != nil {
				return w, nil
			}
			return nil, fmt.Errorf("link: window not found: %s", id)
		}
		if w := app.CurrentWindow(); w != nil {
			return w, nil
		}
		return nil, ErrNoCurrentSession
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedTarget, kind)
}

// Sessions describes every session. The handles in the result belong to
// a closed connection and are only good for reading.
func (c *Client) Sessions(ctx context.Context) ([]SessionInfo, error) {
	var infos []SessionInfo
	err := c.run(ctx, func(ctx context.Context, conn *iterm.Connection) error {
		app, err := iterm.GetApp(ctx, conn)
		if err != nil {
			return err
		}
		infos, err = AllSessionsInfo(ctx, app.Windows)
		return err
	})
	return infos, err
}

// Presets lists the installed color presets.
func (c *Client) Presets(ctx context.Context) ([]string, error) {
	var names []string
	err := c.run(ctx, func(ctx context.Context, conn *iterm.Connection) error {
		var err error
		names, err = Presets(ctx, conn)
		return err
	})
	return names, err
}

// CurrentPreset returns the preset the default profile uses.
func (c *Client) CurrentPreset(ctx context.Context) (string, bool, error) {
	var (
		name  string
		found bool
	)
	err := c.run(ctx, func(ctx context.Context, conn *iterm.Connection) error {
		var err error
		name, found, err = CurrentPreset(ctx, conn, nil)
		return err
	})
	return name, found, err
}

// ChangePreset applies a preset to the default profile.
func (c *Client) ChangePreset(ctx context.Context, name string) error {
	return c.run(ctx, func(ctx context.Context, conn *iterm.Connection) error {
		return ChangePreset(ctx, conn, name, nil)
	})
}

// Focus brings a session to the front, selecting its tab.
func (c *Client) Focus(ctx context.Context, sessionID string) error {
	return c.withSession(ctx, sessionID, func(ctx context.Context, s *iterm.Session) error {
		return s.Activate(ctx, true, true)
	})
}

// IsRunning reports whether iTerm2 is running.
func (c *Client) IsRunning(ctx context.Context) bool {
	if c.Controller == nil {
		return false
	}
	return c.Controller.IsRunning(ctx)
}

// Launch starts iTerm2.
func (c *Client) Launch(ctx context.Context) error {
	if c.Controller == nil {
		return fmt.Errorf("link: no controller")
	}
	return c.Controller.Launch(ctx)
}

// DeletePreset removes a custom preset from the preferences file.
func (c *Client) DeletePreset(name string) error {
	return c.Store.Delete(name)
}

// CustomPresets lists the presets the user imported, which are the ones
// DeletePreset can remove.
func (c *Client) CustomPresets() ([]string, error) {
	return c.Store.Names()
}
