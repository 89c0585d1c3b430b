// Package link is a convenience layer over the iTerm2 API: titles,
// visible history, shell commands and color presets.
//
// The functions taking a *iterm.Connection work inside an open
// connection. Client wraps them into blocking calls that dial, do one
// thing and hang up.
package link

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"itermlink/internal/iterm"
	"itermlink/internal/logging"
)

// DefaultTitleDelay is how long SetTitle waits before renaming a session.
// A rename sent right after a command starts is overwritten by iTerm2's
// own job-name title.
const DefaultTitleDelay = 700 * time.Millisecond

var (
	// ErrUnsupportedTarget is returned by SetTitle for anything but a
	// session, tab or window.
	ErrUnsupportedTarget = errors.New("link: cannot set title on this object")

	// ErrNoCurrentSession is returned when iTerm2 has no key window, or
	// the key window has no active session.
	ErrNoCurrentSession = errors.New("link: no current session")

	// ErrSessionNotFound is returned for a session ID iTerm2 does not know.
	ErrSessionNotFound = errors.New("link: session not found")
)

// SetTitle sets the title of a *iterm.Session, *iterm.Tab or
// *iterm.Window, waiting DefaultTitleDelay first for sessions.
func SetTitle(ctx context.Context, target any, title string) error {
	return SetTitleAfter(ctx, target, title, DefaultTitleDelay)
}

// SetTitleAfter is SetTitle with an explicit session delay. Tabs and
// windows are renamed immediately.
func SetTitleAfter(ctx context.Context, target any, title string, delay time.Duration) error {
	switch t := target.(type) {
	case *iterm.Tab:
		return t.SetTitle(ctx, title)
	case *iterm.Window:
		return t.SetTitle(ctx, title)
	case *iterm.Session:
		if err := sleep(ctx, delay); err != nil {
			return err
		}
		p := iterm.NewLocalWriteOnlyProfile()
		if err := p.SetAllowTitleSetting(false); err != nil {
			return err
		}
		if err := p.SetName(title); err != nil {
			return err
		}
		return t.SetProfileProperties(ctx, p)
	}
	return fmt.Errorf("%w: %T", ErrUnsupportedTarget, target)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ClearedCommand clears the screen of sess, then runs command in it.
func ClearedCommand(ctx context.Context, sess *iterm.Session, command string) error {
	return sess.SendText(ctx, "clear && "+command+"\n")
}

// RunCommand types command into sess and presses return.
func RunCommand(ctx context.Context, sess *iterm.Session, command string) error {
	return sess.SendText(ctx, command+"\n")
}

// CD changes the working directory of the shell in sess.
func CD(ctx context.Context, sess *iterm.Session, path string) error {
	return sess.SendText(ctx, fmt.Sprintf("cd \"%s\"\n", path))
}

// VisibleHistory returns the lines on screen in sess, without the blank
// lines below the last output.
func VisibleHistory(ctx context.Context, sess *iterm.Session) ([]string, error) {
	contents, err := sess.ScreenContents(ctx)
	if err != nil {
		return nil, err
	}
	return TrimTrailingBlank(contents.Lines), nil
}

// TrimTrailingBlank drops whitespace-only lines from the end of lines.
// Blank lines between output are kept.
func TrimTrailingBlank(lines []string) []string {
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[:end]
}

// CurrentSession returns the active session of the active tab of the key
// window.
func CurrentSession(ctx context.Context, conn *iterm.Connection) (*iterm.Session, error) {
	app, err := iterm.GetApp(ctx, conn)
	if err != nil {
		return nil, err
	}
	return currentSession(app)
}

func currentSession(app *iterm.App) (*iterm.Session, error) {
	w := app.CurrentWindow()
	if w == nil {
		return nil, ErrNoCurrentSession
	}
	t := w.CurrentTab()
	if t == nil {
		return nil, ErrNoCurrentSession
	}
	s := t.CurrentSession()
	if s == nil {
		return nil, ErrNoCurrentSession
	}
	return s, nil
}

// HasUniqueSession reports whether w holds a single tab with a single
// session.
func HasUniqueSession(w *iterm.Window) bool {
	return len(w.Tabs) == 1 && len(w.Tabs[0].Sessions()) == 1
}

// SessionInfo describes one session for listing.
type SessionInfo struct {
	Session  *iterm.Session
	WindowID string
	TabID    string
	// Path is the shell's working directory, absolute with symlinks
	// resolved. It is empty when iTerm2 does not know it.
	Path    string
	Profile *iterm.Profile
}

// AllSessionsInfo describes every session of windows, in window, tab and
// split order.
func AllSessionsInfo(ctx context.Context, windows []*iterm.Window) ([]SessionInfo, error) {
	var infos []SessionInfo
	for _, w := range windows {
		for _, t := range w.Tabs {
			for _, s := range t.Sessions() {
				info, err := sessionInfo(ctx, s)
				if err != nil {
					return nil, fmt.Errorf("link: describe %s: %w", s, err)
				}
				info.WindowID = w.ID
				info.TabID = t.ID
				infos = append(infos, info)
			}
		}
	}
	return infos, nil
}

func sessionInfo(ctx context.Context, s *iterm.Session) (SessionInfo, error) {
	path, err := s.StringVariable(ctx, "path")
	if err != nil {
		return SessionInfo{}, err
	}
	profile, err := s.Profile(ctx)
	if err != nil {
		return SessionInfo{}, err
	}
	return SessionInfo{Session: s, Path: resolvePath(path), Profile: profile}, nil
}

// resolvePath makes path absolute and resolves symlinks. The path may
// belong to a remote host, in which case it is returned as given.
func resolvePath(path string) string {
	if path == "" {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		logging.Debug("Keeping unresolved session path", "path", logging.MaskPath(abs), "error", err)
		return abs
	}
	return resolved
}
