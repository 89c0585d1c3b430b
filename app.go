package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"itermlink/internal/config"
	"itermlink/internal/console"
	"itermlink/internal/link"
	"itermlink/internal/logging"
	"itermlink/internal/presets"
)

var errNotInitialized = errors.New("iTerm2 client not initialized")

// App holds the state shared by every command
type App struct {
	cfg     config.Config
	client  *link.Client
	console *console.Console
	out     io.Writer

	// Flags
	configPath string
	debug      bool
	sessionID  string
}

// NewApp creates a new App
func NewApp() *App {
	return &App{}
}

// startup loads the configuration and sets up logging and the client
func (a *App) startup(in io.Reader, out, errOut io.Writer) error {
	a.console = console.New(in, out, errOut)
	a.out = out

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.debug {
		cfg.Debug = true
	}
	if verr := cfg.Validate(); verr != nil {
		for _, w := range verr.Warnings {
			a.console.Warning("config: %s", w)
		}
	}
	a.cfg = cfg

	if err := logging.Init(cfg.LoggingConfig()); err != nil {
		a.console.Warning("Logging disabled: %v", err)
		logging.InitWriter(cfg.LoggingConfig(), io.Discard)
	}
	logging.Info("itermlink starting", "version", Version, "config", logging.MaskPath(a.configPath))

	client := link.NewClient(cfg.ItermOptions())
	client.TitleDelay = cfg.TitleDelay
	client.Store = presets.NewStore(cfg.PrefsPath)
	a.client = client
	return nil
}

// shutdown flushes the log file
func (a *App) shutdown() {
	logging.Shutdown()
}

// withTimeout bounds a command by the configured timeout. Title changes
// include the title delay.
func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.cfg.Timeout+a.cfg.TitleDelay)
}

// SetTitle renames a session, tab or window
func (a *App) SetTitle(ctx context.Context, kind link.Kind, id, title string) error {
	if a.client == nil {
		return errNotInitialized
	}
	if kind == link.KindSession && id == "" {
		id = a.sessionID
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	if err := a.client.SetTitle(ctx, kind, id, title); err != nil {
		return err
	}
	a.console.Success("%s title set to %q", kind, title)
	return nil
}

// CD changes directory in the selected session. The path is resolved by
// the session's shell, not here.
func (a *App) CD(ctx context.Context, path string) error {
	if a.client == nil {
		return errNotInitialized
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	return a.client.CD(ctx, a.sessionID, path)
}

// RunCommand types a command into the selected session
func (a *App) RunCommand(ctx context.Context, command string, clearFirst bool) error {
	if a.client == nil {
		return errNotInitialized
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	if clearFirst {
		return a.client.ClearedCommand(ctx, a.sessionID, command)
	}
	return a.client.RunCommand(ctx, a.sessionID, command)
}

// History prints the visible lines of the selected session
func (a *App) History(ctx context.Context) error {
	if a.client == nil {
		return errNotInitialized
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	lines, err := a.client.VisibleHistory(ctx, a.sessionID)
	if err != nil {
		return err
	}
	for _, line := range lines {
		a.console.Print(line)
	}
	return nil
}

// Sessions prints every session with its window, tab, profile and path
func (a *App) Sessions(ctx context.Context) error {
	if a.client == nil {
		return errNotInitialized
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	var infos []link.SessionInfo
	err := a.console.Status("Reading sessions", func() error {
		var err error
		infos, err = a.client.Sessions(ctx)
		return err
	})
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		a.console.Warning("No sessions found.")
		return nil
	}

	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		profile := ""
		if info.Profile != nil {
			profile = info.Profile.Name()
		}
		rows = append(rows, []string{info.Session.ID, info.WindowID, info.TabID, info.Session.Title, profile, info.Path})
	}
	a.printTable([]string{"SESSION", "WINDOW", "TAB", "TITLE", "PROFILE", "PATH"}, rows)
	return nil
}

// Presets prints the installed color presets, marking the current one
// and the custom ones that preset delete can remove
func (a *App) Presets(ctx context.Context) error {
	if a.client == nil {
		return errNotInitialized
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	names, err := a.client.Presets(ctx)
	if err != nil {
		return err
	}
	current, found, err := a.client.CurrentPreset(ctx)
	if err != nil {
		logging.Warn("Failed to read current preset", "error", err)
	}
	custom := map[string]bool{}
	if imported, err := a.client.CustomPresets(); err != nil {
		logging.Debug("Failed to read custom presets", "error", err)
	} else {
		for _, name := range imported {
			custom[name] = true
		}
	}

	for _, name := range names {
		label := name
		if custom[name] {
			label += " (custom)"
		}
		if found && name == current {
			a.console.Print("* " + a.console.Emph(label))
			continue
		}
		a.console.Print("  " + label)
	}
	return nil
}

// CurrentPreset prints the preset the default profile uses
func (a *App) CurrentPreset(ctx context.Context) error {
	if a.client == nil {
		return errNotInitialized
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	name, found, err := a.client.CurrentPreset(ctx)
	if err != nil {
		return err
	}
	if !found {
		a.console.Warning("The default profile matches no preset.")
		return nil
	}
	a.console.Print(name)
	return nil
}

// ChangePreset applies a preset to the default profile
func (a *App) ChangePreset(ctx context.Context, name string) error {
	if a.client == nil {
		return errNotInitialized
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	if err := a.client.ChangePreset(ctx, name); err != nil {
		return err
	}
	a.console.Success("Preset changed to %s", a.console.Emph(name))
	return nil
}

// DeletePresets removes custom presets from the preferences file, asking
// first unless yes is set
func (a *App) DeletePresets(names []string, yes bool) error {
	if a.client == nil {
		return errNotInitialized
	}
	if !yes {
		ok, err := a.console.Confirm(fmt.Sprintf("Delete %d preset(s)?", len(names)), false)
		if err != nil {
			return err
		}
		if !ok {
			a.console.Warning("Nothing deleted.")
			return nil
		}
	}

	var errs []error
	progress := a.console.Progress("Deleting presets", len(names))
	for _, name := range names {
		if err := a.client.DeletePreset(name); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
		progress.Add(1)
	}
	progress.Done()
	if err := errors.Join(errs...); err != nil {
		return err
	}
	a.console.Success("Deleted %d preset(s). Restart iTerm2 to see the change.", len(names))
	return nil
}

// Focus brings the selected session to the front
func (a *App) Focus(ctx context.Context) error {
	if a.client == nil {
		return errNotInitialized
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	return a.client.Focus(ctx, a.sessionID)
}

// Status reports whether iTerm2 is running
func (a *App) Status(ctx context.Context) error {
	if a.client == nil {
		return errNotInitialized
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	if a.client.IsRunning(ctx) {
		a.console.Success("iTerm2 is running.")
		return nil
	}
	a.console.Warning("iTerm2 is not running.")
	return nil
}

// Launch starts iTerm2
func (a *App) Launch(ctx context.Context) error {
	if a.client == nil {
		return errNotInitialized
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	if err := a.console.Status("Launching iTerm2", func() error {
		return a.client.Launch(ctx)
	}); err != nil {
		return err
	}
	a.console.Success("iTerm2 launched.")
	return nil
}

func (a *App) printTable(header []string, rows [][]string) {
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}
