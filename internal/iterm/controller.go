package iterm

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"itermlink/internal/logging"
)

// BundleID identifies iTerm2 to macOS.
const BundleID = "com.googlecode.iterm2"

// Controller drives iTerm2 through AppleScript for the few things the
// websocket API cannot do: checking that the app runs, launching it and
// obtaining an API cookie.
type Controller struct {
	runScript func(ctx context.Context, script string, args ...string) (string, error)
}

// NewController creates a controller that runs scripts with osascript.
func NewController() *Controller {
	return &Controller{runScript: runAppleScript}
}

// IsRunning checks if iTerm2 is running
func (c *Controller) IsRunning(ctx context.Context) bool {
	script := fmt.Sprintf(`application id "%s" is running`, BundleID)
	output, err := c.runScript(ctx, script)
	if err != nil {
		logging.Debug("iTerm2 running check failed", "error", err)
		return false
	}
	return strings.TrimSpace(output) == "true"
}

// Launch starts iTerm2, or brings it forward if it already runs.
func (c *Controller) Launch(ctx context.Context) error {
	script := `tell application "iTerm2" to activate`
	if _, err := c.runScript(ctx, script); err != nil {
		logging.Error("Failed to launch iTerm2", "error", err)
		return err
	}
	logging.Info("iTerm2 launched")
	return nil
}

// RequestCookieAndKey asks iTerm2 for credentials for a websocket
// connection. iTerm2 may prompt the user to allow appName.
func (c *Controller) RequestCookieAndKey(ctx context.Context, appName string) (string, string, error) {
	if appName == "" {
		appName = "itermlink"
	}
	script := `
on run argv
	tell application "iTerm2" to request cookie and key for app named (item 1 of argv)
end run
`
	output, err := c.runScript(ctx, script, appName)
	if err != nil {
		return "", "", err
	}
	return parseCookieAndKey(output)
}

// parseCookieAndKey splits the "<cookie> <key>" reply of iTerm2.
func parseCookieAndKey(output string) (string, string, error) {
	fields := strings.Fields(output)
	if len(fields) != 2 {
		return "", "", fmt.Errorf("unexpected cookie reply: %q", output)
	}
	return fields[0], fields[1], nil
}

func runAppleScript(ctx context.Context, script string, args ...string) (string, error) {
	// Write script to temp file to avoid -e escaping issues
	tmpFile, err := os.CreateTemp("", "applescript-*.scpt")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString(script); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("failed to write script: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close script: %w", err)
	}

	cmd := exec.CommandContext(ctx, "osascript", append([]string{tmpFile.Name()}, args...)...)
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("AppleScript error: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}
