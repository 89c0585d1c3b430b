package main

import (
	"strings"

	"itermlink/internal/link"

	"github.com/spf13/cobra"
)

// newRootCmd builds the command tree around app.
func newRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "itermlink",
		Short:         "Drive iTerm2 from the command line",
		Long:          `itermlink sets titles, runs commands, reads screens and manages color presets in iTerm2 through its websocket API.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.startup(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	// Persistent flags (available to all commands)
	root.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default ~/.config/itermlink/config.yaml)")
	root.PersistentFlags().BoolVar(&app.debug, "debug", false, "log debug output to stderr")
	root.PersistentFlags().StringVarP(&app.sessionID, "session", "s", "", "session ID (default: the current session)")

	root.AddCommand(
		newTitleCmd(app),
		newCDCmd(app),
		newRunCmd(app),
		newHistoryCmd(app),
		newSessionsCmd(app),
		newPresetCmd(app),
		newFocusCmd(app),
		newStatusCmd(app),
		newLaunchCmd(app),
	)
	return root
}

func newTitleCmd(app *App) *cobra.Command {
	var kind, id string
	cmd := &cobra.Command{
		Use:   "title <title>",
		Short: "Set the title of a session, tab or window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := link.ParseKind(kind)
			if err != nil {
				return err
			}
			return app.SetTitle(cmd.Context(), k, id, args[0])
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", string(link.KindSession), "what to rename: session, tab or window")
	cmd.Flags().StringVar(&id, "id", "", "tab or window ID (default: the current one)")
	return cmd
}

func newCDCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cd <path>",
		Short: "Change directory in a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.CD(cmd.Context(), args[0])
		},
	}
}

func newRunCmd(app *App) *cobra.Command {
	var clearFirst bool
	cmd := &cobra.Command{
		Use:   "run <command>...",
		Short: "Type a command into a session and press return",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunCommand(cmd.Context(), strings.Join(args, " "), clearFirst)
		},
	}
	cmd.Flags().BoolVarP(&clearFirst, "clear", "c", false, "clear the screen first")
	return cmd
}

func newHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Print the visible lines of a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.History(cmd.Context())
		},
	}
}

func newSessionsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List every session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Sessions(cmd.Context())
		},
	}
}

func newPresetCmd(app *App) *cobra.Command {
	presetCmd := &cobra.Command{
		Use:   "preset",
		Short: "Manage color presets",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List color presets, marking the current and custom ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Presets(cmd.Context())
		},
	}

	currentCmd := &cobra.Command{
		Use:   "current",
		Short: "Print the preset the default profile uses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.CurrentPreset(cmd.Context())
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <name>",
		Short: "Apply a preset to the default profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.ChangePreset(cmd.Context(), args[0])
		},
	}

	var yes bool
	deleteCmd := &cobra.Command{
		Use:   "delete <name>...",
		Short: "Delete custom presets from the iTerm2 preferences",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.DeletePresets(args, yes)
		},
	}
	deleteCmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	presetCmd.AddCommand(listCmd, currentCmd, setCmd, deleteCmd)
	return presetCmd
}

func newFocusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "focus",
		Short: "Bring a session to the front",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Focus(cmd.Context())
		},
	}
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether iTerm2 is running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Status(cmd.Context())
		},
	}
}

func newLaunchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "launch",
		Short: "Start iTerm2",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Launch(cmd.Context())
		},
	}
}
