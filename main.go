package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

// Exit codes
const (
	exitOK        = 0
	exitError     = 1
	exitInterrupt = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, NewApp(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the command line and maps its outcome to an exit code.
func execute(ctx context.Context, app *App, args []string, in io.Reader, out, errOut io.Writer) int {
	defer app.shutdown()

	root := newRootCmd(app)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	if ctx.Err() != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Keyboard interrupt.")
		return exitInterrupt
	}
	if app.console != nil {
		app.console.Failure("Error: %v", err)
	} else {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
	}
	return exitError
}
