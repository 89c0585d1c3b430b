// Package console prints themed output, prompts and progress for the
// itermlink command line.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Theme colors
const (
	ColorEmph    = "#0675BB"
	ColorSuccess = "#2E9E44"
	ColorWarning = "#E03E52"
	ColorNumber  = "#9DFBCC"
)

// Console writes styled text to out and failures to errOut. Styling and
// animation are off unless out is a terminal.
type Console struct {
	in     *bufio.Reader
	out    *termenv.Output
	errOut *termenv.Output
	w      io.Writer
	tty    bool
}

// New returns a console reading prompts from in.
func New(in io.Reader, out, errOut io.Writer) *Console {
	tty := IsTerminal(out)
	return &Console{
		in:     bufio.NewReader(in),
		out:    newOutput(out, tty),
		errOut: newOutput(errOut, IsTerminal(errOut)),
		w:      out,
		tty:    tty,
	}
}

// Std returns a console on the process's standard streams.
func Std() *Console {
	return New(os.Stdin, os.Stdout, os.Stderr)
}

func newOutput(w io.Writer, tty bool) *termenv.Output {
	if !tty {
		return termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))
	}
	return termenv.NewOutput(w)
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// IsTerminal reports whether the console's output is a terminal.
func (c *Console) IsTerminal() bool {
	return c.tty
}

func (c *Console) style(o *termenv.Output, hex string, s string) termenv.Style {
	return o.String(s).Foreground(o.Color(hex))
}

// Emph returns s in the emphasis color.
func (c *Console) Emph(s string) string {
	return c.style(c.out, ColorEmph, s).Bold().String()
}

// Number returns n in the number color.
func (c *Console) Number(n int) string {
	return c.style(c.out, ColorNumber, strconv.Itoa(n)).String()
}

// Print writes a plain line.
func (c *Console) Print(a ...any) {
	fmt.Fprintln(c.out, a...)
}

// Printf writes a formatted plain line.
func (c *Console) Printf(format string, a ...any) {
	fmt.Fprintf(c.out, format+"\n", a...)
}

// Success writes a line in green.
func (c *Console) Success(format string, a ...any) {
	fmt.Fprintln(c.out, c.style(c.out, ColorSuccess, fmt.Sprintf(format, a...)))
}

// Warning writes a line in amaranth.
func (c *Console) Warning(format string, a ...any) {
	fmt.Fprintln(c.out, c.style(c.out, ColorWarning, fmt.Sprintf(format, a...)))
}

// Failure writes a bold amaranth line to the error stream.
func (c *Console) Failure(format string, a ...any) {
	fmt.Fprintln(c.errOut, c.style(c.errOut, ColorWarning, fmt.Sprintf(format, a...)).Bold())
}

// Ask prints prompt and reads one line of input, without the newline.
// A final line without a newline is accepted.
func (c *Console) Ask(prompt string) (string, error) {
	fmt.Fprint(c.out, c.Emph(prompt)+" ")
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Confirm asks a yes/no question. An empty answer, or end of input,
// picks def. Other answers are asked again.
func (c *Console) Confirm(prompt string, def bool) (bool, error) {
	choices := "[y/N]"
	if def {
		choices = "[Y/n]"
	}
	for {
		answer, err := c.Ask(prompt + " " + choices)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(c.out)
			return def, nil
		}
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		c.Warning("Please answer y or n.")
	}
}
