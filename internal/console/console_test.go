package console

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsole(input string) (*Console, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return New(strings.NewReader(input), &out, &errOut), &out, &errOut
}

func TestPlainOutputWithoutTerminal(t *testing.T) {
	c, out, errOut := newTestConsole("")

	assert.False(t, c.IsTerminal())
	c.Print("plain", 1)
	c.Printf("%s preset", "Ocean")
	c.Success("Title set to %q", "logs")
	c.Warning("No preset matches")
	c.Failure("Error: %s", "boom")

	assert.Equal(t, "plain 1\nOcean preset\nTitle set to \"logs\"\nNo preset matches\n", out.String())
	assert.Equal(t, "Error: boom\n", errOut.String())
	assert.Equal(t, "Ocean", c.Emph("Ocean"))
	assert.Equal(t, "42", c.Number(42))
}

func TestAsk(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "line", input: "Ocean\nrest", want: "Ocean"},
		{name: "crlf", input: "Amber\r\n", want: "Amber"},
		{name: "no trailing newline", input: "last", want: "last"},
		{name: "empty input", input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, out, _ := newTestConsole(tt.input)

			got, err := c.Ask("Preset?")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "Preset? ", out.String())
		})
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   bool
		want  bool
	}{
		{name: "yes", input: "y\n", want: true},
		{name: "YES", input: "YES\n", want: true},
		{name: "no", input: "no\n", def: true, want: false},
		{name: "empty takes default true", input: "\n", def: true, want: true},
		{name: "empty takes default false", input: "\n", def: false, want: false},
		{name: "eof takes default", input: "", def: true, want: true},
		{name: "asks again", input: "perhaps\ny\n", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := newTestConsole(tt.input)

			got, err := c.Confirm("Delete preset?", tt.def)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfirmPrompt(t *testing.T) {
	c, out, _ := newTestConsole("maybe\n\n")

	_, err := c.Confirm("Delete?", false)
	require.NoError(t, err)
	assert.Equal(t, "Delete? [y/N] Please answer y or n.\nDelete? [y/N] ", out.String())
}

func TestStatusWithoutTerminal(t *testing.T) {
	c, out, _ := newTestConsole("")

	ran := false
	require.NoError(t, c.Status("Connecting", func() error {
		ran = true
		return nil
	}))
	assert.True(t, ran)
	assert.Empty(t, out.String())

	boom := errors.New("boom")
	assert.ErrorIs(t, c.Status("Failing", func() error { return boom }), boom)
}

func TestProgressWithoutTerminal(t *testing.T) {
	c, out, _ := newTestConsole("")

	p := c.Progress("Sessions", 3)
	p.Add(1)
	p.Add(5)
	p.Done()

	assert.Equal(t, "Sessions 3/3\n", out.String())
	assert.Equal(t, defaultWidth, c.Width())
}

func TestBarWidth(t *testing.T) {
	tests := []struct {
		name  string
		cols  int
		label string
		total int
		want  int
	}{
		{name: "wide terminal caps", cols: 200, label: "Sessions", total: 9, want: maxBarWidth},
		{name: "narrow terminal floors", cols: 20, label: "Sessions", total: 9, want: minBarWidth},
		{name: "fits between", cols: 40, label: "Sessions", total: 9, want: 40 - 8 - 3 - 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, barWidth(tt.cols, tt.label, tt.total))
		})
	}
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		done, total, width int
		want               string
	}{
		{0, 4, 4, "────"},
		{2, 4, 4, "━━──"},
		{4, 4, 4, "━━━━"},
		{0, 0, 3, "━━━"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, renderBar(tt.done, tt.total, tt.width))
	}
}
