package link

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"itermlink/internal/iterm"
	"itermlink/internal/iterm/itermtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFake returns a fake iTerm2 with two windows: w1 holds tabs t1
// (sessions s1, s2) and t2 (s3), w2 holds t3 (s4). s2 is current.
func newFake() *itermtest.Fake {
	f := itermtest.NewFake()
	f.AddWindow("w1", map[string][]string{
		"t1": {"s1", "s2"},
		"t2": {"s3"},
	})
	f.AddWindow("w2", map[string][]string{
		"t3": {"s4"},
	})
	f.FocusOn("w1", "t1", "s2")
	return f
}

// serve starts a server for f and returns dial options for it.
func serve(t *testing.T, f *itermtest.Fake) iterm.Options {
	t.Helper()
	srv := itermtest.NewServer(t, f.Handle)
	return iterm.Options{URL: srv.WSURL(), AppName: "itermlink-test"}
}

func dial(t *testing.T, f *itermtest.Fake) *iterm.Connection {
	t.Helper()
	conn, err := iterm.Dial(context.Background(), serve(t, f))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func getApp(t *testing.T, conn *iterm.Connection) *iterm.App {
	t.Helper()
	app, err := iterm.GetApp(context.Background(), conn)
	require.NoError(t, err)
	return app
}

func TestSetTitle(t *testing.T) {
	f := newFake()
	conn := dial(t, f)
	app := getApp(t, conn)
	ctx := context.Background()

	require.NoError(t, SetTitle(ctx, app.WindowByID("w2"), "logs"))
	require.NoError(t, SetTitle(ctx, app.TabByID("t2"), "server"))

	invoked := f.Invoked()
	require.Len(t, invoked, 2)
	assert.Equal(t, "w2", invoked[0].Receiver)
	assert.Equal(t, `iterm2.set_title(title: "logs")`, invoked[0].Invocation)
	assert.Equal(t, "t2", invoked[1].Receiver)
	assert.Equal(t, `iterm2.set_title(title: "server")`, invoked[1].Invocation)
}

func TestSetTitleSession(t *testing.T) {
	f := newFake()
	conn := dial(t, f)
	app := getApp(t, conn)

	start := time.Now()
	require.NoError(t, SetTitleAfter(context.Background(), app.SessionByID("s3"), "deploy", 20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	name, ok := f.SessionProperty("s3", iterm.KeyName)
	require.True(t, ok)
	assert.Equal(t, `"deploy"`, name)
	allow, ok := f.SessionProperty("s3", iterm.KeyAllowTitleSetting)
	require.True(t, ok)
	assert.Equal(t, "false", allow)
	assert.Empty(t, f.Invoked())
}

func TestSetTitleSessionCanceled(t *testing.T) {
	f := newFake()
	conn := dial(t, f)
	app := getApp(t, conn)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := SetTitleAfter(ctx, app.SessionByID("s1"), "never", time.Hour)
	assert.ErrorIs(t, err, context.Canceled)

	_, ok := f.SessionProperty("s1", iterm.KeyName)
	assert.False(t, ok)
}

func TestSetTitleUnsupportedTarget(t *testing.T) {
	tests := []struct {
		name   string
		target any
	}{
		{"string", "w1"},
		{"nil", nil},
		{"app", &iterm.App{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SetTitle(context.Background(), tt.target, "x")
			assert.ErrorIs(t, err, ErrUnsupportedTarget)
		})
	}
}

func TestCommands(t *testing.T) {
	f := newFake()
	conn := dial(t, f)
	s := getApp(t, conn).SessionByID("s1")
	ctx := context.Background()

	require.NoError(t, ClearedCommand(ctx, s, "make test"))
	require.NoError(t, RunCommand(ctx, s, "ls -la"))
	require.NoError(t, CD(ctx, s, "/tmp/my dir"))

	assert.Equal(t, []itermtest.SentText{
		{Session: "s1", Text: "clear && make test\n"},
		{Session: "s1", Text: "ls -la\n"},
		{Session: "s1", Text: "cd \"/tmp/my dir\"\n"},
	}, f.Sent())
}

func TestVisibleHistory(t *testing.T) {
	f := newFake()
	f.Screens["s2"] = []string{"$ go test ./...", "", "ok  itermlink/internal/link", "$ ", "", "   ", ""}
	conn := dial(t, f)
	s := getApp(t, conn).SessionByID("s2")

	lines, err := VisibleHistory(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, []string{"$ go test ./...", "", "ok  itermlink/internal/link", "$ "}, lines)
}

func TestTrimTrailingBlank(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  []string
	}{
		{name: "nil", lines: nil, want: []string{}},
		{name: "all blank", lines: []string{"", " ", "\t"}, want: []string{}},
		{name: "nothing to trim", lines: []string{"a", "b"}, want: []string{"a", "b"}},
		{name: "interior blanks kept", lines: []string{"a", "", "b", ""}, want: []string{"a", "", "b"}},
		{name: "leading blanks kept", lines: []string{"", "a"}, want: []string{"", "a"}},
		{name: "whitespace only trailing", lines: []string{"a", "  ", "\t "}, want: []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimTrailingBlank(tt.lines)
			assert.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i], got[i])
			}
		})
	}
}

func TestCurrentSession(t *testing.T) {
	conn := dial(t, newFake())

	s, err := CurrentSession(context.Background(), conn)
	require.NoError(t, err)
	assert.Equal(t, "s2", s.ID)
}

func TestCurrentSessionMissing(t *testing.T) {
	tests := []struct {
		name  string
		focus func(f *itermtest.Fake)
	}{
		{name: "no key window", focus: func(*itermtest.Fake) {}},
		{name: "unknown tab", focus: func(f *itermtest.Fake) { f.FocusOn("w1", "t9", "s1") }},
		{name: "session outside tab", focus: func(f *itermtest.Fake) { f.FocusOn("w1", "t2", "s9") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := itermtest.NewFake()
			f.AddWindow("w1", map[string][]string{"t1": {"s1"}, "t2": {"s2"}})
			tt.focus(f)
			conn := dial(t, f)

			_, err := CurrentSession(context.Background(), conn)
			assert.ErrorIs(t, err, ErrNoCurrentSession)
		})
	}
}

func TestHasUniqueSession(t *testing.T) {
	f := newFake()
	f.AddWindow("w3", map[string][]string{"t4": {"s5", "s6"}})
	app := getApp(t, dial(t, f))

	assert.False(t, HasUniqueSession(app.WindowByID("w1")), "two tabs")
	assert.True(t, HasUniqueSession(app.WindowByID("w2")))
	assert.False(t, HasUniqueSession(app.WindowByID("w3")), "split tab")
}

func TestAllSessionsInfo(t *testing.T) {
	dir := t.TempDir()
	linked := filepath.Join(t.TempDir(), "project")
	require.NoError(t, os.Symlink(dir, linked))
	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	f := newFake()
	f.Variables["s1"] = map[string]string{"path": itermtest.JSON(linked)}
	f.Variables["s3"] = map[string]string{"path": itermtest.JSON("/no/such/remote/dir")}
	f.SessionProfiles["s1"] = map[string]string{iterm.KeyName: `"Work"`}
	conn := dial(t, f)
	app := getApp(t, conn)

	infos, err := AllSessionsInfo(context.Background(), app.Windows)
	require.NoError(t, err)
	require.Len(t, infos, 4)

	var ids []string
	for _, info := range infos {
		ids = append(ids, info.Session.ID)
	}
	assert.Equal(t, []string{"s1", "s2", "s3", "s4"}, ids)

	assert.Equal(t, want, infos[0].Path)
	assert.Equal(t, "w1", infos[0].WindowID)
	assert.Equal(t, "t1", infos[0].TabID)
	assert.Equal(t, "Work", infos[0].Profile.Name())

	assert.Empty(t, infos[1].Path)
	assert.Equal(t, "/no/such/remote/dir", infos[2].Path)
	assert.Equal(t, "w2", infos[3].WindowID)
	assert.Equal(t, "t3", infos[3].TabID)
}
