package actions

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/robottwo/mapsroute/internal/extension"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recorder struct {
	opened []string
	copied []string
	err    error
}

func (r *recorder) executor() *Executor {
	return &Executor{
		Opener: OpenerFunc(func(ctx context.Context, url string) error {
			r.opened = append(r.opened, url)
			return r.err
		}),
		Clipboard: func(text string) error {
			r.copied = append(r.copied, text)
			return r.err
		},
		Logger: zap.NewNop(),
	}
}

func TestExecutor_Run(t *testing.T) {
	const link = "https://www.google.com/maps/dir/?api=1&origin=Vienna&destination=Munich"

	tests := []struct {
		name   string
		action extension.Action
		opened []string
		copied []string
	}{
		{
			name:   "Hide does nothing",
			action: extension.HideWindow(),
		},
		{
			name:   "Open URL uses the opener",
			action: extension.OpenURL(link),
			opened: []string{link},
		},
		{
			name:   "Copy uses the clipboard",
			action: extension.CopyToClipboard(link),
			copied: []string{link},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{}
			require.NoError(t, r.executor().Run(context.Background(), tt.action))
			assert.Equal(t, tt.opened, r.opened)
			assert.Equal(t, tt.copied, r.copied)
		})
	}
}

func TestExecutor_RunWrapsFailures(t *testing.T) {
	cause := errors.New("no display")
	r := &recorder{err: cause}
	e := r.executor()

	err := e.Run(context.Background(), extension.OpenURL("https://example.com"))
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)

	err = e.Run(context.Background(), extension.CopyToClipboard("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
}

func TestExecutor_RunRejectsBadActions(t *testing.T) {
	e := (&recorder{}).executor()

	err := e.Run(context.Background(), extension.Action{Kind: extension.ActionKind(99)})
	assert.ErrorIs(t, err, ErrUnsupportedAction)

	err = e.Run(context.Background(), extension.OpenURL(""))
	assert.ErrorIs(t, err, ErrUnsupportedAction)
}

func TestBrowserOpener_CustomCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a POSIX shell script")
	}

	dir := t.TempDir()
	out := filepath.Join(dir, "opened")
	script := filepath.Join(dir, "fake-open")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nprintf '%s %s' \"$1\" \"$2\" > "+out+"\n"), 0755))

	opener := BrowserOpener{Command: script + " --new-window"}
	require.NoError(t, opener.Open(context.Background(), "https://example.com/?a=1&b=2"))

	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(out)
		return err == nil && string(data) == "--new-window https://example.com/?a=1&b=2"
	}, 5*time.Second, 20*time.Millisecond)
}

func TestBrowserOpener_DoesNotWaitForCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a POSIX shell script")
	}

	script := filepath.Join(t.TempDir(), "slow-open")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nsleep 5\n"), 0755))

	start := time.Now()
	require.NoError(t, BrowserOpener{Command: script}.Open(context.Background(), "https://example.com"))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestBrowserOpener_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := BrowserOpener{Command: "true"}.Open(ctx, "https://example.com")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBrowserOpener_CustomCommandFailure(t *testing.T) {
	opener := BrowserOpener{Command: filepath.Join(t.TempDir(), "does-not-exist")}
	assert.Error(t, opener.Open(context.Background(), "https://example.com"))
}

func TestNewExecutor_Defaults(t *testing.T) {
	e := NewExecutor("firefox", nil)
	require.NotNil(t, e.Logger)
	require.NotNil(t, e.Clipboard)
	assert.Equal(t, BrowserOpener{Command: "firefox"}, e.Opener)
}
