// Package actions carries out the activation behaviour of result entries.
package actions

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/pkg/browser"
	"github.com/robottwo/mapsroute/internal/extension"
	"go.uber.org/zap"
)

var ErrUnsupportedAction = errors.New("unsupported action")

// Opener opens a URL outside of the launcher.
type Opener interface {
	Open(ctx context.Context, url string) error
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context, url string) error

func (f OpenerFunc) Open(ctx context.Context, url string) error {
	return f(ctx, url)
}

// BrowserOpener opens URLs in the system default browser, or with Command
// when one is configured. Command is split on whitespace and the URL is
// appended as the final argument. A custom command is started and left
// running; Open returns once it has been spawned.
type BrowserOpener struct {
	Command string
}

func (o BrowserOpener) Open(ctx context.Context, url string) error {
	fields := strings.Fields(o.Command)
	if len(fields) == 0 {
		return browser.OpenURL(url)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	cmd := exec.Command(fields[0], append(fields[1:], url)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", fields[0], err)
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

// Executor runs entry actions.
type Executor struct {
	Opener    Opener
	Clipboard func(text string) error
	Logger    *zap.Logger
}

func NewExecutor(openCommand string, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		Opener:    BrowserOpener{Command: openCommand},
		Clipboard: clipboard.WriteAll,
		Logger:    logger,
	}
}

// Run performs a. Hiding the window is the host's job, so it is a no-op here.
func (e *Executor) Run(ctx context.Context, a extension.Action) error {
	switch a.Kind {
	case extension.ActionHideWindow:
		e.Logger.Debug("hide window")
		return nil

	case extension.ActionOpenURL:
		if a.URL == "" {
			return fmt.Errorf("open url: %w: empty url", ErrUnsupportedAction)
		}
		e.Logger.Info("opening url", zap.String("url", a.URL))
		if err := e.Opener.Open(ctx, a.URL); err != nil {
			e.Logger.Error("failed to open url", zap.String("url", a.URL), zap.Error(err))
			return fmt.Errorf("failed to open %s: %w", a.URL, err)
		}
		return nil

	case extension.ActionCopyToClipboard:
		e.Logger.Info("copying to clipboard", zap.String("text", a.Text))
		if err := e.Clipboard(a.Text); err != nil {
			e.Logger.Error("failed to copy to clipboard", zap.Error(err))
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedAction, a.Kind)
	}
}
