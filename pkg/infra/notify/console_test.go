package notify

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/slipway/pkg/domain/types"
)

func TestConsoleNotifier(t *testing.T) {
	// Color escapes depend on the environment; force them off here.
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	t.Run("Published line names artifact and commit", func(t *testing.T) {
		var buf bytes.Buffer
		notifier := NewConsoleWithWriter(&buf)

		gt.NoError(t, notifier.Notify(context.Background(), terminalRun(types.RunStatusPublished)))

		out := buf.String()
		gt.String(t, out).Contains("[published] mylib 1.2.3")
		gt.String(t, out).Contains("acme/mylib@4b825dc642cb")
	})

	t.Run("Failed line names step and kind", func(t *testing.T) {
		var buf bytes.Buffer
		notifier := NewConsoleWithWriter(&buf)

		gt.NoError(t, notifier.Notify(context.Background(), terminalRun(types.RunStatusFailed)))

		out := buf.String()
		gt.String(t, out).Contains("[failed] step=build kind=build_failed")
		gt.String(t, out).Contains("setup.py exited")
	})

	t.Run("Skipped line lists reasons", func(t *testing.T) {
		var buf bytes.Buffer
		notifier := NewConsoleWithWriter(&buf)

		gt.NoError(t, notifier.Notify(context.Background(), terminalRun(types.RunStatusSkipped)))

		out := buf.String()
		gt.String(t, out).Contains("[skipped]")
		gt.String(t, out).Contains("head branch is")
	})
}

func TestShortSHA(t *testing.T) {
	gt.Value(t, short("4b825dc642cb6eb9a060e54bf8d69288fbee4904")).Equal("4b825dc642cb")
	gt.Value(t, short("abc")).Equal("abc")
}
