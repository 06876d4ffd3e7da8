package notify

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/m-mizutani/slipway/pkg/domain/model"
	"github.com/m-mizutani/slipway/pkg/domain/types"
)

// ConsoleNotifier writes run outcomes to the terminal with color-coded
// status.
type ConsoleNotifier struct {
	w io.Writer
}

// NewConsole creates a console notifier writing to stdout.
func NewConsole() *ConsoleNotifier {
	return &ConsoleNotifier{w: os.Stdout}
}

// NewConsoleWithWriter creates a console notifier with a custom writer.
func NewConsoleWithWriter(w io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{w: w}
}

// Notify prints one line describing the terminal run.
func (x *ConsoleNotifier) Notify(_ context.Context, run *model.PublishRun) error {
	switch run.Status {
	case types.RunStatusPublished:
		name := ""
		if run.Artifact != nil {
			name = fmt.Sprintf(" %s %s", run.Artifact.Name, run.Artifact.Version)
		}
		fmt.Fprintf(x.w, "%s%s (%s@%s)\n",
			color.GreenString("[published]"), name, run.Repository, short(run.HeadSHA))
	case types.RunStatusFailed:
		fmt.Fprintf(x.w, "%s step=%s kind=%s: %s\n",
			color.RedString("[failed]"), run.FailedStep, run.FailureKind, run.Error)
	case types.RunStatusSkipped:
		fmt.Fprintf(x.w, "%s %v\n", color.YellowString("[skipped]"), run.SkipReasons)
	default:
		fmt.Fprintf(x.w, "%s run %s\n", color.CyanString(fmt.Sprintf("[%s]", run.Status)), run.ID)
	}
	return nil
}

func short(sha types.CommitSHA) string {
	s := sha.String()
	if len(s) > 12 {
		return s[:12]
	}
	return s
}
