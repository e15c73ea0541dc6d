package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/actionchain/internal/logging"
	"github.com/aretw0/actionchain/pkg/domain"
)

// CreateLogger configures the application logger from a --log-level value.
// Logs go to Stderr to keep Stdout for results.
func CreateLogger(level string) (*slog.Logger, error) {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.New(lvl), nil
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func createDebugHooks(logger *slog.Logger) domain.ChainHooks {
	return domain.ChainHooks{
		OnStepStart: func(ctx context.Context, e *domain.StepEvent) {
			logger.Debug("Step Start", "index", e.Index, "action", e.Action, "input_rows", e.InputRows)
		},
		OnStepSkip: func(ctx context.Context, e *domain.StepEvent) {
			logger.Debug("Step Skipped", "index", e.Index, "action", e.Action)
		},
		OnStepFinish: func(ctx context.Context, e *domain.StepEvent) {
			if e.Err != nil {
				logger.Debug("Step Failed", "index", e.Index, "action", e.Action, "err", e.Err)
				return
			}
			logger.Debug("Step Finished", "index", e.Index, "action", e.Action, "modified", e.Modified, "duration", e.Duration)
		},
	}
}
