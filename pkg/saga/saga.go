// Package saga runs an ordered list of steps with compensating actions.
// When a step fails, the compensations of every step that already succeeded
// run in reverse order. Compensation failures are logged and swallowed so
// the original error always reaches the caller.
package saga

import (
	"context"

	"github.com/streamhub/accounts/pkg/logger"
)

// Step pairs an action with its undo. Compensate may be nil for steps that
// leave nothing behind.
type Step struct {
	Name       string
	Run        func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Run executes steps in order. On the first failure it compensates completed
// steps in reverse order and returns the triggering error.
func Run(ctx context.Context, steps []Step) error {
	completed := make([]Step, 0, len(steps))

	for _, step := range steps {
		if err := step.Run(ctx); err != nil {
			compensate(ctx, completed)
			return err
		}
		completed = append(completed, step)
	}

	return nil
}

func compensate(ctx context.Context, completed []Step) {
	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		if step.Compensate == nil {
			continue
		}

		logger.WarnWithContext(ctx, "Compensating saga step").
			String("step", step.Name).
			Log()

		if err := step.Compensate(ctx); err != nil {
			// Best effort only; the triggering error must not be masked.
			logger.ErrorWithContext(ctx, "Saga compensation failed").
				String("step", step.Name).
				Err(err).
				Log()
		}
	}
}
