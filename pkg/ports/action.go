package ports

import (
	"context"

	"github.com/aretw0/actionchain/pkg/domain"
)

// Action is a single invocable step of a chain.
type Action interface {
	// Identity is the label used in traces, logs and effect attribution.
	Identity() string

	// MinimumInputRows is the number of input rows the action needs.
	// Zero means the action runs on empty input as well.
	MinimumInputRows() int

	// Effects lists the entities the action is known to modify.
	Effects() []domain.Effect

	// Invoke runs the action under the given transaction handle.
	// Returning a nil result with a nil error is treated as an Empty result.
	Invoke(ctx context.Context, task *domain.Task, tx Transaction) (*domain.Result, error)
}

// Iconic is implemented by actions that carry a display icon.
type Iconic interface {
	Icon() string
}

// Bounded is implemented by actions that cap their input rows.
// Zero means unbounded.
type Bounded interface {
	MaximumInputRows() int
}
