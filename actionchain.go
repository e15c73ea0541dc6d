package actionchain

import (
	"context"
	"log/slog"

	"github.com/aretw0/actionchain/internal/logging"
	"github.com/aretw0/actionchain/internal/runtime"
	"github.com/aretw0/actionchain/pkg/adapters/memory"
	"github.com/aretw0/actionchain/pkg/domain"
	"github.com/aretw0/actionchain/pkg/ports"
)

// Chain runs an ordered list of actions as one logical unit.
//
// A Chain is itself a ports.Action, so it can be nested inside another chain.
// When nested under a parent in single-transaction mode it runs under the
// parent's handle and never commits or rolls it back.
type Chain struct {
	plan     *runtime.Plan
	icon     string
	minRows  *int
	maxRows  *int
	manager  ports.TransactionManager
	hooks    domain.ChainHooks
	logger   *slog.Logger
	executor *runtime.Executor
}

// Ensure Chain can be nested as an action.
var _ ports.Action = (*Chain)(nil)

// New validates the configuration and creates a chain over actions.
// Configuration problems are reported as *domain.ConfigurationError before any
// transaction exists. Without WithTransactionManager the chain writes to a
// private in-memory store.
func New(actions []ports.Action, opts ...Option) (*Chain, error) {
	c := &Chain{
		plan: runtime.NewPlan(append([]ports.Action(nil), actions...)),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.plan.Validate(); err != nil {
		return nil, err
	}

	if c.manager == nil {
		c.manager = memory.NewManager(memory.NewStore())
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}

	c.executor = runtime.NewExecutor(
		runtime.WithTransactionManager(c.manager),
		runtime.WithLogger(c.logger),
		runtime.WithHooks(c.hooks),
	)
	return c, nil
}

// Execute runs the chain. task.Input is the initial input; tx is the caller's
// transaction handle and may be nil, in which case the chain creates and owns
// its handles.
//
// The returned trace is finalized on success and on failure. On failure the
// outcome is nil and err is the failing action's own error.
func (c *Chain) Execute(ctx context.Context, task *domain.Task, tx ports.Transaction) (*domain.Outcome, *domain.Trace, error) {
	return c.executor.Run(ctx, c.plan, task, tx)
}

// Invoke runs the chain as a step of a parent chain.
func (c *Chain) Invoke(ctx context.Context, task *domain.Task, tx ports.Transaction) (*domain.Result, error) {
	outcome, _, err := c.Execute(ctx, task, tx)
	if err != nil {
		return nil, err
	}
	return outcome.Result, nil
}

// Identity returns the chain name, or the first action's identity when the
// chain declares none.
func (c *Chain) Identity() string {
	if c.plan.Name != "" {
		return c.plan.Name
	}
	return c.first().Identity()
}

// Icon returns the chain icon, or the first action's icon when the chain
// declares none.
func (c *Chain) Icon() string {
	if c.icon != "" {
		return c.icon
	}
	if iconic, ok := c.first().(ports.Iconic); ok {
		return iconic.Icon()
	}
	return ""
}

// MinimumInputRows returns the declared minimum, or the first action's.
func (c *Chain) MinimumInputRows() int {
	if c.minRows != nil {
		return *c.minRows
	}
	return c.first().MinimumInputRows()
}

// MaximumInputRows returns the declared maximum, or the first action's.
// Zero means unbounded.
func (c *Chain) MaximumInputRows() int {
	if c.maxRows != nil {
		return *c.maxRows
	}
	if bounded, ok := c.first().(ports.Bounded); ok {
		return bounded.MaximumInputRows()
	}
	return 0
}

// Effects returns the chain-level effects followed by the declared effects of
// every action, de-duplicated by target entity.
func (c *Chain) Effects() []domain.Effect {
	return runtime.DeclaredEffects(c.plan)
}

// Actions returns the configured actions in order.
func (c *Chain) Actions() []ports.Action {
	return append([]ports.Action(nil), c.plan.Actions...)
}

// TransactionManager returns where the chain gets new handles from.
func (c *Chain) TransactionManager() ports.TransactionManager {
	return c.manager
}

func (c *Chain) first() ports.Action {
	return c.plan.Actions[0]
}
