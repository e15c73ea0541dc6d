package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/actionchain/internal/logging"
	"github.com/aretw0/actionchain/internal/presentation/graph"
	"github.com/aretw0/actionchain/pkg/domain"
	"github.com/aretw0/actionchain/pkg/ports"
)

// Executor drives the steps of a chain, one after another.
type Executor struct {
	manager ports.TransactionManager
	logger  *slog.Logger
	hooks   domain.ChainHooks
}

// Option configures an Executor.
type Option func(*Executor)

// WithTransactionManager sets where new transaction handles come from.
func WithTransactionManager(m ports.TransactionManager) Option {
	return func(e *Executor) {
		e.manager = m
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithHooks sets the lifecycle hooks.
func WithHooks(hooks domain.ChainHooks) Option {
	return func(e *Executor) {
		e.hooks = hooks
	}
}

// NewExecutor creates an executor.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// run is the mutable state of one execution.
type run struct {
	plan     *Plan
	rec      *graph.Recorder
	results  []*domain.Result
	executed []int
	skipped  []int
	modified bool
	start    time.Time
}

// Run executes the plan. The chain's initial input is task.Input; tx is the
// caller's transaction handle and may be nil.
//
// On success it returns the resolved outcome and the trace. On failure it
// returns the trace accumulated up to the failing step together with the
// action's error, unwrapped.
func (e *Executor) Run(ctx context.Context, plan *Plan, task *domain.Task, tx ports.Transaction) (*domain.Outcome, *domain.Trace, error) {
	if err := plan.Validate(); err != nil {
		e.complete(ctx, plan, nil, nil, err, time.Now())
		return nil, nil, err
	}
	if task == nil {
		task = domain.NewTask(nil, nil)
	}

	r := &run{
		plan:    plan,
		rec:     graph.NewRecorder(labels(plan.Actions)),
		results: make([]*domain.Result, len(plan.Actions)),
		start:   time.Now(),
	}

	e.logger.InfoContext(ctx, "chain started",
		"chain", plan.Name,
		"actions", len(plan.Actions),
		"single_tx", plan.SingleTransaction,
	)

	sc, err := openScope(ctx, plan.SingleTransaction, e.manager, tx)
	if err != nil {
		trace := r.rec.Fail(NoIndex, err)
		e.complete(ctx, plan, nil, trace, err, r.start)
		return nil, trace, err
	}

	flowing := task.Input
	var frozen *domain.Dataset

	cursor := NewCursor(plan.Actions)
	for {
		i, action, ok := cursor.Next()
		if !ok {
			break
		}

		input := flowing
		if plan.Frozen(i) {
			input = frozen
		}
		if i == plan.InputFreezeIndex {
			frozen = input
		}

		if plan.SkipIfEmptyInput && input.IsEmpty() && action.MinimumInputRows() != 0 {
			r.rec.Skip(i, input)
			r.skipped = append(r.skipped, i)
			e.logger.DebugContext(ctx, "step skipped", "index", i, "action", action.Identity())
			e.emitStep(ctx, e.hooks.OnStepSkip, plan, i, action, input, domain.StepSkipped, nil, 0)
			continue
		}

		r.rec.Enter(i, input)
		result, err := e.invoke(ctx, sc, plan, i, action, task.WithInput(input))
		if err != nil {
			notRun := cursor.Remaining()
			cursor.Stop()
			return e.fail(ctx, r, sc, i, notRun, err)
		}

		r.results[i] = result
		r.executed = append(r.executed, i)
		r.modified = r.modified || result.Modified

		if !plan.Frozen(i) && result.HasData() {
			flowing = result.Data
		}
	}

	outcome := r.outcome()

	if err := sc.finish(ctx); err != nil {
		err = fmt.Errorf("commit chain transaction: %w", err)
		return e.fail(ctx, r, sc, lastOr(r.executed, NoIndex), 0, err)
	}

	trace := r.rec.Succeed(outcome.ResultIndex, outcome.Result)

	e.logger.InfoContext(ctx, "chain completed",
		"chain", plan.Name,
		"result_kind", outcome.Result.Kind,
		"modified", outcome.Result.Modified,
		"executed", len(r.executed),
		"skipped", len(r.skipped),
		"duration", time.Since(r.start),
	)
	e.complete(ctx, plan, outcome, trace, nil, r.start)
	return outcome, trace, nil
}

// invoke runs one step under its assigned handle.
func (e *Executor) invoke(ctx context.Context, sc *scope, plan *Plan, i int, action ports.Action, task *domain.Task) (*domain.Result, error) {
	stepTx, err := sc.acquire(ctx)
	if err != nil {
		return nil, err
	}

	e.emitStep(ctx, e.hooks.OnStepStart, plan, i, action, task.Input, "", nil, 0)
	e.logger.DebugContext(ctx, "invoking action", "index", i, "action", action.Identity(), "tx", stepTx.ID())

	began := time.Now()
	result, err := action.Invoke(ctx, task, stepTx)
	elapsed := time.Since(began)

	if err != nil {
		if rbErr := sc.release(ctx, stepTx, true); rbErr != nil {
			e.logger.ErrorContext(ctx, "step rollback failed", "index", i, "action", action.Identity(), "err", rbErr)
		}
		e.emitStep(ctx, e.hooks.OnStepFinish, plan, i, action, task.Input, domain.StepFailed, err, elapsed)
		return nil, err
	}

	if err := sc.release(ctx, stepTx, false); err != nil {
		err = fmt.Errorf("commit transaction of action %q: %w", action.Identity(), err)
		e.emitStep(ctx, e.hooks.OnStepFinish, plan, i, action, task.Input, domain.StepFailed, err, elapsed)
		return nil, err
	}

	if result == nil {
		result = domain.EmptyResult(false)
	}

	e.logger.DebugContext(ctx, "action returned", "index", i, "action", action.Identity(), "kind", result.Kind, "modified", result.Modified)
	ev := e.stepEvent(plan, i, action, task.Input, domain.StepOK, nil, elapsed)
	ev.Modified = result.Modified
	if e.hooks.OnStepFinish != nil {
		e.hooks.OnStepFinish(ctx, ev)
	}
	return result, nil
}

// fail aborts the run at step i and returns err as given. notRun counts the
// steps after i that will never be invoked.
func (e *Executor) fail(ctx context.Context, r *run, sc *scope, i, notRun int, err error) (*domain.Outcome, *domain.Trace, error) {
	label := "chain"
	if i >= 0 {
		label = r.plan.Actions[i].Identity()
	}
	e.logger.ErrorContext(ctx, "chain aborted", "chain", r.plan.Name, "index", i, "action", label, "not_run", notRun, "err", err)

	if rbErr := sc.abort(ctx); rbErr != nil {
		e.logger.ErrorContext(ctx, "chain rollback failed", "chain", r.plan.Name, "err", rbErr)
	}

	trace := r.rec.Fail(i, err)
	e.complete(ctx, r.plan, nil, trace, err, r.start)
	return nil, trace, err
}

func (r *run) outcome() *domain.Outcome {
	result, from := resolve(r.plan, r.results, r.executed, r.modified)
	return &domain.Outcome{
		Result:      result,
		Effects:     aggregateEffects(r.plan, r.executed),
		ResultIndex: from,
		Executed:    append([]int{}, r.executed...),
		Skipped:     r.skipped,
	}
}

func (e *Executor) complete(ctx context.Context, plan *Plan, outcome *domain.Outcome, trace *domain.Trace, err error, start time.Time) {
	if e.hooks.OnChainComplete == nil {
		return
	}
	e.hooks.OnChainComplete(ctx, &domain.ChainEvent{
		Timestamp: time.Now(),
		Chain:     plan.Name,
		Outcome:   outcome,
		Trace:     trace,
		Err:       err,
		Duration:  time.Since(start),
	})
}

func (e *Executor) emitStep(ctx context.Context, hook func(context.Context, *domain.StepEvent), plan *Plan, i int, action ports.Action, input *domain.Dataset, status domain.StepStatus, err error, elapsed time.Duration) {
	if hook == nil {
		return
	}
	hook(ctx, e.stepEvent(plan, i, action, input, status, err, elapsed))
}

func (e *Executor) stepEvent(plan *Plan, i int, action ports.Action, input *domain.Dataset, status domain.StepStatus, err error, elapsed time.Duration) *domain.StepEvent {
	return &domain.StepEvent{
		Timestamp: time.Now(),
		Chain:     plan.Name,
		Index:     i,
		Action:    action.Identity(),
		InputRows: input.Len(),
		Status:    status,
		Err:       err,
		Duration:  elapsed,
	}
}

func labels(actions []ports.Action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.Identity()
	}
	return out
}

func lastOr(s []int, fallback int) int {
	if len(s) == 0 {
		return fallback
	}
	return s[len(s)-1]
}
