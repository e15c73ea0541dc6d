package domain

import (
	"context"
	"time"
)

// StepStatus is how a single step ended.
type StepStatus string

const (
	StepOK      StepStatus = "ok"
	StepSkipped StepStatus = "skipped"
	StepFailed  StepStatus = "failed"
)

// StepEvent describes one step of a chain run.
type StepEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Chain     string        `json:"chain"`
	Index     int           `json:"index"`
	Action    string        `json:"action"`
	InputRows int           `json:"input_rows"`
	Status    StepStatus    `json:"status,omitempty"`
	Modified  bool          `json:"modified,omitempty"`
	Err       error         `json:"-"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// ChainEvent is the completion signal of a chain run. Exactly one of
// Outcome and Err is set.
type ChainEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Chain     string        `json:"chain"`
	Outcome   *Outcome      `json:"outcome,omitempty"`
	Trace     *Trace        `json:"trace,omitempty"`
	Err       error         `json:"-"`
	Duration  time.Duration `json:"duration"`
}

// Succeeded reports whether the run completed without error.
func (e *ChainEvent) Succeeded() bool {
	return e.Err == nil
}

// ChainHooks defines synchronous callbacks for chain observability.
// OnChainComplete fires exactly once per run, before Execute returns.
type ChainHooks struct {
	OnStepStart     func(context.Context, *StepEvent)
	OnStepSkip      func(context.Context, *StepEvent)
	OnStepFinish    func(context.Context, *StepEvent)
	OnChainComplete func(context.Context, *ChainEvent)
}

// MergeHooks returns hooks that call every given subscriber in order.
func MergeHooks(hooks ...ChainHooks) ChainHooks {
	var merged ChainHooks
	for _, h := range hooks {
		merged.OnStepStart = chainStep(merged.OnStepStart, h.OnStepStart)
		merged.OnStepSkip = chainStep(merged.OnStepSkip, h.OnStepSkip)
		merged.OnStepFinish = chainStep(merged.OnStepFinish, h.OnStepFinish)
		merged.OnChainComplete = chainComplete(merged.OnChainComplete, h.OnChainComplete)
	}
	return merged
}

func chainStep(first, next func(context.Context, *StepEvent)) func(context.Context, *StepEvent) {
	if first == nil {
		return next
	}
	if next == nil {
		return first
	}
	return func(ctx context.Context, e *StepEvent) {
		first(ctx, e)
		next(ctx, e)
	}
}

func chainComplete(first, next func(context.Context, *ChainEvent)) func(context.Context, *ChainEvent) {
	if first == nil {
		return next
	}
	if next == nil {
		return first
	}
	return func(ctx context.Context, e *ChainEvent) {
		first(ctx, e)
		next(ctx, e)
	}
}
