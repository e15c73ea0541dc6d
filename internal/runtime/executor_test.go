package runtime_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/aretw0/actionchain/internal/runtime"
	"github.com/aretw0/actionchain/internal/testutils"
	"github.com/aretw0/actionchain/pkg/domain"
	"github.com/aretw0/actionchain/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rows(entity string, ids ...int) *domain.Dataset {
	ds := domain.NewDataset(entity)
	for _, id := range ids {
		ds.Rows = append(ds.Rows, domain.Row{"id": id})
	}
	return ds
}

func newExecutor(mgr ports.TransactionManager, opts ...runtime.Option) *runtime.Executor {
	return runtime.NewExecutor(append([]runtime.Option{runtime.WithTransactionManager(mgr)}, opts...)...)
}

func TestRun_SingleActionMirrorsItsResult(t *testing.T) {
	out := rows("ORDER", 1, 2)
	copyAction := &testutils.FakeAction{Name: "Copy", Result: domain.DataResult(out, true)}

	outcome, trace, err := newExecutor(&testutils.FakeTxManager{}).Run(context.Background(),
		runtime.NewPlan([]ports.Action{copyAction}), domain.NewTask(rows("ORDER", 1, 2), nil), nil)

	require.NoError(t, err)
	require.NotNil(t, trace)
	assert.Equal(t, domain.ResultData, outcome.Result.Kind)
	assert.Equal(t, out, outcome.Result.Data)
	assert.True(t, outcome.Result.Modified)
	assert.Equal(t, 0, outcome.ResultIndex)
	assert.Equal(t, []int{0}, outcome.Executed)
}

func TestRun_ThreadsDataBetweenSteps(t *testing.T) {
	copied := rows("ORDER", 10, 11, 12)
	a := &testutils.FakeAction{Name: "A", Result: domain.DataResult(copied, false)}
	b := &testutils.FakeAction{Name: "B", Result: domain.EmptyResult(false)}

	_, _, err := newExecutor(&testutils.FakeTxManager{}).Run(context.Background(),
		runtime.NewPlan([]ports.Action{a, b}), domain.NewTask(rows("ORDER", 1), nil), nil)
	require.NoError(t, err)

	require.Len(t, b.Calls(), 1)
	assert.Equal(t, copied, b.Calls()[0].Task.Input)
}

func TestRun_FreezeIndexKeepsOriginalInput(t *testing.T) {
	original := rows("ORDER", 1, 2)
	a := &testutils.FakeAction{Name: "A", Result: domain.DataResult(rows("ORDER", 7), true)}
	b := &testutils.FakeAction{Name: "B", Result: domain.DataResult(rows("ORDER", 8), true)}
	c := &testutils.FakeAction{Name: "C", Result: domain.EmptyResult(false)}

	plan := runtime.NewPlan([]ports.Action{a, b, c})
	plan.InputFreezeIndex = 0

	_, _, err := newExecutor(&testutils.FakeTxManager{}).Run(context.Background(), plan, domain.NewTask(original, nil), nil)
	require.NoError(t, err)

	assert.Equal(t, original, a.Calls()[0].Task.Input)
	assert.Equal(t, original, b.Calls()[0].Task.Input)
	assert.Equal(t, original, c.Calls()[0].Task.Input)
}

func TestRun_FreezeAtMiddleStep(t *testing.T) {
	fromA := rows("ORDER", 7)
	a := &testutils.FakeAction{Name: "A", Result: domain.DataResult(fromA, true)}
	b := &testutils.FakeAction{Name: "B", Result: domain.DataResult(rows("ORDER", 8), true)}
	c := &testutils.FakeAction{Name: "C", Result: domain.EmptyResult(false)}

	plan := runtime.NewPlan([]ports.Action{a, b, c})
	plan.InputFreezeIndex = 1

	_, _, err := newExecutor(&testutils.FakeTxManager{}).Run(context.Background(), plan, domain.NewTask(rows("ORDER", 1), nil), nil)
	require.NoError(t, err)

	assert.Equal(t, fromA, b.Calls()[0].Task.Input)
	assert.Equal(t, fromA, c.Calls()[0].Task.Input, "C must read the snapshot handed to B, not B's output")
}

func TestRun_CopyThenUpdateScenario(t *testing.T) {
	original := rows("ORDER", 1, 2)
	copies := rows("ORDER", 101, 102)
	copyAction := &testutils.FakeAction{Name: "Copy", Result: domain.DataResult(copies, true)}
	update := &testutils.FakeAction{Name: "Update", Result: domain.DataResult(rows("ORDER", 1, 2), true)}

	plan := runtime.NewPlan([]ports.Action{copyAction, update})
	plan.ResultIndex = 0
	plan.InputFreezeIndex = 0

	outcome, _, err := newExecutor(&testutils.FakeTxManager{}).Run(context.Background(), plan, domain.NewTask(original, nil), nil)
	require.NoError(t, err)

	assert.Equal(t, copies, outcome.Result.Data)
	assert.Equal(t, 0, outcome.ResultIndex)
	assert.Equal(t, original, update.Calls()[0].Task.Input)
}

func TestRun_ResultIndexIgnoresLaterSteps(t *testing.T) {
	first := &testutils.FakeAction{Name: "First", Result: domain.MessageResult("first", false)}
	second := &testutils.FakeAction{Name: "Second", Result: domain.DataResult(rows("ORDER", 1), true)}

	plan := runtime.NewPlan([]ports.Action{first, second})
	plan.ResultIndex = 0

	outcome, _, err := newExecutor(&testutils.FakeTxManager{}).Run(context.Background(), plan, domain.NewTask(nil, nil), nil)
	require.NoError(t, err)

	assert.Equal(t, domain.ResultMessage, outcome.Result.Kind)
	assert.True(t, outcome.Result.Modified, "modified flag is the chain aggregate")
}

func TestRun_SkipsActionsOnEmptyInput(t *testing.T) {
	filter := &testutils.FakeAction{Name: "Filter", Result: domain.DataResult(rows("ORDER"), false)}
	update := &testutils.FakeAction{Name: "Update", MinRows: 1, Result: domain.EmptyResult(true)}
	notify := &testutils.FakeAction{Name: "Notify", Result: domain.MessageResult("nothing to do", false)}

	plan := runtime.NewPlan([]ports.Action{filter, update, notify})
	plan.SkipIfEmptyInput = true

	outcome, trace, err := newExecutor(&testutils.FakeTxManager{}).Run(context.Background(), plan, domain.NewTask(rows("ORDER", 1), nil), nil)
	require.NoError(t, err)

	assert.False(t, update.Invoked())
	assert.Equal(t, []int{0, 2}, outcome.Executed)
	assert.Equal(t, []int{1}, outcome.Skipped)
	assert.False(t, outcome.Result.Modified)
	assert.Equal(t, rows("ORDER"), notify.Calls()[0].Task.Input, "skipped step leaves flowing data unchanged")
	assert.False(t, trace.Failed)
	assert.Contains(t, trace.Diagram, "a0 -. \"0 rows of ORDER\" .-> a1")
}

func TestRun_DoesNotSkipWithoutPolicyOrRequirement(t *testing.T) {
	needsRows := &testutils.FakeAction{Name: "NeedsRows", MinRows: 1}
	anyRows := &testutils.FakeAction{Name: "AnyRows", MinRows: 0}

	plan := runtime.NewPlan([]ports.Action{needsRows})
	_, _, err := newExecutor(&testutils.FakeTxManager{}).Run(context.Background(), plan, domain.NewTask(rows("ORDER"), nil), nil)
	require.NoError(t, err)
	assert.True(t, needsRows.Invoked(), "skip policy is off by default")

	plan = runtime.NewPlan([]ports.Action{anyRows})
	plan.SkipIfEmptyInput = true
	_, _, err = newExecutor(&testutils.FakeTxManager{}).Run(context.Background(), plan, domain.NewTask(nil, nil), nil)
	require.NoError(t, err)
	assert.True(t, anyRows.Invoked(), "actions without a row requirement always run")
}

// A result index pointing at a skipped step resolves to Empty rather than to
// another step's result.
func TestRun_ResultIndexOnSkippedStepResolvesEmpty(t *testing.T) {
	first := &testutils.FakeAction{Name: "First", MinRows: 1, Result: domain.DataResult(rows("ORDER", 1), true)}
	second := &testutils.FakeAction{Name: "Second", Result: domain.DataResult(rows("ORDER", 2), false)}

	plan := runtime.NewPlan([]ports.Action{first, second})
	plan.SkipIfEmptyInput = true
	plan.ResultIndex = 0

	outcome, trace, err := newExecutor(&testutils.FakeTxManager{}).Run(context.Background(), plan, domain.NewTask(rows("ORDER"), nil), nil)
	require.NoError(t, err)

	assert.False(t, first.Invoked())
	assert.Equal(t, domain.ResultEmpty, outcome.Result.Kind)
	assert.Equal(t, runtime.NoIndex, outcome.ResultIndex)
	assert.False(t, outcome.Result.Modified)
	assert.Contains(t, trace.Diagram, "a1 --> result")
}

func TestRun_AllSkippedResolvesEmpty(t *testing.T) {
	only := &testutils.FakeAction{Name: "Only", MinRows: 1}

	plan := runtime.NewPlan([]ports.Action{only})
	plan.SkipIfEmptyInput = true

	outcome, _, err := newExecutor(&testutils.FakeTxManager{}).Run(context.Background(), plan, domain.NewTask(nil, nil), nil)
	require.NoError(t, err)
	assert.Equal(t, domain.EmptyResult(false), outcome.Result)
	assert.Empty(t, outcome.Executed)
}

func TestRun_NilResultIsEmpty(t *testing.T) {
	silent := &testutils.FakeAction{Name: "Silent"}

	outcome, _, err := newExecutor(&testutils.FakeTxManager{}).Run(context.Background(),
		runtime.NewPlan([]ports.Action{silent}), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.ResultEmpty, outcome.Result.Kind)
}

func TestRun_TaskCopiesAreIsolated(t *testing.T) {
	original := rows("ORDER", 1)
	mutator := &testutils.FakeAction{Name: "Mutator", Fn: func(ctx context.Context, task *domain.Task, tx ports.Transaction) (*domain.Result, error) {
		task.Input.Rows[0]["id"] = 999
		task.Params["touched"] = true
		return domain.EmptyResult(false), nil
	}}
	reader := &testutils.FakeAction{Name: "Reader"}

	plan := runtime.NewPlan([]ports.Action{mutator, reader})
	plan.InputFreezeIndex = 0
	task := domain.NewTask(original, map[string]any{"mode": "x"})

	_, _, err := newExecutor(&testutils.FakeTxManager{}).Run(context.Background(), plan, task, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, original.Rows[0]["id"])
	assert.Equal(t, 1, reader.Calls()[0].Task.Input.Rows[0]["id"])
	_, touched := reader.Calls()[0].Task.Param("touched")
	assert.False(t, touched)
	assert.Equal(t, "x", reader.Calls()[0].Task.Params["mode"])
}

func TestRun_FailureAbortsAndPropagatesOriginalError(t *testing.T) {
	boom := &domain.ActionError{Action: "Update", Reason: "constraint violated"}
	first := &testutils.FakeAction{Name: "Copy", Result: domain.DataResult(rows("ORDER", 1), true)}
	second := &testutils.FakeAction{Name: "Update", Err: boom}
	third := &testutils.FakeAction{Name: "Notify"}

	mgr := &testutils.FakeTxManager{}
	outcome, trace, err := newExecutor(mgr).Run(context.Background(),
		runtime.NewPlan([]ports.Action{first, second, third}), domain.NewTask(rows("ORDER", 1), nil), nil)

	assert.Nil(t, outcome)
	assert.Same(t, boom, err, "the action's error must reach the caller unwrapped")
	assert.False(t, third.Invoked())

	require.NotNil(t, trace)
	assert.True(t, trace.Failed)
	assert.Contains(t, trace.Diagram, "a1 --x error")
	assert.Contains(t, trace.Diagram, "class a1,error error;")

	require.Len(t, mgr.Begun(), 1)
	assert.Equal(t, domain.TxRolledBack, mgr.Begun()[0].Status(), "owned shared handle is rolled back")
}

func TestRun_ConfigurationErrorsBeforeAnyTransaction(t *testing.T) {
	mgr := &testutils.FakeTxManager{}
	exec := newExecutor(mgr)

	_, trace, err := exec.Run(context.Background(), runtime.NewPlan(nil), nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmptyChain))
	assert.Nil(t, trace)

	plan := runtime.NewPlan([]ports.Action{&testutils.FakeAction{Name: "A"}})
	plan.ResultIndex = 1
	_, _, err = exec.Run(context.Background(), plan, nil, nil)
	assert.True(t, errors.Is(err, domain.ErrIndexOutOfRange))

	plan = runtime.NewPlan([]ports.Action{&testutils.FakeAction{Name: "A"}})
	plan.InputFreezeIndex = -2
	_, _, err = exec.Run(context.Background(), plan, nil, nil)
	assert.True(t, errors.Is(err, domain.ErrIndexOutOfRange))

	assert.Empty(t, mgr.Begun())
}

func TestRun_CompletionSignalFiresOnce(t *testing.T) {
	var events []*domain.ChainEvent
	var steps []domain.StepStatus
	hooks := domain.ChainHooks{
		OnStepSkip:      func(_ context.Context, e *domain.StepEvent) { steps = append(steps, e.Status) },
		OnStepFinish:    func(_ context.Context, e *domain.StepEvent) { steps = append(steps, e.Status) },
		OnChainComplete: func(_ context.Context, e *domain.ChainEvent) { events = append(events, e) },
	}

	ok := &testutils.FakeAction{Name: "Ok", Result: domain.EmptyResult(true)}
	skipped := &testutils.FakeAction{Name: "Skipped", MinRows: 1}
	plan := runtime.NewPlan([]ports.Action{ok, skipped})
	plan.SkipIfEmptyInput = true

	_, _, err := newExecutor(&testutils.FakeTxManager{}, runtime.WithHooks(hooks)).Run(context.Background(), plan, nil, nil)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].Succeeded())
	assert.NotNil(t, events[0].Outcome)
	assert.Equal(t, []domain.StepStatus{domain.StepOK, domain.StepSkipped}, steps)

	events, steps = nil, nil
	failing := &testutils.FakeAction{Name: "Failing", Err: errors.New("boom")}
	_, _, err = newExecutor(&testutils.FakeTxManager{}, runtime.WithHooks(hooks)).Run(context.Background(),
		runtime.NewPlan([]ports.Action{failing}), nil, nil)
	require.Error(t, err)
	require.Len(t, events, 1)
	assert.False(t, events[0].Succeeded())
	assert.Nil(t, events[0].Outcome)
	assert.True(t, events[0].Trace.Failed)
	assert.Equal(t, []domain.StepStatus{domain.StepFailed}, steps)
}

func TestRun_FailureLogsStepsNotRun(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError}))

	a := &testutils.FakeAction{Name: "A", Result: domain.EmptyResult(false)}
	b := &testutils.FakeAction{Name: "B", Err: errors.New("boom")}
	c := &testutils.FakeAction{Name: "C", Result: domain.EmptyResult(false)}
	d := &testutils.FakeAction{Name: "D", Result: domain.EmptyResult(false)}

	_, _, err := newExecutor(&testutils.FakeTxManager{}, runtime.WithLogger(logger)).Run(context.Background(),
		runtime.NewPlan([]ports.Action{a, b, c, d}), nil, nil)
	require.Error(t, err)
	assert.Empty(t, c.Calls())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "chain aborted", entry["msg"])
	assert.Equal(t, "B", entry["action"])
	assert.EqualValues(t, 2, entry["not_run"])
}
