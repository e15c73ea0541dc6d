package runtime

import (
	"testing"

	"github.com/aretw0/actionchain/pkg/domain"
	"github.com/aretw0/actionchain/pkg/ports"
	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	data := domain.NewDataset("ORDER", domain.Row{"id": 1})

	tests := []struct {
		name     string
		plan     *Plan
		results  []*domain.Result
		executed []int
		modified bool
		wantKind domain.ResultKind
		wantMsg  string
		wantFrom int
		wantData bool
	}{
		{
			name:     "Last Executed Wins",
			plan:     NewPlan(make([]ports.Action, 2)),
			results:  []*domain.Result{domain.MessageResult("one", false), domain.DataResult(data, false)},
			executed: []int{0, 1},
			wantKind: domain.ResultData,
			wantMsg:  "one",
			wantFrom: 1,
			wantData: true,
		},
		{
			name:     "Messages Joined And Trimmed",
			plan:     NewPlan(make([]ports.Action, 3)),
			results:  []*domain.Result{domain.MessageResult("  copied 2 rows", true), nil, domain.MessageResult("updated 2 rows \n", true)},
			executed: []int{0, 2},
			modified: true,
			wantKind: domain.ResultMessage,
			wantMsg:  "copied 2 rows\nupdated 2 rows",
			wantFrom: 2,
		},
		{
			name:     "Empty Promoted To Message",
			plan:     NewPlan(make([]ports.Action, 2)),
			results:  []*domain.Result{domain.MessageResult("hello", false), domain.EmptyResult(true)},
			executed: []int{0, 1},
			modified: true,
			wantKind: domain.ResultMessage,
			wantMsg:  "hello",
			wantFrom: 1,
		},
		{
			name:     "Nothing Executed",
			plan:     NewPlan(make([]ports.Action, 1)),
			results:  []*domain.Result{nil},
			executed: nil,
			wantKind: domain.ResultEmpty,
			wantFrom: NoIndex,
		},
		{
			name: "Override Message",
			plan: func() *Plan {
				p := NewPlan(make([]ports.Action, 1))
				p.Message = "Archived!"
				return p
			}(),
			results:  []*domain.Result{domain.DataResult(data, true).WithMessage("ignored")},
			executed: []int{0},
			modified: true,
			wantKind: domain.ResultData,
			wantMsg:  "Archived!",
			wantFrom: 0,
			wantData: true,
		},
		{
			name: "Custom Delimiter",
			plan: func() *Plan {
				p := NewPlan(make([]ports.Action, 2))
				p.MessageDelimiter = " | "
				return p
			}(),
			results:  []*domain.Result{domain.MessageResult("a", false), domain.MessageResult("b", false)},
			executed: []int{0, 1},
			wantKind: domain.ResultMessage,
			wantMsg:  "a | b",
			wantFrom: 1,
		},
		{
			name: "Result Index Overrides Last",
			plan: func() *Plan {
				p := NewPlan(make([]ports.Action, 2))
				p.ResultIndex = 0
				return p
			}(),
			results:  []*domain.Result{domain.DataResult(data, false), domain.EmptyResult(true)},
			executed: []int{0, 1},
			modified: true,
			wantKind: domain.ResultData,
			wantFrom: 0,
			wantData: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, from := resolve(tt.plan, tt.results, tt.executed, tt.modified)

			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantMsg, got.Message)
			assert.Equal(t, tt.wantFrom, from)
			assert.Equal(t, tt.modified, got.Modified)
			assert.Equal(t, tt.wantData, got.HasData())
		})
	}
}

func TestResolve_DoesNotMutateStepResult(t *testing.T) {
	stepResult := domain.EmptyResult(false)
	plan := NewPlan(make([]ports.Action, 1))
	plan.Message = "done"

	got, _ := resolve(plan, []*domain.Result{stepResult}, []int{0}, true)

	assert.Equal(t, domain.ResultMessage, got.Kind)
	assert.Equal(t, domain.EmptyResult(false), stepResult)
}
