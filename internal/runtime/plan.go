package runtime

import (
	"fmt"

	"github.com/aretw0/actionchain/pkg/domain"
	"github.com/aretw0/actionchain/pkg/ports"
	"github.com/aretw0/actionchain/pkg/schema"
)

// NoIndex marks an unset step index.
const NoIndex = -1

// Plan is the configuration of one chain: its actions in order and the
// switches governing transactions, data threading and result selection.
type Plan struct {
	Name    string
	Actions []ports.Action

	SingleTransaction bool
	ResultIndex       int
	InputFreezeIndex  int
	SkipIfEmptyInput  bool
	MessageDelimiter  string

	// Message, when set, replaces the composed message of the executed actions.
	Message string
	Effects []domain.Effect
}

// NewPlan returns a plan over actions with the default settings.
func NewPlan(actions []ports.Action) *Plan {
	return &Plan{
		Actions:           actions,
		SingleTransaction: true,
		ResultIndex:       NoIndex,
		InputFreezeIndex:  NoIndex,
		MessageDelimiter:  schema.DefaultMessageDelimiter,
	}
}

// Validate checks the plan. It returns the first problem as a *domain.ConfigurationError.
func (p *Plan) Validate() error {
	n := len(p.Actions)
	if n == 0 {
		return &domain.ConfigurationError{
			Field:  "actions",
			Reason: "at least one action is required",
			Err:    domain.ErrEmptyChain,
		}
	}
	for i, action := range p.Actions {
		if action == nil {
			return &domain.ConfigurationError{
				Field:  fmt.Sprintf("actions[%d]", i),
				Reason: "action is nil",
			}
		}
	}
	if err := checkIndex("use_result_of_action", p.ResultIndex, n); err != nil {
		return err
	}
	return checkIndex("use_input_data_of_action", p.InputFreezeIndex, n)
}

// Frozen reports whether step i reads the snapshot taken at the freeze index.
func (p *Plan) Frozen(i int) bool {
	return p.InputFreezeIndex != NoIndex && i > p.InputFreezeIndex
}

func checkIndex(field string, idx, n int) error {
	if idx == NoIndex {
		return nil
	}
	if idx < 0 || idx >= n {
		return &domain.ConfigurationError{
			Field:  field,
			Reason: fmt.Sprintf("must reference one of the %d configured actions", n),
			Value:  idx,
			Err:    domain.ErrIndexOutOfRange,
		}
	}
	return nil
}
