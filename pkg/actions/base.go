package actions

import (
	"fmt"

	"github.com/aretw0/actionchain/pkg/domain"
	"github.com/aretw0/actionchain/pkg/ports"
	"github.com/aretw0/actionchain/pkg/registry"
	"github.com/aretw0/actionchain/pkg/schema"
	"github.com/mitchellh/mapstructure"
)

// RegisterBuiltins installs every built-in action type into reg.
func RegisterBuiltins(reg *registry.Registry) {
	reg.Register("copy", NewCopy)
	reg.Register("update", NewUpdate)
	reg.Register("delete", NewDelete)
	reg.Register("filter", NewFilter)
	reg.Register("message", NewMessage)
	reg.Register("fail", NewFail)
}

// base carries what every built-in action declares.
type base struct {
	name    string
	icon    string
	minRows int
	maxRows int
	effects []domain.Effect
}

func newBase(cfg schema.ActionConfig, defaultName string, defaultMin int) base {
	b := base{
		name:    cfg.Name,
		icon:    cfg.Icon,
		minRows: defaultMin,
		effects: append([]domain.Effect(nil), cfg.Effects...),
	}
	if b.name == "" {
		b.name = defaultName
	}
	if cfg.InputRowsMin != nil {
		b.minRows = *cfg.InputRowsMin
	}
	if cfg.InputRowsMax != nil {
		b.maxRows = *cfg.InputRowsMax
	}
	return b
}

func (b base) Identity() string         { return b.name }
func (b base) Icon() string             { return b.icon }
func (b base) MinimumInputRows() int    { return b.minRows }
func (b base) MaximumInputRows() int    { return b.maxRows }
func (b base) Effects() []domain.Effect { return b.effects }

// declare adds an effect on entity unless it is empty or already declared.
func (b *base) declare(entity string) {
	if entity == "" {
		return
	}
	b.effects = domain.MergeEffects(b.effects, []domain.Effect{{Entity: entity}})
}

// checkInput enforces the row bounds of the action.
func (b base) checkInput(task *domain.Task) error {
	n := task.Input.Len()
	if n < b.minRows {
		return &domain.ActionError{Action: b.name, Reason: fmt.Sprintf("needs at least %d input rows, got %d", b.minRows, n)}
	}
	if b.maxRows > 0 && n > b.maxRows {
		return &domain.ActionError{Action: b.name, Reason: fmt.Sprintf("accepts at most %d input rows, got %d", b.maxRows, n)}
	}
	return nil
}

// writer returns the row writer behind tx.
func (b base) writer(tx ports.Transaction) (ports.RowWriter, error) {
	w, ok := ports.WriterOf(tx)
	if !ok {
		return nil, &domain.ActionError{Action: b.name, Reason: "cannot write rows", Err: domain.ErrNoRowWriter}
	}
	return w, nil
}

// decodeArgs decodes the free-form args of a definition into out.
func decodeArgs(cfg schema.ActionConfig, out any) error {
	if len(cfg.Args) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(cfg.Args); err != nil {
		return &domain.ConfigurationError{
			Field:  "args",
			Reason: err.Error(),
			Err:    err,
		}
	}
	return nil
}

func plural(n int) string {
	if n == 1 {
		return "row"
	}
	return "rows"
}
