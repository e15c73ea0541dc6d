package actions

import (
	"context"
	"fmt"

	"github.com/aretw0/actionchain/pkg/domain"
	"github.com/aretw0/actionchain/pkg/ports"
	"github.com/aretw0/actionchain/pkg/schema"
	"github.com/google/uuid"
)

type copyArgs struct {
	ToEntity string         `mapstructure:"to_entity"`
	Set      map[string]any `mapstructure:"set"`
}

// Copy duplicates its input rows under fresh keys, optionally into another entity.
type Copy struct {
	base
	args copyArgs
}

// NewCopy builds a copy action.
func NewCopy(cfg schema.ActionConfig) (ports.Action, error) {
	a := &Copy{base: newBase(cfg, "Copy", 1)}
	if err := decodeArgs(cfg, &a.args); err != nil {
		return nil, err
	}
	a.declare(a.args.ToEntity)
	return a, nil
}

func (a *Copy) Invoke(ctx context.Context, task *domain.Task, tx ports.Transaction) (*domain.Result, error) {
	if err := a.checkInput(task); err != nil {
		return nil, err
	}
	w, err := a.writer(tx)
	if err != nil {
		return nil, err
	}

	input := task.Input
	if input == nil {
		return domain.EmptyResult(false), nil
	}
	target := a.args.ToEntity
	if target == "" {
		target = input.Entity
	}

	out := &domain.Dataset{Entity: target, Key: input.KeyField(), Rows: make([]domain.Row, 0, input.Len())}
	for _, row := range input.Rows {
		if row == nil {
			continue
		}
		cp := row.Clone()
		for k, v := range a.args.Set {
			cp[k] = v
		}
		cp[out.KeyField()] = uuid.NewString()
		out.Rows = append(out.Rows, cp)
	}

	if err := w.Write(ctx, target, out.KeyField(), out.Rows); err != nil {
		return nil, &domain.ActionError{Action: a.name, Reason: "write copies", Err: err}
	}

	n := out.Len()
	return domain.DataResult(out, n > 0).WithMessage(fmt.Sprintf("Copied %d %s to %s", n, plural(n), target)), nil
}

type updateArgs struct {
	Entity string         `mapstructure:"entity"`
	Set    map[string]any `mapstructure:"set"`
}

// Update assigns fields on its input rows and writes them back.
type Update struct {
	base
	args updateArgs
}

// NewUpdate builds an update action.
func NewUpdate(cfg schema.ActionConfig) (ports.Action, error) {
	a := &Update{base: newBase(cfg, "Update", 1)}
	if err := decodeArgs(cfg, &a.args); err != nil {
		return nil, err
	}
	a.declare(a.args.Entity)
	return a, nil
}

func (a *Update) Invoke(ctx context.Context, task *domain.Task, tx ports.Transaction) (*domain.Result, error) {
	if err := a.checkInput(task); err != nil {
		return nil, err
	}
	w, err := a.writer(tx)
	if err != nil {
		return nil, err
	}

	out := task.Input.Clone()
	if out == nil {
		out = domain.NewDataset(a.args.Entity)
	}
	for _, row := range out.Rows {
		for k, v := range a.args.Set {
			row[k] = v
		}
	}

	if err := w.Write(ctx, out.Entity, out.KeyField(), out.Rows); err != nil {
		return nil, &domain.ActionError{Action: a.name, Reason: "write updates", Err: err}
	}

	n := out.Len()
	return domain.DataResult(out, n > 0).WithMessage(fmt.Sprintf("Updated %d %s of %s", n, plural(n), out.Entity)), nil
}

type deleteArgs struct {
	Entity string `mapstructure:"entity"`
}

// Delete removes its input rows.
type Delete struct {
	base
	args deleteArgs
}

// NewDelete builds a delete action.
func NewDelete(cfg schema.ActionConfig) (ports.Action, error) {
	a := &Delete{base: newBase(cfg, "Delete", 1)}
	if err := decodeArgs(cfg, &a.args); err != nil {
		return nil, err
	}
	a.declare(a.args.Entity)
	return a, nil
}

func (a *Delete) Invoke(ctx context.Context, task *domain.Task, tx ports.Transaction) (*domain.Result, error) {
	if err := a.checkInput(task); err != nil {
		return nil, err
	}
	w, err := a.writer(tx)
	if err != nil {
		return nil, err
	}

	input := task.Input
	if input == nil {
		return domain.EmptyResult(false), nil
	}
	keys := make([]string, 0, input.Len())
	for _, row := range input.Rows {
		if k := input.KeyOf(row); k != "" {
			keys = append(keys, k)
		}
	}

	if err := w.Remove(ctx, input.Entity, keys); err != nil {
		return nil, &domain.ActionError{Action: a.name, Reason: "remove rows", Err: err}
	}

	n := len(keys)
	return domain.EmptyResult(n > 0).WithMessage(fmt.Sprintf("Deleted %d %s of %s", n, plural(n), input.Entity)), nil
}
