package actions

import (
	"context"

	"github.com/aretw0/actionchain/pkg/adapters/process"
	"github.com/aretw0/actionchain/pkg/domain"
	"github.com/aretw0/actionchain/pkg/ports"
	"github.com/aretw0/actionchain/pkg/registry"
	"github.com/aretw0/actionchain/pkg/schema"
)

// RegisterExec installs the exec action type, bound to runner's allow-list.
func RegisterExec(reg *registry.Registry, runner *process.Runner) {
	reg.Register("exec", func(cfg schema.ActionConfig) (ports.Action, error) {
		return NewExec(cfg, runner)
	})
}

type execArgs struct {
	Command  string `mapstructure:"command"`
	Entity   string `mapstructure:"entity"`
	Write    bool   `mapstructure:"write"`
	Modified bool   `mapstructure:"modified"`
}

// Exec hands its input to an allow-listed external command. Rows printed by
// the command become the result, written through the transaction when
// args.write is set; any other output becomes a message.
type Exec struct {
	base
	args   execArgs
	runner *process.Runner
}

// NewExec builds an exec action.
func NewExec(cfg schema.ActionConfig, runner *process.Runner) (ports.Action, error) {
	a := &Exec{base: newBase(cfg, "", 0), runner: runner}
	if err := decodeArgs(cfg, &a.args); err != nil {
		return nil, err
	}
	if a.args.Command == "" {
		return nil, &domain.ConfigurationError{Field: "args.command", Reason: "exec needs a command"}
	}
	if a.name == "" {
		a.name = a.args.Command
	}
	a.declare(a.args.Entity)
	return a, nil
}

func (a *Exec) Invoke(ctx context.Context, task *domain.Task, tx ports.Transaction) (*domain.Result, error) {
	if err := a.checkInput(task); err != nil {
		return nil, err
	}

	out, err := a.runner.Run(ctx, a.args.Command, task.Input, task.Params)
	if err != nil {
		return nil, &domain.ActionError{Action: a.name, Reason: "run " + a.args.Command, Err: err}
	}
	if out.Data == nil {
		return domain.MessageResult(out.Text, a.args.Modified), nil
	}

	modified := a.args.Modified
	if a.args.Write && !out.Data.IsEmpty() {
		if a.args.Entity != "" {
			out.Data.Entity = a.args.Entity
		}
		w, err := a.writer(tx)
		if err != nil {
			return nil, err
		}
		if err := w.Write(ctx, out.Data.Entity, out.Data.KeyField(), out.Data.Rows); err != nil {
			return nil, &domain.ActionError{Action: a.name, Reason: "write output", Err: err}
		}
		modified = true
	}
	return domain.DataResult(out.Data, modified), nil
}
