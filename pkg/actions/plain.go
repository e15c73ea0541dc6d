package actions

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/actionchain/pkg/domain"
	"github.com/aretw0/actionchain/pkg/ports"
	"github.com/aretw0/actionchain/pkg/schema"
)

type filterArgs struct {
	Field  string `mapstructure:"field"`
	Equals any    `mapstructure:"equals"`
}

// Filter keeps the input rows whose field equals a value. It modifies nothing.
type Filter struct {
	base
	args filterArgs
}

// NewFilter builds a filter action.
func NewFilter(cfg schema.ActionConfig) (ports.Action, error) {
	a := &Filter{base: newBase(cfg, "Filter", 0)}
	if err := decodeArgs(cfg, &a.args); err != nil {
		return nil, err
	}
	if a.args.Field == "" {
		return nil, &domain.ConfigurationError{Field: "args.field", Reason: "filter needs a field"}
	}
	return a, nil
}

func (a *Filter) Invoke(ctx context.Context, task *domain.Task, tx ports.Transaction) (*domain.Result, error) {
	if err := a.checkInput(task); err != nil {
		return nil, err
	}

	input := task.Input
	out := &domain.Dataset{Rows: []domain.Row{}}
	if input != nil {
		out.Entity = input.Entity
		out.Key = input.Key
		want := fmt.Sprint(a.args.Equals)
		for _, row := range input.Rows {
			if v, ok := row[a.args.Field]; ok && fmt.Sprint(v) == want {
				out.Rows = append(out.Rows, row.Clone())
			}
		}
	}
	return domain.DataResult(out, false), nil
}

type messageArgs struct {
	Text string `mapstructure:"text"`
}

// Message returns a fixed text. The placeholder {rows} is replaced by the
// number of input rows.
type Message struct {
	base
	args messageArgs
}

// NewMessage builds a message action.
func NewMessage(cfg schema.ActionConfig) (ports.Action, error) {
	a := &Message{base: newBase(cfg, "Message", 0)}
	if err := decodeArgs(cfg, &a.args); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Message) Invoke(ctx context.Context, task *domain.Task, tx ports.Transaction) (*domain.Result, error) {
	if err := a.checkInput(task); err != nil {
		return nil, err
	}
	text := replaceRows(a.args.Text, task.Input.Len())
	return domain.MessageResult(text, false), nil
}

type failArgs struct {
	Reason string `mapstructure:"reason"`
}

// Fail always fails. It is useful to exercise rollbacks.
type Fail struct {
	base
	args failArgs
}

// NewFail builds a fail action.
func NewFail(cfg schema.ActionConfig) (ports.Action, error) {
	a := &Fail{base: newBase(cfg, "Fail", 0)}
	if err := decodeArgs(cfg, &a.args); err != nil {
		return nil, err
	}
	if a.args.Reason == "" {
		a.args.Reason = "failed on purpose"
	}
	return a, nil
}

func (a *Fail) Invoke(ctx context.Context, task *domain.Task, tx ports.Transaction) (*domain.Result, error) {
	return nil, &domain.ActionError{Action: a.name, Reason: a.args.Reason}
}

func replaceRows(text string, n int) string {
	return strings.ReplaceAll(text, "{rows}", strconv.Itoa(n))
}
