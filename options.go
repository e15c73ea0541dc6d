package actionchain

import (
	"log/slog"

	"github.com/aretw0/actionchain/pkg/domain"
	"github.com/aretw0/actionchain/pkg/ports"
)

// Option defines a functional option for configuring a Chain.
type Option func(*Chain)

// WithName sets the chain's identity label.
func WithName(name string) Option {
	return func(c *Chain) {
		c.plan.Name = name
	}
}

// WithIcon sets the chain's display icon.
func WithIcon(icon string) Option {
	return func(c *Chain) {
		c.icon = icon
	}
}

// WithSingleTransaction selects whether all actions share one transaction
// handle (the default) or each gets its own.
func WithSingleTransaction(single bool) Option {
	return func(c *Chain) {
		c.plan.SingleTransaction = single
	}
}

// WithResultOf makes the result of action i the result of the chain.
func WithResultOf(i int) Option {
	return func(c *Chain) {
		c.plan.ResultIndex = i
	}
}

// WithInputDataOf makes every action after i read the input action i received.
func WithInputDataOf(i int) Option {
	return func(c *Chain) {
		c.plan.InputFreezeIndex = i
	}
}

// WithSkipIfInputEmpty skips actions that need input rows when there are none.
func WithSkipIfInputEmpty(skip bool) Option {
	return func(c *Chain) {
		c.plan.SkipIfEmptyInput = skip
	}
}

// WithMessageDelimiter sets how action messages are joined.
func WithMessageDelimiter(delim string) Option {
	return func(c *Chain) {
		c.plan.MessageDelimiter = delim
	}
}

// WithMessage replaces the composed result message.
func WithMessage(msg string) Option {
	return func(c *Chain) {
		c.plan.Message = msg
	}
}

// WithEffects declares chain-level effects. They take precedence over the
// effects of the actions.
func WithEffects(effects ...domain.Effect) Option {
	return func(c *Chain) {
		c.plan.Effects = append(c.plan.Effects, effects...)
	}
}

// WithMinimumInputRows overrides the input rows the chain requires when nested.
func WithMinimumInputRows(n int) Option {
	return func(c *Chain) {
		c.minRows = &n
	}
}

// WithMaximumInputRows overrides the input rows the chain accepts when nested.
func WithMaximumInputRows(n int) Option {
	return func(c *Chain) {
		c.maxRows = &n
	}
}

// WithTransactionManager sets where new transaction handles come from.
func WithTransactionManager(m ports.TransactionManager) Option {
	return func(c *Chain) {
		c.manager = m
	}
}

// WithLogger sets a custom structured logger for the chain.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chain) {
		c.logger = logger
	}
}

// WithHooks registers observability hooks, including the completion signal.
func WithHooks(hooks domain.ChainHooks) Option {
	return func(c *Chain) {
		c.hooks = hooks
	}
}
