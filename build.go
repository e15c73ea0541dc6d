package actionchain

import (
	"fmt"

	"github.com/aretw0/actionchain/internal/logging"
	"github.com/aretw0/actionchain/internal/runtime"
	"github.com/aretw0/actionchain/pkg/adapters/memory"
	"github.com/aretw0/actionchain/pkg/ports"
	"github.com/aretw0/actionchain/pkg/registry"
	"github.com/aretw0/actionchain/pkg/schema"
)

// Build creates a chain from its definition, resolving action types through reg.
// Nested chain steps become nested Chains sharing the transaction manager and
// logger; hooks apply to the outermost chain only.
func Build(cfg *schema.ChainConfig, reg *registry.Registry, opts ...Option) (*Chain, error) {
	if err := schema.Validate(cfg); err != nil {
		return nil, err
	}

	base := &Chain{plan: runtime.NewPlan(nil)}
	for _, opt := range opts {
		opt(base)
	}
	if base.manager == nil {
		base.manager = memory.NewManager(memory.NewStore())
		opts = append([]Option{WithTransactionManager(base.manager)}, opts...)
	}
	if base.logger == nil {
		base.logger = logging.NewNop()
	}

	inherited := []Option{WithTransactionManager(base.manager), WithLogger(base.logger)}
	return build(cfg, reg, inherited, opts)
}

func build(cfg *schema.ChainConfig, reg *registry.Registry, inherited, opts []Option) (*Chain, error) {
	actions := make([]ports.Action, 0, len(cfg.Actions))
	for i, ac := range cfg.Actions {
		if ac.Kind() != schema.TypeChain {
			action, err := reg.Build(ac)
			if err != nil {
				return nil, fmt.Errorf("actions[%d]: %w", i, err)
			}
			actions = append(actions, action)
			continue
		}

		nestedOpts := append([]Option{}, inherited...)
		nestedOpts = append(nestedOpts, stepOverrides(ac)...)
		nested, err := build(ac.Chain, reg, inherited, nestedOpts)
		if err != nil {
			return nil, fmt.Errorf("actions[%d]: %w", i, err)
		}
		actions = append(actions, nested)
	}

	all := append(configOptions(cfg), opts...)
	return New(actions, all...)
}

// configOptions turns the switches of a definition into options.
func configOptions(cfg *schema.ChainConfig) []Option {
	opts := []Option{
		WithName(cfg.Name),
		WithIcon(cfg.Icon),
		WithSingleTransaction(cfg.SingleTransaction()),
		WithSkipIfInputEmpty(cfg.SkipActionsIfInputEmpty),
		WithMessageDelimiter(cfg.MessageDelimiter()),
		WithMessage(cfg.Message),
		WithEffects(cfg.Effects...),
	}
	if cfg.UseResultOfAction != nil {
		opts = append(opts, WithResultOf(*cfg.UseResultOfAction))
	}
	if cfg.UseInputDataOfAction != nil {
		opts = append(opts, WithInputDataOf(*cfg.UseInputDataOfAction))
	}
	return opts
}

// stepOverrides applies what the parent declares about a nested chain step.
func stepOverrides(ac schema.ActionConfig) []Option {
	var opts []Option
	if ac.Name != "" {
		opts = append(opts, WithName(ac.Name))
	}
	if ac.Icon != "" {
		opts = append(opts, WithIcon(ac.Icon))
	}
	if ac.InputRowsMin != nil {
		opts = append(opts, WithMinimumInputRows(*ac.InputRowsMin))
	}
	if ac.InputRowsMax != nil {
		opts = append(opts, WithMaximumInputRows(*ac.InputRowsMax))
	}
	if len(ac.Effects) > 0 {
		opts = append(opts, WithEffects(ac.Effects...))
	}
	return opts
}
