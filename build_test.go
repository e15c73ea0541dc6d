package actionchain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/actionchain"
	"github.com/aretw0/actionchain/pkg/actions"
	"github.com/aretw0/actionchain/pkg/domain"
	"github.com/aretw0/actionchain/pkg/registry"
	"github.com/aretw0/actionchain/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const archiveChain = `
name: Archive paid orders
icon: archive
use_result_of_action: 1
skip_actions_if_input_empty: true
effects:
  - entity: ORDER
    name: Orders
actions:
  - type: filter
    args:
      field: status
      equals: paid
  - type: chain
    name: Move to archive
    chain:
      use_input_data_of_action: 0
      actions:
        - type: copy
          args:
            to_entity: ARCHIVE
        - type: delete
  - type: message
    args:
      text: done
`

func builtins() *registry.Registry {
	reg := registry.NewRegistry()
	actions.RegisterBuiltins(reg)
	return reg
}

func TestBuild_FromYAML(t *testing.T) {
	cfg, err := schema.Parse([]byte(archiveChain), schema.FormatYAML)
	require.NoError(t, err)

	mgr := seeded()
	chain, err := actionchain.Build(cfg, builtins(), actionchain.WithTransactionManager(mgr))
	require.NoError(t, err)

	assert.Equal(t, "Archive paid orders", chain.Identity())
	assert.Equal(t, "archive", chain.Icon())
	require.Len(t, chain.Actions(), 3)
	assert.Equal(t, "Move to archive", chain.Actions()[1].Identity())

	input := domain.NewDataset("ORDER",
		domain.Row{"id": "1", "status": "paid"},
		domain.Row{"id": "2", "status": "open"},
	)
	outcome, _, err := chain.Execute(context.Background(), domain.NewTask(input, nil), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.ResultIndex)
	assert.Equal(t, domain.ResultMessage, outcome.Result.Kind)
	assert.True(t, outcome.Result.Modified)
	assert.Equal(t, "ORDER", outcome.Effects[0].Entity)

	assert.Equal(t, "Copied 1 row to ARCHIVE\nDeleted 1 row of ORDER\ndone", outcome.Result.Message)

	archived, err := mgr.Load(context.Background(), "ARCHIVE")
	require.NoError(t, err)
	assert.Equal(t, 1, archived.Len())

	remaining, err := mgr.Load(context.Background(), "ORDER")
	require.NoError(t, err)
	require.Equal(t, 1, remaining.Len())
	assert.Equal(t, "2", remaining.Rows[0]["id"])
}

func TestBuild_NestedChainSharesManager(t *testing.T) {
	cfg := &schema.ChainConfig{
		Actions: []schema.ActionConfig{
			{Chain: &schema.ChainConfig{Actions: []schema.ActionConfig{{Type: "message"}}}},
		},
	}

	mgr := seeded()
	chain, err := actionchain.Build(cfg, builtins(), actionchain.WithTransactionManager(mgr))
	require.NoError(t, err)

	nested, ok := chain.Actions()[0].(*actionchain.Chain)
	require.True(t, ok)
	assert.Same(t, mgr, nested.TransactionManager())
}

func TestBuild_DefaultManagerIsShared(t *testing.T) {
	cfg := &schema.ChainConfig{
		Actions: []schema.ActionConfig{
			{Type: "chain", Chain: &schema.ChainConfig{Actions: []schema.ActionConfig{{Type: "message"}}}},
		},
	}

	chain, err := actionchain.Build(cfg, builtins())
	require.NoError(t, err)

	nested := chain.Actions()[0].(*actionchain.Chain)
	assert.Same(t, chain.TransactionManager(), nested.TransactionManager())
}

func TestBuild_HooksOnlyOnOutermostChain(t *testing.T) {
	cfg := &schema.ChainConfig{
		Name: "outer",
		Actions: []schema.ActionConfig{
			{Type: "chain", Chain: &schema.ChainConfig{Name: "inner", Actions: []schema.ActionConfig{{Type: "message"}}}},
		},
	}

	var completed []string
	hooks := domain.ChainHooks{
		OnChainComplete: func(_ context.Context, ev *domain.ChainEvent) { completed = append(completed, ev.Chain) },
	}

	chain, err := actionchain.Build(cfg, builtins(), actionchain.WithHooks(hooks))
	require.NoError(t, err)

	_, _, err = chain.Execute(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"outer"}, completed)
}

func TestBuild_InvalidConfiguration(t *testing.T) {
	cfg := &schema.ChainConfig{
		UseResultOfAction: schema.Int(4),
		Actions:           []schema.ActionConfig{{Type: "message"}},
	}

	_, err := actionchain.Build(cfg, builtins())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrIndexOutOfRange))
}

func TestBuild_UnknownActionType(t *testing.T) {
	cfg := &schema.ChainConfig{
		Actions: []schema.ActionConfig{
			{Type: "message"},
			{Type: "chain", Chain: &schema.ChainConfig{Actions: []schema.ActionConfig{{Type: "teleport"}}}},
		},
	}

	_, err := actionchain.Build(cfg, builtins())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnknownActionType))
	assert.Contains(t, err.Error(), "actions[1]: actions[0]")
}
