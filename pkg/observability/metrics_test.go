package observability_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/actionchain"
	"github.com/aretw0/actionchain/internal/testutils"
	"github.com/aretw0/actionchain/pkg/domain"
	"github.com/aretw0/actionchain/pkg/observability"
	"github.com/aretw0/actionchain/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordsRuns(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	update := &testutils.FakeAction{Name: "Update", MinRows: 1, Result: domain.EmptyResult(true)}
	note := &testutils.FakeAction{Name: "Note", Result: domain.MessageResult("ok", false)}

	chain, err := actionchain.New([]ports.Action{update, note},
		actionchain.WithName("Tidy"),
		actionchain.WithHooks(metrics.Hooks()),
	)
	require.NoError(t, err)

	input := domain.NewDataset("ORDER", domain.Row{"id": 1})
	_, _, err = chain.Execute(context.Background(), domain.NewTask(input, nil), nil)
	require.NoError(t, err)

	runs := `
# HELP actionchain_runs_total Total number of chain runs by outcome
# TYPE actionchain_runs_total counter
actionchain_runs_total{outcome="succeeded"} 1
`
	require.NoError(t, testutil.CollectAndCompare(reg, strings.NewReader(runs), "actionchain_runs_total"))

	modified := `
# HELP actionchain_modified_runs_total Total number of successful chain runs that modified data
# TYPE actionchain_modified_runs_total counter
actionchain_modified_runs_total 1
`
	require.NoError(t, testutil.CollectAndCompare(reg, strings.NewReader(modified), "actionchain_modified_runs_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "actionchain_run_duration_seconds"))
	assert.Equal(t, 2, testutil.CollectAndCount(reg, "actionchain_steps_total"))
}

func TestMetrics_CountsSkipsAndFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	update := &testutils.FakeAction{Name: "Update", MinRows: 1, Result: domain.EmptyResult(true)}
	boom := &testutils.FakeAction{Name: "Boom", Err: &domain.ActionError{Action: "Boom", Reason: "no"}}

	chain, err := actionchain.New([]ports.Action{update, boom},
		actionchain.WithSkipIfInputEmpty(true),
		actionchain.WithHooks(domain.MergeHooks(metrics.Hooks())),
	)
	require.NoError(t, err)

	_, _, err = chain.Execute(context.Background(), nil, nil)
	require.Error(t, err)

	expected := `
# HELP actionchain_steps_total Total number of chain steps by action and status
# TYPE actionchain_steps_total counter
actionchain_steps_total{action="Boom",status="failed"} 1
actionchain_steps_total{action="Update",status="skipped"} 1
`
	require.NoError(t, testutil.CollectAndCompare(reg, strings.NewReader(expected), "actionchain_steps_total"))

	runs := `
# HELP actionchain_runs_total Total number of chain runs by outcome
# TYPE actionchain_runs_total counter
actionchain_runs_total{outcome="failed"} 1
`
	require.NoError(t, testutil.CollectAndCompare(reg, strings.NewReader(runs), "actionchain_runs_total"))
}
