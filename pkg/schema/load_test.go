package schema_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/actionchain/pkg/domain"
	"github.com/aretw0/actionchain/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const archiveYAML = `
name: archive-orders
use_single_transaction: false
use_result_of_action: 0
use_input_data_of_action: 0
skip_actions_if_input_empty: true
result_message_delimiter: "; "
effects:
  - entity: ORDER_ARCHIVE
actions:
  - type: copy
    name: Archive
    args:
      to_entity: ORDER_ARCHIVE
  - type: update
    input_rows_min: 1
    args:
      set:
        status: archived
  - chain:
      message: nested done
      actions:
        - type: message
          args:
            text: hi
`

func TestParse_YAML(t *testing.T) {
	cfg, err := schema.Parse([]byte(archiveYAML), schema.FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "archive-orders", cfg.Name)
	assert.False(t, cfg.SingleTransaction())
	require.NotNil(t, cfg.UseResultOfAction)
	assert.Equal(t, 0, *cfg.UseResultOfAction)
	require.NotNil(t, cfg.UseInputDataOfAction)
	assert.True(t, cfg.SkipActionsIfInputEmpty)
	assert.Equal(t, "; ", cfg.MessageDelimiter())
	assert.Equal(t, []domain.Effect{{Entity: "ORDER_ARCHIVE"}}, cfg.Effects)

	require.Len(t, cfg.Actions, 3)
	assert.Equal(t, "ORDER_ARCHIVE", cfg.Actions[0].Args["to_entity"])
	assert.Equal(t, 1, *cfg.Actions[1].InputRowsMin)
	assert.Equal(t, schema.TypeChain, cfg.Actions[2].Kind())
	assert.Equal(t, "nested done", cfg.Actions[2].Chain.Message)

	assert.NoError(t, schema.Validate(cfg))
}

func TestLoadFile_JSONByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chain.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"actions":[{"type":"message","args":{"text":"ok"}}],"use_result_of_action":0}`), 0644))

	cfg, err := schema.LoadFile(path)
	require.NoError(t, err)
	assert.True(t, cfg.SingleTransaction())
	require.Len(t, cfg.Actions, 1)
	assert.Equal(t, 0, *cfg.UseResultOfAction)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := schema.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadDataset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orders.yaml")
	require.NoError(t, os.WriteFile(path, []byte("entity: ORDER\nrows:\n  - id: 1\n    total: 10\n  - id: 2\n    total: 20\n"), 0644))

	ds, err := schema.LoadDataset(path)
	require.NoError(t, err)
	assert.Equal(t, "ORDER", ds.Entity)
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, "1", ds.KeyOf(ds.Rows[0]))
}

func TestMarshal_RoundTripKeepsIndexes(t *testing.T) {
	cfg := &schema.ChainConfig{
		UseResultOfAction: schema.Int(0),
		Actions:           []schema.ActionConfig{{Type: "message"}},
	}

	data, err := schema.Marshal(cfg, schema.FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, string(data), "use_result_of_action: 0")
}
