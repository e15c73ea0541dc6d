package process

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/aretw0/actionchain/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_Run(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}

	input := &domain.Dataset{Entity: "ORDER", Key: "id", Rows: []domain.Row{{"id": "1"}}}

	runner := NewRunner()
	runner.Register("echo_input", "cat")
	runner.Register("echo_env", "sh", "-c", "echo $ACTIONCHAIN_PARAM_MSG")
	runner.Register("rows", "sh", "-c", `echo '[{"id": "9", "total": 3}]'`)
	runner.Register("broken", "sh", "-c", "echo boom >&2; exit 3")

	t.Run("Input Arrives On Stdin", func(t *testing.T) {
		out, err := runner.Run(context.Background(), "echo_input", input, nil)
		require.NoError(t, err)
		require.NotNil(t, out.Data)
		assert.Equal(t, "ORDER", out.Data.Entity)
		assert.Equal(t, "id", out.Data.Key)
		assert.Equal(t, "1", out.Data.Rows[0]["id"])
	})

	t.Run("Parameters Via Env Vars", func(t *testing.T) {
		out, err := runner.Run(context.Background(), "echo_env", input, map[string]any{"msg": "SecretMessage"})
		require.NoError(t, err)
		assert.Nil(t, out.Data)
		assert.Equal(t, "SecretMessage", out.Text)
	})

	t.Run("Row Array Inherits Entity", func(t *testing.T) {
		out, err := runner.Run(context.Background(), "rows", input, nil)
		require.NoError(t, err)
		require.NotNil(t, out.Data)
		assert.Equal(t, "ORDER", out.Data.Entity)
		assert.Equal(t, 1, out.Data.Len())
		assert.Equal(t, float64(3), out.Data.Rows[0]["total"])
	})

	t.Run("Failure Carries Stderr", func(t *testing.T) {
		_, err := runner.Run(context.Background(), "broken", input, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("Fails For Unregistered Command", func(t *testing.T) {
		_, err := runner.Run(context.Background(), "hacker_script", input, nil)
		assert.ErrorIs(t, err, ErrNotRegistered)
	})
}

func TestLoadCommands(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "commands.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`commands:
  - name: enrich
    command: ./enrich.sh
    args: ["--fast"]
    env:
      MODE: test
  - command: nameless
`), 0644))

	commands, err := LoadCommands(path)
	require.NoError(t, err)
	require.Len(t, commands, 1)
	assert.Equal(t, "./enrich.sh", commands["enrich"].Command)
	assert.Equal(t, []string{"--fast"}, commands["enrich"].Args)
	assert.Equal(t, "test", commands["enrich"].Environment["MODE"])

	missing, err := LoadCommands(filepath.Join(dir, "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, missing)

	runner := NewRunner(WithCommands(commands))
	assert.Equal(t, []string{"enrich"}, runner.Names())
}
