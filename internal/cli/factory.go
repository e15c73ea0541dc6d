package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/actionchain/pkg/actions"
	loamadapter "github.com/aretw0/actionchain/pkg/adapters/loam"
	"github.com/aretw0/actionchain/pkg/adapters/memory"
	"github.com/aretw0/actionchain/pkg/adapters/process"
	redisadapter "github.com/aretw0/actionchain/pkg/adapters/redis"
	"github.com/aretw0/actionchain/pkg/domain"
	"github.com/aretw0/actionchain/pkg/ports"
	"github.com/aretw0/actionchain/pkg/registry"
	"github.com/aretw0/actionchain/pkg/schema"
	"gopkg.in/yaml.v3"
)

// DefaultCommandsFile is the allow-list looked up in the repository directory.
const DefaultCommandsFile = "commands.yaml"

// ErrNoChain is returned when neither a chain file nor a chain id was given.
var ErrNoChain = errors.New("a chain file or --chain id is required")

// LoadChain resolves the chain definition named by opts: a file path wins
// over a chain id looked up in the loam repository at RepoPath.
func LoadChain(ctx context.Context, opts RunOptions) (*schema.ChainConfig, error) {
	if opts.ChainPath != "" {
		return schema.LoadFile(opts.ChainPath)
	}
	if opts.ChainID == "" {
		return nil, ErrNoChain
	}
	repo, err := loamadapter.Open(opts.RepoPath)
	if err != nil {
		return nil, err
	}
	return repo.GetChain(ctx, opts.ChainID)
}

// LoadInput reads the input dataset. No path means no input.
func LoadInput(path string) (*domain.Dataset, error) {
	if path == "" {
		return nil, nil
	}
	ds, err := schema.LoadDataset(path)
	if err != nil {
		return nil, fmt.Errorf("error loading --input: %w", err)
	}
	return ds, nil
}

// ParseParams turns k=v pairs into task parameters. Values are decoded as
// YAML scalars, so numbers and booleans keep their type.
func ParseParams(pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q: expected key=value", pair)
		}
		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil || value == nil {
			value = raw
		}
		params[key] = value
	}
	return params, nil
}

// NewRegistry returns a registry holding the built-in actions and the exec
// action bound to the allow-listed commands. Without an explicit commands
// file, commands.yaml in the repository directory is used when present.
func NewRegistry(opts RunOptions) (*registry.Registry, error) {
	reg := registry.NewRegistry()
	actions.RegisterBuiltins(reg)

	path := opts.CommandsPath
	if path == "" {
		path = filepath.Join(opts.RepoPath, DefaultCommandsFile)
	}
	commands, err := process.LoadCommands(path)
	if err != nil {
		return nil, err
	}
	actions.RegisterExec(reg, process.NewRunner(
		process.WithCommands(commands),
		process.WithBaseDir(opts.RepoPath),
	))
	return reg, nil
}

// NewManager picks the transaction manager: Redis when an address is given,
// otherwise a scratch memory store seeded with the input.
func NewManager(opts RunOptions, input *domain.Dataset) (ports.TransactionManager, func() error, error) {
	if opts.RedisAddr != "" {
		var redisOpts []redisadapter.Option
		if opts.RedisPrefix != "" {
			redisOpts = append(redisOpts, redisadapter.WithPrefix(opts.RedisPrefix))
		}
		mgr := redisadapter.New(opts.RedisAddr, "", 0, redisOpts...)
		return mgr, mgr.Close, nil
	}

	store := memory.NewStore()
	if input != nil {
		store.Seed(input)
	}
	return memory.NewManager(store), func() error { return nil }, nil
}
