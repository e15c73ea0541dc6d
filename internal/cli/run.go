package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/actionchain"
	"github.com/aretw0/actionchain/internal/logging"
	"github.com/aretw0/actionchain/pkg/domain"
)

// RunOptions contains all the configuration for the run, graph and validate commands.
type RunOptions struct {
	ChainPath string
	RepoPath  string
	ChainID   string
	InputPath string
	Params    []string

	// CommandsPath is the allow-list of external commands for exec actions.
	CommandsPath string
	RedisAddr    string
	RedisPrefix  string

	JSON   bool
	Trace  bool
	Watch  bool
	Debug  bool
	Logger *slog.Logger
}

func (o RunOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return logging.NewNop()
	}
	return o.Logger
}

// Execute handles the 'run' command, dispatching to watch mode when asked.
func Execute(ctx context.Context, opts RunOptions, out io.Writer) error {
	if opts.Watch {
		if opts.JSON {
			return fmt.Errorf("--watch and --json cannot be used together")
		}
		return RunWatch(ctx, opts, out)
	}
	return RunOnce(ctx, opts, out)
}

// RunOnce loads, builds and executes the chain a single time, then prints
// the report. A failed run is reported before its error is returned.
func RunOnce(ctx context.Context, opts RunOptions, out io.Writer) error {
	rep, err := run(ctx, opts)
	if rep != nil {
		if perr := printReport(out, rep, opts); perr != nil {
			return perr
		}
	}
	return err
}

// Graph executes the chain against a scratch in-memory store and prints only
// the Mermaid trace of the run.
func Graph(ctx context.Context, opts RunOptions, out io.Writer) error {
	opts.RedisAddr = ""
	rep, err := run(ctx, opts)
	if rep != nil && rep.Trace != "" {
		fmt.Fprint(out, rep.Trace)
	}
	if err != nil && (rep == nil || rep.Trace == "") {
		return err
	}
	return nil
}

func run(ctx context.Context, opts RunOptions) (*report, error) {
	logger := opts.logger()

	cfg, err := LoadChain(ctx, opts)
	if err != nil {
		return nil, err
	}
	input, err := LoadInput(opts.InputPath)
	if err != nil {
		return nil, err
	}
	params, err := ParseParams(opts.Params)
	if err != nil {
		return nil, err
	}

	mgr, closeFn, err := NewManager(opts, input)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	chainOpts := []actionchain.Option{
		actionchain.WithLogger(logger),
		actionchain.WithTransactionManager(mgr),
	}
	if opts.Debug {
		chainOpts = append(chainOpts, actionchain.WithHooks(createDebugHooks(logger)))
	}

	reg, err := NewRegistry(opts)
	if err != nil {
		return nil, err
	}
	chain, err := actionchain.Build(cfg, reg, chainOpts...)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	outcome, trace, err := chain.Execute(ctx, domain.NewTask(input, params), nil)
	logger.Info("Chain finished", "chain", chain.Identity(), "ok", err == nil, "duration", time.Since(start))

	rep := &report{Chain: chain.Identity(), Trace: trace.String()}
	if err != nil {
		rep.Error = err.Error()
		return rep, err
	}
	rep.Result = outcome.Result
	rep.Effects = outcome.Effects
	return rep, nil
}
