package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/actionchain/internal/cli"
	loamadapter "github.com/aretw0/actionchain/pkg/adapters/loam"
	"github.com/aretw0/actionchain/pkg/ports"
	"github.com/aretw0/actionchain/pkg/registry"
	"github.com/bmatcuk/doublestar/v4"
)

// services are the long-lived dependencies of the serve and mcp commands.
type services struct {
	registry *registry.Registry
	manager  ports.TransactionManager
	chains   ports.ChainRepository
	close    func() error
}

func newServices(opts cli.RunOptions) (*services, error) {
	reg, err := cli.NewRegistry(opts)
	if err != nil {
		return nil, err
	}
	mgr, closeFn, err := cli.NewManager(opts, nil)
	if err != nil {
		return nil, err
	}
	s := &services{registry: reg, manager: mgr, close: closeFn}

	if hasRepository(opts.RepoPath) {
		repo, err := loamadapter.Open(opts.RepoPath)
		if err != nil {
			closeFn()
			return nil, err
		}
		s.chains = repo
		opts.Logger.Info("Serving chains", "dir", opts.RepoPath)
	}
	return s, nil
}

// hasRepository reports whether dir holds any chain definition.
func hasRepository(dir string) bool {
	matches, err := doublestar.Glob(os.DirFS(dir), loamadapter.ChainPattern)
	return err == nil && len(matches) > 0
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
