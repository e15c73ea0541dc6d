package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aretw0/actionchain"
	"github.com/aretw0/actionchain/internal/presentation/tui"
	loamadapter "github.com/aretw0/actionchain/pkg/adapters/loam"
)

// settle is how long the watcher waits for a burst of file events to end.
const settle = 150 * time.Millisecond

// RunWatch executes a repository chain and runs it again every time its
// definition changes, until ctx ends.
func RunWatch(ctx context.Context, opts RunOptions, out io.Writer) error {
	if opts.ChainID == "" {
		return fmt.Errorf("--watch needs a --chain id inside the --dir repository")
	}
	opts.ChainPath = ""
	logger := opts.logger()

	repo, err := loamadapter.Open(opts.RepoPath)
	if err != nil {
		return err
	}
	events, err := repo.Watch(ctx)
	if err != nil {
		return err
	}

	tui.PrintBanner(out, actionchain.Version)
	printSystemMessage(out, "Watching '%s' in '%s'.", opts.ChainID, opts.RepoPath)

	runIteration := func() {
		if err := RunOnce(ctx, opts, out); err != nil {
			logger.Error("Run failed", "chain", opts.ChainID, "err", err)
		}
	}
	runIteration()

	for {
		select {
		case <-ctx.Done():
			printSystemMessage(out, "Watcher stopped.")
			return nil
		case id, ok := <-events:
			if !ok {
				return nil
			}
			if id != opts.ChainID {
				continue
			}
			if !drain(ctx, events) {
				printSystemMessage(out, "Watcher stopped.")
				return nil
			}
			logger.Info("Chain changed, running again", "chain", id)
			printSystemMessage(out, "'%s' changed.", id)
			runIteration()
		}
	}
}

// drain swallows events until none arrive for the settle period. It reports
// false when ctx ended meanwhile.
func drain(ctx context.Context, events <-chan string) bool {
	timer := time.NewTimer(settle)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
			return true
		case _, ok := <-events:
			if !ok {
				return true
			}
			timer.Reset(settle)
		}
	}
}
