package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/actionchain"
	"github.com/aretw0/actionchain/pkg/schema"
)

// Validate checks the chain structure and that every action type is known.
// Each problem is listed on its own line before the error is returned.
func Validate(ctx context.Context, opts RunOptions, out io.Writer) error {
	cfg, err := LoadChain(ctx, opts)
	if err != nil {
		return err
	}

	reg, err := NewRegistry(opts)
	if err != nil {
		return err
	}
	if _, err := actionchain.Build(cfg, reg); err != nil {
		problems := schema.ValidationErrors(err)
		if len(problems) == 0 {
			problems = []error{err}
		}
		for _, p := range problems {
			fmt.Fprintf(out, "  - %v\n", p)
		}
		return fmt.Errorf("%d problem(s) found", len(problems))
	}
	return nil
}
