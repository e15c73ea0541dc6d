package ports

import (
	"context"

	"github.com/aretw0/actionchain/pkg/schema"
)

// ChainRepository defines how chain definitions are retrieved.
// This allows the storage layer (Loam, FS, Memory) to be decoupled.
type ChainRepository interface {
	// GetChain returns the definition stored under id.
	// It returns an error wrapping domain.ErrChainNotFound when no such chain exists.
	GetChain(ctx context.Context, id string) (*schema.ChainConfig, error)

	// ListChains returns the IDs of every stored chain definition.
	ListChains(ctx context.Context) ([]string, error)
}
