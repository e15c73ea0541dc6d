package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/actionchain/pkg/domain"
	"github.com/aretw0/actionchain/pkg/ports"
	"github.com/aretw0/actionchain/pkg/schema"
	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
)

// ChainPattern matches every file that can hold a chain definition.
const ChainPattern = "**/*.{md,json,yaml,yml}"

// Repository adapts a Loam repository of chain definitions to ports.ChainRepository.
// Each document holds one chain: the frontmatter of a Markdown file, or the
// whole body of a YAML or JSON file.
type Repository struct {
	Repo *loam.TypedRepository[schema.ChainConfig]
}

var _ ports.ChainRepository = (*Repository)(nil)

// New creates a new Loam adapter.
func New(repo core.Repository) *Repository {
	return &Repository{
		Repo: loam.NewTypedRepository[schema.ChainConfig](repo),
	}
}

// Open initializes a read-only Loam repository rooted at dir.
func Open(dir string) (*Repository, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(repo), nil
}

// GetChain retrieves a chain definition. Loam resolves ids without their
// extension, so "archive" finds archive.yaml.
func (r *Repository) GetChain(ctx context.Context, id string) (*schema.ChainConfig, error) {
	doc, err := r.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrChainNotFound, id, err)
	}

	cfg := doc.Data
	if cfg.Name == "" {
		cfg.Name = trimExtension(doc.ID)
	}
	if cfg.Description == "" {
		cfg.Description = strings.TrimSpace(doc.Content)
	}
	return &cfg, nil
}

// ListChains lists the ids of every chain in the repository, in lexical order.
func (r *Repository) ListChains(ctx context.Context) ([]string, error) {
	docs, err := r.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	ids := make([]string, 0, len(docs))

	for _, doc := range docs {
		id := trimExtension(doc.ID)

		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: chain '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Watch emits the id of every chain definition that changes until ctx ends.
func (r *Repository) Watch(ctx context.Context) (<-chan string, error) {
	events, err := r.Repo.Watch(ctx, ChainPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
