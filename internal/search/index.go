package search

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/simmerapp/simmer-server/internal/domain"
	"github.com/simmerapp/simmer-server/internal/store"
)

var _ store.SearchIndexer = (*SearchIndex)(nil)

// mappingVersion changes whenever buildIndexMapping does. An index written
// under another version is discarded on open and must be repopulated.
const mappingVersion = "1"

const defaultBatchSize = 500

// SearchIndex is the Bleve index of published recipes. Methods are safe for concurrent use;
// Rebuild takes the write lock and blocks everything else while it swaps the index.
type SearchIndex struct {
	mu        sync.RWMutex
	index     bleve.Index
	path      string
	batchSize int
	logger    *slog.Logger
}

// Options configures the search index.
type Options struct {
	Dir       string       // Holds recipes.bleve and recipes.version
	BatchSize int          // Documents per batch in IndexAll, 500 when zero
	Logger    *slog.Logger // Discards output when nil
}

// NewSearchIndex opens the index under opts.Dir, creating it when missing.
// A corrupt index or one from an older mapping is replaced by an empty one;
// SearchService.ReindexIfEmpty repopulates it.
func NewSearchIndex(opts Options) (*SearchIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	batch := opts.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}
	path := filepath.Join(opts.Dir, "recipes.bleve")
	versionFile := filepath.Join(opts.Dir, "recipes.version")

	index, err := openCurrent(path, versionFile, logger)
	if err != nil {
		return nil, err
	}
	if index == nil {
		if index, err = create(path); err != nil {
			return nil, err
		}
		if err := os.WriteFile(versionFile, []byte(mappingVersion), 0o644); err != nil {
			logger.Warn("search version file not written", "error", err)
		}
		logger.Info("created search index", "path", path, "mapping_version", mappingVersion)
	}

	return &SearchIndex{index: index, path: path, batchSize: batch, logger: logger}, nil
}

// openCurrent opens the index at path if it exists and matches mappingVersion.
// It returns nil, nil when a fresh index is needed, after removing any stale one.
func openCurrent(path, versionFile string, logger *slog.Logger) (bleve.Index, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	version, _ := os.ReadFile(versionFile) //#nosec G304 -- inside the configured data dir
	if string(version) == mappingVersion {
		index, err := bleve.Open(path)
		if err == nil {
			logger.Info("opened search index", "path", path)
			return index, nil
		}
		logger.Warn("search index unreadable, recreating", "path", path, "error", err)
	} else {
		logger.Info("search mapping changed, recreating index",
			"old_version", string(version), "new_version", mappingVersion)
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove stale index: %w", err)
	}
	return nil, nil
}

func create(path string) (bleve.Index, error) {
	index, err := bleve.New(path, buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return index, nil
}

// Close closes the index and releases resources.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexRecipe adds or replaces a recipe in the index. Drafts are removed instead,
// so unpublishing or editing a draft never leaves it searchable.
func (s *SearchIndex) IndexRecipe(ctx context.Context, recipe *domain.Recipe, tags []string) error {
	if !recipe.IsPublished {
		return s.DeleteRecipe(ctx, recipe.ID)
	}
	return s.IndexDocument(RecipeToDocument(recipe, tags))
}

// DeleteRecipe removes a recipe from the index. Deleting an unknown ID is not an error.
func (s *SearchIndex) DeleteRecipe(_ context.Context, recipeID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(recipeID)
}

// IndexDocument indexes a single document.
func (s *SearchIndex) IndexDocument(doc *RecipeDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Index(doc.ID, doc.ToMap())
}

// IndexAll indexes every document from docs, committing a batch every BatchSize documents.
// It stops at the first error from docs or from Bleve and returns how many were committed.
func (s *SearchIndex) IndexAll(ctx context.Context, docs iter.Seq2[*RecipeDocument, error]) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	committed := 0
	batch := s.index.NewBatch()
	flush := func() error {
		if batch.Size() == 0 {
			return nil
		}
		n := batch.Size()
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch after %d documents: %w", committed, err)
		}
		committed += n
		batch.Reset()
		return nil
	}

	for doc, err := range docs {
		if err != nil {
			return committed, err
		}
		if err := ctx.Err(); err != nil {
			return committed, err
		}
		if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
			return committed, fmt.Errorf("batch index %s: %w", doc.ID, err)
		}
		if batch.Size() >= s.batchSize {
			if err := flush(); err != nil {
				return committed, err
			}
		}
	}
	return committed, flush()
}

// DocumentCount returns the total number of indexed documents.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild replaces the index with an empty one under the current mapping.
func (s *SearchIndex) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	if err := os.RemoveAll(s.path); err != nil {
		return fmt.Errorf("remove index: %w", err)
	}
	index, err := create(s.path)
	if err != nil {
		return err
	}
	s.index = index
	s.logger.Info("rebuilt search index", "path", s.path)
	return nil
}
