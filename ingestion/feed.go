package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/seeker/ai"
	"github.com/poiesic/seeker/core"
)

// Indexer receives finished documents. The engine facade implements it.
type Indexer interface {
	Index(doc *core.Document) error
}

// Feed accepts document batches from adapters, enriches them with embeddings
// on a worker pool, and hands them to the indexer. An embedding failure
// degrades the batch to lexical-only documents; it never drops them.
type Feed struct {
	indexer  Indexer
	embedder ai.Embedder
	pool     *ants.Pool
	wg       sync.WaitGroup
	logger   *slog.Logger
}

// Option configures a Feed.
type Option func(*Feed) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(f *Feed) error {
		if size < 1 {
			size = 1
		}

		if f.pool != nil {
			f.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		f.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Feed) error {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
		return nil
	}
}

// NewFeed creates an ingestion feed writing to the given indexer.
func NewFeed(indexer Indexer, embedder ai.Embedder, opts ...Option) (*Feed, error) {
	if indexer == nil {
		return nil, ErrIndexerRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	f := &Feed{
		indexer:  indexer,
		embedder: embedder,
		pool:     pool,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(f); optErr != nil {
			f.Release()
			return nil, optErr
		}
	}

	return f, nil
}

// Ingest submits a batch of documents for embedding and indexing. The batch
// is processed asynchronously; processing errors are logged, never returned.
// Call Wait to block until all submitted batches are indexed.
func (f *Feed) Ingest(ctx context.Context, docs ...*core.Document) error {
	if len(docs) == 0 {
		return nil
	}

	batch := make([]*core.Document, len(docs))
	for i, doc := range docs {
		batch[i] = doc.Clone()
	}

	f.wg.Add(1)
	return f.pool.Submit(func() {
		defer f.wg.Done()
		f.processBatch(ctx, batch)
	})
}

func (f *Feed) processBatch(ctx context.Context, batch []*core.Document) {
	f.logger.Info("processing document batch", "documents", len(batch))

	texts := make([]string, len(batch))
	for i, doc := range batch {
		texts[i] = doc.SearchableText()
	}

	vectors, err := f.embedder.EmbedTexts(ctx, texts)
	switch {
	case err != nil:
		// Lexical strategies still work without vectors; index anyway.
		f.logger.Error("error generating embeddings, indexing without vectors", "err", err)
	case len(vectors) != len(batch):
		f.logger.Error("embedding result mismatch, indexing without vectors",
			"expected", len(batch), "received", len(vectors))
	default:
		for i := range vectors {
			batch[i].Vector = vectors[i]
		}
	}

	for _, doc := range batch {
		if err := f.indexer.Index(doc); err != nil {
			f.logger.Error("error indexing document", "id", doc.ID, "err", err)
		}
	}
}

// Wait blocks until every batch submitted so far has been processed.
func (f *Feed) Wait() {
	f.wg.Wait()
}

// Release releases the worker pool.
// The feed should not be used after calling Release.
func (f *Feed) Release() {
	if f.pool != nil {
		f.pool.Release()
	}
}
