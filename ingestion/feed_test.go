package ingestion

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/poiesic/seeker/ai/mock"
	"github.com/poiesic/seeker/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureIndexer struct {
	mu   sync.Mutex
	docs []*core.Document
	err  error
}

func (c *captureIndexer) Index(doc *core.Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.docs = append(c.docs, doc)
	return nil
}

func (c *captureIndexer) byID(id string) *core.Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, doc := range c.docs {
		if doc.ID == id {
			return doc
		}
	}
	return nil
}

func TestNewFeed(t *testing.T) {
	t.Run("nil indexer", func(t *testing.T) {
		_, err := NewFeed(nil, mock.NewMockEmbedder())
		assert.Equal(t, ErrIndexerRequired, err)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewFeed(&captureIndexer{}, nil)
		assert.Equal(t, ErrEmbedderRequired, err)
	})
}

func TestFeedIngest(t *testing.T) {
	indexer := &captureIndexer{}
	embedder := mock.NewMockEmbedder()
	embedder.Dim = 8

	feed, err := NewFeed(indexer, embedder, WithPoolSize(2))
	require.NoError(t, err)
	defer feed.Release()

	require.NoError(t, feed.Ingest(context.Background(),
		&core.Document{ID: "a", Title: "Engineer"},
		&core.Document{ID: "b", Title: "Designer"},
	))
	feed.Wait()

	require.Len(t, indexer.docs, 2)
	for _, id := range []string{"a", "b"} {
		doc := indexer.byID(id)
		require.NotNil(t, doc)
		assert.Len(t, doc.Vector, 8, "document should carry an embedding")
	}
	assert.Equal(t, 1, embedder.CallCount(), "one batch, one embedding call")
}

func TestFeedIngestEmbeddingFailure(t *testing.T) {
	indexer := &captureIndexer{}
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(_ context.Context, _ []string) ([][]float32, error) {
		return nil, errors.New("provider unavailable")
	}

	feed, err := NewFeed(indexer, embedder)
	require.NoError(t, err)
	defer feed.Release()

	require.NoError(t, feed.Ingest(context.Background(), &core.Document{ID: "a", Title: "Engineer"}))
	feed.Wait()

	// The document is still indexed, just without a vector.
	doc := indexer.byID("a")
	require.NotNil(t, doc)
	assert.Empty(t, doc.Vector)
}

func TestFeedIngestClonesInput(t *testing.T) {
	indexer := &captureIndexer{}
	feed, err := NewFeed(indexer, mock.NewMockEmbedder())
	require.NoError(t, err)
	defer feed.Release()

	original := &core.Document{ID: "a", Title: "Engineer", Requirements: []string{"go"}}
	require.NoError(t, feed.Ingest(context.Background(), original))
	original.Requirements[0] = "mutated"
	feed.Wait()

	doc := indexer.byID("a")
	require.NotNil(t, doc)
	assert.Equal(t, []string{"go"}, doc.Requirements)
}
