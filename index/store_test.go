package index

import (
	"testing"

	"github.com/poiesic/seeker/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePutGet(t *testing.T) {
	s := NewStore()

	doc := &core.Document{ID: "job-1", Title: "Software Engineer"}
	require.NoError(t, s.Put(doc))

	got, err := s.Get("job-1")
	require.NoError(t, err)
	assert.Equal(t, "Software Engineer", got.Title)

	t.Run("stored copy is isolated from caller mutation", func(t *testing.T) {
		doc.Title = "mutated"
		got, err := s.Get("job-1")
		require.NoError(t, err)
		assert.Equal(t, "Software Engineer", got.Title)
	})
}

func TestStorePutMissingID(t *testing.T) {
	s := NewStore()
	err := s.Put(&core.Document{Title: "no id"})
	assert.ErrorIs(t, err, core.ErrMissingID)
	assert.Zero(t, s.Len())
}

func TestStoreGetMissing(t *testing.T) {
	s := NewStore()
	_, err := s.Get("nope")
	assert.ErrorIs(t, err, core.ErrDocumentNotFound)
}

func TestStoreDelete(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Put(&core.Document{ID: "a"}))
	require.NoError(t, s.Put(&core.Document{ID: "b"}))

	s.Delete("a")
	assert.Equal(t, 1, s.Len())

	docs := s.All()
	require.Len(t, docs, 1)
	assert.Equal(t, "b", docs[0].ID)

	// Deleting twice is harmless.
	s.Delete("a")
}

func TestStoreAllInsertionOrder(t *testing.T) {
	s := NewStore()
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, s.Put(&core.Document{ID: id}))
	}

	docs := s.All()
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}
