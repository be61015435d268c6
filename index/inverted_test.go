package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvertedAddAndLookup(t *testing.T) {
	ix := NewInverted()
	ix.Add("doc1", []string{"senior", "software", "engineer"})
	ix.Add("doc2", []string{"software", "tester"})

	t.Run("shared term posts both docs", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"doc1", "doc2"}, ix.Lookup("software"))
	})

	t.Run("unknown token yields empty set", func(t *testing.T) {
		assert.Empty(t, ix.Lookup("astronaut"))
	})

	t.Run("contains", func(t *testing.T) {
		assert.True(t, ix.Contains("engineer", "doc1"))
		assert.False(t, ix.Contains("engineer", "doc2"))
	})
}

func TestInvertedRemove(t *testing.T) {
	ix := NewInverted()
	ix.Add("doc1", []string{"senior", "engineer"})
	ix.Add("doc2", []string{"engineer"})

	ix.Remove("doc1")

	assert.Empty(t, ix.Lookup("senior"))
	assert.ElementsMatch(t, []string{"doc2"}, ix.Lookup("engineer"))
	assert.Empty(t, ix.DocTerms("doc1"))
}

func TestInvertedReAddReplacesTerms(t *testing.T) {
	ix := NewInverted()
	ix.Add("doc1", []string{"python", "backend"})
	ix.Add("doc1", []string{"golang", "backend"})

	// Stale terms from the first version must be retracted.
	assert.Empty(t, ix.Lookup("python"))
	assert.ElementsMatch(t, []string{"doc1"}, ix.Lookup("golang"))
	assert.ElementsMatch(t, []string{"doc1"}, ix.Lookup("backend"))
}

func TestInvertedDuplicateTokens(t *testing.T) {
	ix := NewInverted()
	ix.Add("doc1", []string{"engineer", "engineer", "engineer"})

	assert.Equal(t, []string{"engineer"}, ix.DocTerms("doc1"))
	assert.Equal(t, 1, ix.TermCount())
}
