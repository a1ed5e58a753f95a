package spanbase

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/spanbase/core"
	"github.com/poiesic/spanbase/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabase(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		db, err := NewDatabase(tmpDir)
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		// Verify components are initialized
		assert.NotNil(t, db.ContextRepository())
		assert.NotNil(t, db.CandidateRepository())
		assert.NotNil(t, db.backend)
		assert.NotNil(t, db.logger)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// Try to create a database at a file path instead of directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		db, err := NewDatabase(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}

func TestDatabase_Close(t *testing.T) {
	db, err := NewDatabase("", WithInMemory())
	require.NoError(t, err)
	require.NotNil(t, db)

	err = db.Close()
	assert.NoError(t, err)
}

func TestDatabase_EndToEnd(t *testing.T) {
	db, err := NewDatabase("", WithInMemory())
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	sentence := core.NewContext("The quick fox jumps", []int{0, 4, 10, 14}, map[string][]string{
		core.WordsAttribute: {"The", "quick", "fox", "jumps"},
	})
	_, err = db.ContextRepository().AddContexts(ctx, sentence)
	require.NoError(t, err)

	set, err := db.CreateCandidateSet(ctx, "train")
	require.NoError(t, err)

	g0, err := core.NewNgram(sentence, 0, 2)
	require.NoError(t, err)
	g1, err := core.NewNgram(sentence, 10, 12)
	require.NoError(t, err)

	c0, err := db.AddNgram(ctx, set, g0)
	require.NoError(t, err)
	c1, err := db.AddNgram(ctx, set, g1)
	require.NoError(t, err)

	pc, err := db.AddNgramPair(ctx, set, c0, c1)
	require.NoError(t, err)
	require.NotZero(t, pc.Id)

	loaded, err := db.CandidateRepository().GetCandidateSet(ctx, set.Id)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Len())

	got, err := db.CandidateRepository().GetCandidate(ctx, pc.Id)
	require.NoError(t, err)
	first, err := got.Pair.At(0)
	require.NoError(t, err)
	assert.Equal(t, "The", first.Ngram.Span(" "))
}

func TestDatabase_FactoryMethods(t *testing.T) {
	db, err := NewDatabase("", WithInMemory())
	require.NoError(t, err)
	defer db.Close()

	t.Run("can create extraction pipeline", func(t *testing.T) {
		pipeline, err := db.NewExtractionPipeline(extract.WithPoolSize(2))
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		pipeline.Release()
	})
}
