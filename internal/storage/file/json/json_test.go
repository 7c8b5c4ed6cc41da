package json

import (
	"path/filepath"
	"testing"

	"github.com/drakos74/tsml-experiments/internal/model"
	"github.com/drakos74/tsml-experiments/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

func TestBlobStorage(t *testing.T) {
	root := t.TempDir()
	store := NewJsonBlob(root, true)
	k := model.NewKey(model.Classification, "1nn", "Chinatown", 2)

	var r record
	err := store.Load(k, &r)
	assert.ErrorIs(t, err, storage.NotFoundErr)

	require.NoError(t, store.Store(k, record{ID: "abc", Score: 0.5}))
	assert.FileExists(t, filepath.Join(root, "1nn", "Workspace", "Chinatown", "resample2.json"))

	require.NoError(t, store.Load(k, &r))
	assert.Equal(t, record{ID: "abc", Score: 0.5}, r)
}

func TestLocalStorage(t *testing.T) {
	shard := LocalShard()
	store, err := shard("ignored")
	require.NoError(t, err)
	k := model.NewKey(model.Regression, "ridge", "Covid3Month", 0)

	var r record
	assert.ErrorIs(t, store.Load(k, &r), storage.NotFoundErr)
	require.NoError(t, store.Store(k, record{ID: "x", Score: 1}))
	require.NoError(t, store.Load(k, &r))
	assert.Equal(t, "x", r.ID)
}
