package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/drakos74/tsml-experiments/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, os.ModePerm))
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestLoadSplit(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "Chinatown")
	writeFile(t, dir, "Chinatown_TRAIN.ts", univariate)
	writeFile(t, dir, "Chinatown_TEST.ts", univariate)

	split, err := LoadSplit(root, "Chinatown", 0, false)
	require.NoError(t, err)
	assert.Equal(t, 3, split.Train.Size())
	assert.Equal(t, 3, split.Test.Size())
	assert.Equal(t, "Chinatown", split.Train.Name)

	_, err = LoadSplit(root, "Chinatown", 2, true)
	assert.ErrorIs(t, err, ErrNotFound)

	writeFile(t, dir, "Chinatown2_TRAIN.ts", univariate)
	writeFile(t, dir, "Chinatown2_TEST.ts", univariate)
	split, err = LoadSplit(root, "Chinatown", 2, true)
	require.NoError(t, err)
	assert.Equal(t, 3, split.Train.Size())

	_, err = LoadSplit(root, "ArrowHead", 0, false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadSplit_CSV(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "Iris")
	content := "5.1,3.5,1.4,0.2,setosa\n4.9,3.0,1.4,0.2,setosa\n7.0,3.2,4.7,1.4,versicolor\n"
	writeFile(t, dir, "Iris_TRAIN.csv", content)
	writeFile(t, dir, "Iris_TEST.csv", content)

	split, err := LoadSplit(root, "Iris", 0, false)
	require.NoError(t, err)
	assert.Equal(t, 3, split.Train.Size())
	assert.Equal(t, 4, split.Train.Length)
	assert.Equal(t, []string{"setosa", "setosa", "versicolor"}, split.Train.Y)
	assert.InDelta(t, 7.0, split.Train.X[2][0], 1e-9)
}

func TestNpy_Export(t *testing.T) {
	root := t.TempDir()
	ds := model.Dataset{
		Name: "exported",
		X:    [][]float64{{1, 2, 3}, {4, 5, 6}},
		Y:    []string{"0", "1.5"},
	}
	fileName := filepath.Join(root, "exported_TRAIN.npy")
	require.NoError(t, WriteNpy(fileName, ds))

	loaded, err := Read(fileName)
	require.NoError(t, err)
	assert.Equal(t, ds.X, loaded.X)
	assert.Equal(t, ds.Y, loaded.Y)
	assert.Equal(t, 3, loaded.Length)

	ds.Y[0] = "red"
	assert.Error(t, WriteNpy(fileName, ds))
}

func TestRead_Unsupported(t *testing.T) {
	_, err := Read("dataset.arff")
	assert.ErrorIs(t, err, ErrUnsupportedExt)
}

func TestRead_OpenErrors(t *testing.T) {
	dir := t.TempDir()
	regular := writeFile(t, dir, "Chinatown_TRAIN.ts", univariate)

	_, err := ReadTS(filepath.Join(dir, "missing.ts"))
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = ReadNpy(filepath.Join(dir, "missing.npy"))
	assert.ErrorIs(t, err, ErrNotFound)

	// a path below a regular file exists as a name but cannot be opened
	_, err = ReadTS(filepath.Join(regular, "x.ts"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	_, err = ReadNpy(filepath.Join(regular, "x.npy"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
