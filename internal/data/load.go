package data

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/drakos74/tsml-experiments/internal/model"
	"github.com/rs/zerolog/log"
)

const (
	TrainSuffix = "_TRAIN"
	TestSuffix  = "_TEST"
)

// Reader reads a dataset from a file.
type Reader func(fileName string) (model.Dataset, error)

// readers are tried in this order when resolving a dataset file.
var readers = []struct {
	ext  string
	read Reader
}{
	{ext: ".ts", read: ReadTS},
	{ext: ".csv", read: ReadCSV},
	{ext: ".npy", read: ReadNpy},
}

// Read reads the dataset from the given file based on its extension.
func Read(fileName string) (model.Dataset, error) {
	ext := filepath.Ext(fileName)
	for _, r := range readers {
		if r.ext == ext {
			return r.read(fileName)
		}
	}
	return model.Dataset{}, fmt.Errorf("'%s': %w", fileName, ErrUnsupportedExt)
}

// Files returns the train and test file names for the given problem,
// e.g. <problemPath>/<dataset>/<dataset>_TRAIN.ts.
// For predefined resamples the resample id is appended to the dataset name.
func Files(problemPath, dataset string, resampleID int, predefined bool) (string, string, error) {
	name := dataset
	if predefined {
		name = dataset + strconv.Itoa(resampleID)
	}
	dir := filepath.Join(problemPath, dataset)
	for _, r := range readers {
		train := filepath.Join(dir, name+TrainSuffix+r.ext)
		test := filepath.Join(dir, name+TestSuffix+r.ext)
		if exists(train) && exists(test) {
			return train, test, nil
		}
	}
	return "", "", fmt.Errorf("no train/test files for '%s' in '%s': %w", name, dir, ErrNotFound)
}

// LoadSplit loads the train and test split of a problem as stored on disk.
func LoadSplit(problemPath, dataset string, resampleID int, predefined bool) (model.Split, error) {
	trainFile, testFile, err := Files(problemPath, dataset, resampleID, predefined)
	if err != nil {
		return model.Split{}, err
	}
	train, err := Read(trainFile)
	if err != nil {
		return model.Split{}, fmt.Errorf("could not load train data: %w", err)
	}
	test, err := Read(testFile)
	if err != nil {
		return model.Split{}, fmt.Errorf("could not load test data: %w", err)
	}
	train.Name = dataset
	test.Name = dataset
	if train.Size() > 0 && test.Size() > 0 && len(train.X[0]) != len(test.X[0]) {
		return model.Split{}, fmt.Errorf("train has %d values per case, test has %d: %w",
			len(train.X[0]), len(test.X[0]), ErrUnequalLength)
	}
	log.Debug().
		Str("dataset", dataset).
		Str("train", trainFile).
		Str("test", testFile).
		Int("train-cases", train.Size()).
		Int("test-cases", test.Size()).
		Int("dimensions", train.Dimensions).
		Int("length", train.Length).
		Msg("loaded split")
	return model.Split{Train: train, Test: test}, nil
}

func exists(fileName string) bool {
	info, err := os.Stat(fileName)
	return err == nil && !info.IsDir()
}
