package storage

import (
	"errors"
	"fmt"

	"github.com/drakos74/tsml-experiments/internal/model"
)

var (
	NotFoundErr     = errors.New("not found")
	CouldNotLoadErr = errors.New("could not load")
)

// Shard creates a new storage implementation for the given results root.
type Shard func(root string) (Persistence, error)

// Persistence stores and loads values for an experiment.
type Persistence interface {
	Store(k model.Key, value interface{}) error
	Load(k model.Key, value interface{}) error
}

// FileName is the name of the file holding the value of the given key.
func FileName(k model.Key) string {
	return fmt.Sprintf("resample%d", k.Resample)
}
