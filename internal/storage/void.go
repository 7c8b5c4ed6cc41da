package storage

import (
	"fmt"

	"github.com/drakos74/tsml-experiments/internal/model"
)

// VoidStorage is a noop storage
type VoidStorage struct {
}

func (d VoidStorage) Store(k model.Key, value interface{}) error {
	return nil
}

func (d VoidStorage) Load(k model.Key, value interface{}) error {
	return fmt.Errorf("not found '%v': %w", k.ToString(), NotFoundErr)
}

// NewVoidStorage creates a new noop storage
func NewVoidStorage() *VoidStorage {
	return &VoidStorage{}
}

// VoidShard creates a new noop shard
func VoidShard() Shard {
	return func(root string) (Persistence, error) {
		return NewVoidStorage(), nil
	}
}
