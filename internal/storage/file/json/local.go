package json

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/drakos74/tsml-experiments/internal/model"
	"github.com/drakos74/tsml-experiments/internal/storage"
)

// LocalShard creates in-memory storages, mostly for tests and dry runs.
func LocalShard() storage.Shard {
	return func(root string) (storage.Persistence, error) {
		return NewLocalStorage(), nil
	}
}

// LocalStorage keeps the json encoded values in memory.
type LocalStorage struct {
	files map[model.Key]string
	mutex *sync.RWMutex
}

// NewLocalStorage creates a new in-memory storage.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		files: make(map[model.Key]string),
		mutex: new(sync.RWMutex),
	}
}

func (l LocalStorage) Store(k model.Key, value interface{}) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	bb, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("could not marshal value: %w", err)
	}

	l.files[k] = string(bb)
	return nil
}

func (l LocalStorage) Load(k model.Key, value interface{}) error {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	if v, ok := l.files[k]; ok {
		err := json.Unmarshal([]byte(v), value)
		if err != nil {
			return fmt.Errorf("could not unmarshal value: %v: %w", err, storage.CouldNotLoadErr)
		}
		return nil
	}
	return fmt.Errorf("file not found: %s: %w", k.ToString(), storage.NotFoundErr)
}
