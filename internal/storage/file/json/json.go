package json

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/drakos74/tsml-experiments/internal/model"
	"github.com/drakos74/tsml-experiments/internal/results"
	"github.com/drakos74/tsml-experiments/internal/storage"
	"github.com/rs/zerolog/log"
)

// BlobStorage stores one json file per experiment next to its predictions,
// under <root>/<estimator>/Workspace/<dataset>/resample<id>.json.
type BlobStorage struct {
	root  string
	debug bool
}

// WorkspaceShard creates json blob storages for the given results root.
func WorkspaceShard(debug bool) storage.Shard {
	return func(root string) (storage.Persistence, error) {
		return NewJsonBlob(root, debug), nil
	}
}

// NewJsonBlob creates a new json blob storage under the given root.
func NewJsonBlob(root string, debug bool) *BlobStorage {
	return &BlobStorage{
		root:  root,
		debug: debug,
	}
}

func (s BlobStorage) dir(k model.Key) string {
	return filepath.Join(s.root, k.Estimator, results.WorkspaceDir, k.Dataset)
}

func (s BlobStorage) Store(k model.Key, value interface{}) error {
	p := s.dir(k)
	err := Save(p, storage.FileName(k), value)
	if err == nil && s.debug {
		log.Debug().Str("path", p).Str("file", storage.FileName(k)).Msg("stored json file")
	}
	return err
}

func (s BlobStorage) Load(k model.Key, value interface{}) error {
	return Load(s.dir(k), storage.FileName(k), value)
}

// Save saves the given json struct into the given path with the provided filename.
func Save(filePath string, fileName string, value interface{}) error {
	// check if filepath exists
	info, err := os.Stat(filePath)
	if err != nil {
		err := os.MkdirAll(filePath, os.ModePerm)
		if err != nil {
			return fmt.Errorf("could not make dir: %s: %w", filePath, err)
		}
	} else if !info.IsDir() {
		return fmt.Errorf("path given is not a directory: %s", filePath)
	}

	b, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode value for '%s': %w", fileName, err)
	}

	p := filepath.Join(filePath, fmt.Sprintf("%s.json", fileName))
	if err := ioutil.WriteFile(p, b, 0644); err != nil {
		return fmt.Errorf("could not write file '%s': %w", p, err)
	}
	return nil
}

// Load loads the payload from the given filePath and fileName.
func Load(filePath string, fileName string, value interface{}) error {
	p := filepath.Join(filePath, fmt.Sprintf("%s.json", fileName))

	data, err := ioutil.ReadFile(p)
	if err != nil {
		return fmt.Errorf("could not read file '%s' %s: %w", p, err.Error(), storage.NotFoundErr)
	}

	err = json.Unmarshal(data, value)
	if err != nil {
		return fmt.Errorf("could not unmarshal '%s': %v: %w", p, err, storage.CouldNotLoadErr)
	}

	return nil
}
