package config

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Load loads the config file into v, the format is picked by the file extension.
func Load(fileName string, v interface{}) ([]byte, error) {
	b, err := ioutil.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("could not load config '%s': %w", fileName, err)
	}

	switch ext := strings.ToLower(filepath.Ext(fileName)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, v)
	case ".json":
		err = json.Unmarshal(b, v)
	default:
		return nil, fmt.Errorf("unsupported config format '%s' for '%s'", ext, fileName)
	}
	if err != nil {
		return nil, fmt.Errorf("could not unmarshal the config '%s': %w", fileName, err)
	}

	log.Info().Str("config", fileName).Msg("loaded config")
	return b, nil
}

// MustLoad loads the config file and panics if it cannot.
func MustLoad(fileName string, v interface{}) []byte {
	b, err := Load(fileName, v)
	if err != nil {
		panic(err.Error())
	}
	return b
}
