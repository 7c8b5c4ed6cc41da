package model

import (
	"fmt"
	"strconv"
	"strings"
)

const delimiter = "|"

// Kind is the learning task an experiment runs.
type Kind string

const (
	Classification Kind = "classification"
	Regression     Kind = "regression"
	Clustering     Kind = "clustering"
)

// ParseKind resolves the kind from its name or the cli verb used for it.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "classification", "classify", "classifier":
		return Classification, nil
	case "regression", "regress", "regressor":
		return Regression, nil
	case "clustering", "cluster", "clusterer":
		return Clustering, nil
	}
	return "", fmt.Errorf("unknown experiment kind '%s'", s)
}

// Key characterises a single experiment e.g. one estimator on one resample of one dataset.
type Key struct {
	Kind      Kind
	Estimator string
	Dataset   string
	Resample  int
}

// NewKey creates a new experiment key.
func NewKey(kind Kind, estimator, dataset string, resample int) Key {
	return Key{
		Kind:      kind,
		Estimator: estimator,
		Dataset:   dataset,
		Resample:  resample,
	}
}

// ToString creates a string representation of the key.
func (k Key) ToString() string {
	return fmt.Sprintf("%s%s%s%s%s%s%d",
		k.Kind, delimiter,
		k.Estimator, delimiter,
		k.Dataset, delimiter,
		k.Resample)
}

// NewKeyFromString parses back a key created with ToString.
func NewKeyFromString(s string) (Key, error) {
	parts := strings.Split(s, delimiter)
	if len(parts) != 4 {
		return Key{}, fmt.Errorf("could not de-correlate '%s'", s)
	}
	kind, err := ParseKind(parts[0])
	if err != nil {
		return Key{}, fmt.Errorf("could not de-correlate '%s': %w", s, err)
	}
	r, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return Key{}, fmt.Errorf("could not de-correlate '%s': %w", s, err)
	}
	return Key{
		Kind:      kind,
		Estimator: parts[1],
		Dataset:   parts[2],
		Resample:  int(r),
	}, nil
}

// MarshalText encodes the key with ToString, e.g. for json run records.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.ToString()), nil
}

// UnmarshalText decodes a key written by MarshalText.
func (k *Key) UnmarshalText(text []byte) error {
	key, err := NewKeyFromString(string(text))
	if err != nil {
		return err
	}
	*k = key
	return nil
}
