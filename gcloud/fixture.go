package gcloud

import (
	"context"

	"github.com/pkg/errors"
)

// NewFixture in memory metadata for tests.
func NewFixture(values map[string]string) *Fixture {
	return &Fixture{Values: values}
}

// Fixture implements Metadata from a fixed set of values, recording every
// lookup it serves.
type Fixture struct {
	Values  map[string]string
	Lookups []string
}

func (t *Fixture) Get(ctx context.Context, suffix string) (string, error) {
	t.Lookups = append(t.Lookups, suffix)

	if v, ok := t.Values[suffix]; ok {
		return v, nil
	}

	return "", errors.Errorf("metadata lookup failed: %s", suffix)
}
