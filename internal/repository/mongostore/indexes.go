package mongostore

import (
	"context"
	"errors"
)

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// EnsureAll creates the indexes of every store and reports all failures together.
func EnsureAll(ctx context.Context, stores ...indexer) error {
	var errs []error
	for _, s := range stores {
		if err := s.EnsureIndexes(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
