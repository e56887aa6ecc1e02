package store

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
)

// Migrate initializes the schema on first use. An already-initialized
// database is left untouched.
func (s *Store) Migrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check if database is initialized")
	}
	if initialized {
		return nil
	}

	slog.Info("initializing new database", slog.String("driver", s.profile.Driver))
	if err := s.driver.Migrate(ctx); err != nil {
		return errors.Wrap(err, "failed to apply schema")
	}
	return nil
}
