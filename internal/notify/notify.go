// Package notify delivers match notifications to users.
package notify

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/lostfound/internal/matching"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

var (
	_ matching.Notifier = (*StoreSink)(nil)
	_ matching.Notifier = (*NtfySink)(nil)
	_ matching.Notifier = Multi(nil)
)

// StoreSink persists notifications in the user's in-app inbox.
type StoreSink struct {
	db *sql.DB
}

// NewStoreSink returns a sink writing to db.
func NewStoreSink(db *sql.DB) *StoreSink {
	return &StoreSink{db: db}
}

func (s *StoreSink) Notify(ctx context.Context, n model.Notification) error {
	if _, err := store.CreateNotification(ctx, s.db, &n); err != nil {
		return fmt.Errorf("storing notification: %w", err)
	}
	return nil
}

// Multi sends each notification to every sink. All sinks are tried; their
// errors are joined.
type Multi []matching.Notifier

func (m Multi) Notify(ctx context.Context, n model.Notification) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
