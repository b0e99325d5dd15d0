package softdelete

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	// ErrMissingPrimaryKey is returned by instance operations when the
	// record has no identifier to address the row by.
	ErrMissingPrimaryKey = errors.New("softdelete: record has no primary key")

	// ErrNilManager is returned by QuerySet.Restore when no manager was
	// supplied to perform the restore through.
	ErrNilManager = errors.New("softdelete: nil manager")
)

// Manager builds query sets for a single model type. The default manager
// returned by Objects hides soft-deleted rows from every query it produces;
// the companion returned by AllObjects sees the full table, deleted rows
// included. Both share the same query-set behaviour, so restores and purges
// are just queries issued through the right manager.
type Manager[T any] struct {
	db       *gorm.DB
	scoped   bool
	pkColumn string
	now      func() time.Time
}

type settings struct {
	pkColumn string
	now      func() time.Time
}

// Option adjusts manager construction.
type Option func(*settings)

// WithPrimaryKeyColumn overrides the column used to capture and address
// primary keys. The default is "id".
func WithPrimaryKeyColumn(column string) Option {
	return func(s *settings) {
		if column != "" {
			s.pkColumn = column
		}
	}
}

// WithClock overrides the time source used for deletion markers. Tests use
// this to pin timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// Objects returns the default manager for T. Every query it builds excludes
// rows whose deletion marker is set, so callers see only active records.
func Objects[T any](db *gorm.DB, opts ...Option) *Manager[T] {
	return newManager[T](db, true, opts)
}

// AllObjects returns the unfiltered manager for T. It sees active and
// deleted rows alike and is the handle administrative code uses to inspect,
// restore, or purge the trash.
func AllObjects[T any](db *gorm.DB, opts ...Option) *Manager[T] {
	return newManager[T](db, false, opts)
}

func newManager[T any](db *gorm.DB, scoped bool, opts []Option) *Manager[T] {
	s := settings{
		pkColumn: "id",
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return &Manager[T]{
		db:       db,
		scoped:   scoped,
		pkColumn: s.pkColumn,
		now:      s.now,
	}
}

// Query starts a query set carrying the manager's visibility rule.
func (m *Manager[T]) Query(ctx context.Context) *QuerySet[T] {
	return &QuerySet[T]{
		db:       m.scope(ctx),
		pkColumn: m.pkColumn,
		now:      m.now,
	}
}

// DB exposes the manager's scoped statement for callers that need to drop
// down to GORM directly, for example to count grouped results. The returned
// statement already carries the visibility rule and the model.
func (m *Manager[T]) DB(ctx context.Context) *gorm.DB {
	return m.scope(ctx)
}

func (m *Manager[T]) scope(ctx context.Context) *gorm.DB {
	var model T
	db := m.db.WithContext(ctx).Model(&model)
	if m.scoped {
		db = db.Where(DeletedAtColumn + " IS NULL")
	}
	return db
}

// SoftDelete stamps a single loaded record as deleted. The row is addressed
// by primary key, so the manager's visibility rule does not apply here.
func (m *Manager[T]) SoftDelete(ctx context.Context, record Record) error {
	if record == nil || record.PrimaryKey() == "" {
		return ErrMissingPrimaryKey
	}
	now := m.now()
	if err := m.db.WithContext(ctx).Model(record).Update(DeletedAtColumn, now).Error; err != nil {
		return err
	}
	record.MarkDeleted(now)
	return nil
}

// Delete removes a single loaded record. With permanently set the row is
// deleted from storage; otherwise the call is equivalent to SoftDelete.
func (m *Manager[T]) Delete(ctx context.Context, record Record, permanently bool) error {
	if !permanently {
		return m.SoftDelete(ctx, record)
	}
	if record == nil || record.PrimaryKey() == "" {
		return ErrMissingPrimaryKey
	}
	return m.db.WithContext(ctx).Delete(record).Error
}

// Restore clears the deletion marker on a single loaded record.
func (m *Manager[T]) Restore(ctx context.Context, record Record) error {
	if record == nil || record.PrimaryKey() == "" {
		return ErrMissingPrimaryKey
	}
	if err := m.db.WithContext(ctx).Model(record).Update(DeletedAtColumn, nil).Error; err != nil {
		return err
	}
	record.ClearDeleted()
	return nil
}
