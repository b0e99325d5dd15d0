package softdelete

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// QuerySet is a chainable query over T. It is obtained from a Manager and
// inherits that manager's visibility rule; chain methods narrow the query in
// place and finishers execute it. A query set additionally remembers the
// primary keys of rows it soft-deleted, so the same object can restore them
// later through a manager that sees deleted rows.
type QuerySet[T any] struct {
	db         *gorm.DB
	pkColumn   string
	now        func() time.Time
	deletedPKs []string
}

// Where adds a condition. Conditions accumulate with AND semantics.
func (qs *QuerySet[T]) Where(query any, args ...any) *QuerySet[T] {
	qs.db = qs.db.Where(query, args...)
	return qs
}

// Order adds an ordering clause.
func (qs *QuerySet[T]) Order(value any) *QuerySet[T] {
	qs.db = qs.db.Order(value)
	return qs
}

// Limit caps the number of rows returned by Find.
func (qs *QuerySet[T]) Limit(limit int) *QuerySet[T] {
	qs.db = qs.db.Limit(limit)
	return qs
}

// Offset skips rows before returning results.
func (qs *QuerySet[T]) Offset(offset int) *QuerySet[T] {
	qs.db = qs.db.Offset(offset)
	return qs
}

// session returns an executable statement carrying the accumulated
// conditions. Finishers each run on their own session so the query set can
// execute more than once, for example Count followed by Find.
func (qs *QuerySet[T]) session() *gorm.DB {
	return qs.db.Session(&gorm.Session{})
}

// Find returns all matching rows.
func (qs *QuerySet[T]) Find() ([]T, error) {
	var records []T
	if err := qs.session().Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// First returns the first matching row ordered by primary key. It passes
// gorm.ErrRecordNotFound through when nothing matches.
func (qs *QuerySet[T]) First() (*T, error) {
	var record T
	if err := qs.session().First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// Count returns the number of matching rows.
func (qs *QuerySet[T]) Count() (int64, error) {
	var count int64
	if err := qs.session().Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// PrimaryKeys returns the identifiers of all matching rows.
func (qs *QuerySet[T]) PrimaryKeys() ([]string, error) {
	var pks []string
	if err := qs.session().Pluck(qs.pkColumn, &pks).Error; err != nil {
		return nil, err
	}
	return pks, nil
}

// SoftDelete stamps every matching row as deleted and returns the number of
// rows updated. Before updating it captures the matching primary keys on the
// query set, so a later Restore on this same object can undo the operation.
// If either step fails the captured keys are discarded and the storage error
// is returned unchanged.
func (qs *QuerySet[T]) SoftDelete() (int64, error) {
	var pks []string
	if err := qs.session().Pluck(qs.pkColumn, &pks).Error; err != nil {
		qs.deletedPKs = nil
		return 0, err
	}
	result := qs.session().Update(DeletedAtColumn, qs.now())
	if result.Error != nil {
		qs.deletedPKs = nil
		return 0, result.Error
	}
	qs.deletedPKs = pks
	return result.RowsAffected, nil
}

// Restore clears the deletion marker on the rows this query set previously
// soft-deleted. The update runs through via, which must be a manager that
// sees deleted rows, typically AllObjects: the default manager's queries
// exclude them, so restoring through it would match nothing. Calling Restore
// when nothing was captured is a no-op. The captured keys are kept on
// failure and cleared once the restore succeeds.
func (qs *QuerySet[T]) Restore(ctx context.Context, via *Manager[T]) (int64, error) {
	if len(qs.deletedPKs) == 0 {
		return 0, nil
	}
	if via == nil {
		return 0, ErrNilManager
	}
	result := via.DB(ctx).Where(qs.pkColumn+" IN ?", qs.deletedPKs).Update(DeletedAtColumn, nil)
	if result.Error != nil {
		return 0, result.Error
	}
	qs.deletedPKs = nil
	return result.RowsAffected, nil
}

// Delete removes every matching row. With permanently set the rows are
// deleted from storage and cannot be restored; otherwise the call soft
// deletes, capturing primary keys exactly like SoftDelete.
func (qs *QuerySet[T]) Delete(permanently bool) (int64, error) {
	if !permanently {
		return qs.SoftDelete()
	}
	var model T
	result := qs.session().Delete(&model)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// DeletedPrimaryKeys returns a copy of the primary keys captured by the last
// successful SoftDelete on this query set.
func (qs *QuerySet[T]) DeletedPrimaryKeys() []string {
	if len(qs.deletedPKs) == 0 {
		return nil
	}
	out := make([]string, len(qs.deletedPKs))
	copy(out, qs.deletedPKs)
	return out
}
