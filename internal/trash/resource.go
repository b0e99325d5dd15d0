package trash

import (
	"context"
	"time"

	"gorm.io/gorm"

	"gorm-trashbin/pkg/softdelete"
)

// TrashedRecord is the resource-agnostic view of a row sitting in the trash.
type TrashedRecord struct {
	ID        string     `json:"id"`
	Label     string     `json:"label"`
	DeletedAt *time.Time `json:"deleted_at"`
}

// Resource exposes one soft-deletable model to the trash service without the
// service knowing the concrete type.
type Resource interface {
	// Name identifies the resource in API paths and audit events.
	Name() string
	// ActiveCount counts rows visible to the default manager.
	ActiveCount(ctx context.Context) (int64, error)
	// TrashedCount counts rows currently in the trash.
	TrashedCount(ctx context.Context) (int64, error)
	// ListTrashed pages through trashed rows, newest deletions first.
	ListTrashed(ctx context.Context, offset, limit int) ([]TrashedRecord, int64, error)
	// Restore clears the deletion marker on the given rows.
	Restore(ctx context.Context, ids []string) (int64, error)
	// Purge permanently deletes the given rows. Only trashed rows are
	// eligible; active rows in ids are left alone.
	Purge(ctx context.Context, ids []string) (int64, error)
	// PurgeOlderThan permanently deletes rows trashed before the cutoff.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Trashable constrains PT to a pointer to T that satisfies the soft-delete
// record contract, which any model embedding softdelete.Model does.
type Trashable[T any] interface {
	*T
	softdelete.Record
}

// ModelResource adapts one soft-deletable model type to the Resource
// interface using the model's default and unfiltered managers.
type ModelResource[T any, PT Trashable[T]] struct {
	name    string
	objects *softdelete.Manager[T]
	all     *softdelete.Manager[T]
	label   func(*T) string
}

// NewResource builds a Resource for T. The label function renders a short
// human-readable description of a row for trash listings.
func NewResource[T any, PT Trashable[T]](name string, db *gorm.DB, label func(*T) string) *ModelResource[T, PT] {
	return &ModelResource[T, PT]{
		name:    name,
		objects: softdelete.Objects[T](db),
		all:     softdelete.AllObjects[T](db),
		label:   label,
	}
}

func (r *ModelResource[T, PT]) Name() string {
	return r.name
}

func (r *ModelResource[T, PT]) ActiveCount(ctx context.Context) (int64, error) {
	return r.objects.Query(ctx).Count()
}

func (r *ModelResource[T, PT]) TrashedCount(ctx context.Context) (int64, error) {
	return r.trashed(ctx).Count()
}

func (r *ModelResource[T, PT]) ListTrashed(ctx context.Context, offset, limit int) ([]TrashedRecord, int64, error) {
	total, err := r.trashed(ctx).Count()
	if err != nil {
		return nil, 0, err
	}

	records, err := r.trashed(ctx).
		Order(softdelete.DeletedAtColumn + " DESC").
		Offset(offset).
		Limit(limit).
		Find()
	if err != nil {
		return nil, 0, err
	}

	out := make([]TrashedRecord, 0, len(records))
	for i := range records {
		record := PT(&records[i])
		entry := TrashedRecord{
			ID:        record.PrimaryKey(),
			DeletedAt: record.DeletedTime(),
		}
		if r.label != nil {
			entry.Label = r.label(&records[i])
		}
		out = append(out, entry)
	}
	return out, total, nil
}

func (r *ModelResource[T, PT]) Restore(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.all.DB(ctx).
		Where("id IN ?", ids).
		Where(softdelete.DeletedAtColumn+" IS NOT NULL").
		Update(softdelete.DeletedAtColumn, nil)
	return result.RowsAffected, result.Error
}

func (r *ModelResource[T, PT]) Purge(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return r.trashed(ctx).Where("id IN ?", ids).Delete(true)
}

func (r *ModelResource[T, PT]) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.trashed(ctx).Where(softdelete.DeletedAtColumn+" < ?", cutoff).Delete(true)
}

// trashed starts a query over rows carrying a deletion marker.
func (r *ModelResource[T, PT]) trashed(ctx context.Context) *softdelete.QuerySet[T] {
	return r.all.Query(ctx).Where(softdelete.DeletedAtColumn + " IS NOT NULL")
}
