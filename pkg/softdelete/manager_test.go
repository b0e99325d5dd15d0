package softdelete

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestObjectsHideSoftDeletedRows(t *testing.T) {
	db := openSoftDeleteTestDB(t)
	records := seedArticles(t, db, "a", "b", "c")

	objects := Objects[article](db)
	all := AllObjects[article](db)
	ctx := context.Background()

	require.NoError(t, objects.SoftDelete(ctx, &records[0]))
	require.True(t, records[0].IsDeleted())

	visible, err := objects.Query(ctx).Count()
	require.NoError(t, err)
	require.Equal(t, int64(2), visible)

	total, err := all.Query(ctx).Count()
	require.NoError(t, err)
	require.Equal(t, int64(3), total)

	titles, err := objects.Query(ctx).Order("title").Find()
	require.NoError(t, err)
	require.Len(t, titles, 2)
	require.Equal(t, "b", titles[0].Title)
	require.Equal(t, "c", titles[1].Title)
}

func TestManagerInstanceOpsRequirePrimaryKey(t *testing.T) {
	db := openSoftDeleteTestDB(t)
	objects := Objects[article](db)
	ctx := context.Background()

	require.ErrorIs(t, objects.SoftDelete(ctx, &article{}), ErrMissingPrimaryKey)
	require.ErrorIs(t, objects.Restore(ctx, &article{}), ErrMissingPrimaryKey)
	require.ErrorIs(t, objects.Delete(ctx, &article{}, true), ErrMissingPrimaryKey)
	require.ErrorIs(t, objects.SoftDelete(ctx, nil), ErrMissingPrimaryKey)
}

func TestManagerDeleteDefaultsToSoftDelete(t *testing.T) {
	db := openSoftDeleteTestDB(t)
	records := seedArticles(t, db, "keepable")

	objects := Objects[article](db)
	all := AllObjects[article](db)
	ctx := context.Background()

	require.NoError(t, objects.Delete(ctx, &records[0], false))
	require.True(t, records[0].IsDeleted())

	stored, err := all.Query(ctx).First()
	require.NoError(t, err)
	require.NotNil(t, stored.DeletedAt)

	visible, err := objects.Query(ctx).Count()
	require.NoError(t, err)
	require.Equal(t, int64(0), visible)
}

func TestManagerDeletePermanentlyRemovesRow(t *testing.T) {
	db := openSoftDeleteTestDB(t)
	records := seedArticles(t, db, "gone")

	objects := Objects[article](db)
	all := AllObjects[article](db)
	ctx := context.Background()

	require.NoError(t, objects.Delete(ctx, &records[0], true))

	total, err := all.Query(ctx).Count()
	require.NoError(t, err)
	require.Equal(t, int64(0), total)

	_, err = all.Query(ctx).Where("id = ?", records[0].ID).First()
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestManagerRestoreClearsMarker(t *testing.T) {
	db := openSoftDeleteTestDB(t)
	records := seedArticles(t, db, "revivable")

	objects := Objects[article](db)
	ctx := context.Background()

	require.NoError(t, objects.SoftDelete(ctx, &records[0]))

	visible, err := objects.Query(ctx).Count()
	require.NoError(t, err)
	require.Equal(t, int64(0), visible)

	// Instance restore addresses the row by primary key, so it works even
	// through the manager whose queries hide the deleted row.
	require.NoError(t, objects.Restore(ctx, &records[0]))
	require.False(t, records[0].IsDeleted())

	visible, err = objects.Query(ctx).Count()
	require.NoError(t, err)
	require.Equal(t, int64(1), visible)
}

func TestManagerClockOverride(t *testing.T) {
	db := openSoftDeleteTestDB(t)
	records := seedArticles(t, db, "timed")

	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	objects := Objects[article](db, WithClock(func() time.Time { return fixed }))
	all := AllObjects[article](db)
	ctx := context.Background()

	require.NoError(t, objects.SoftDelete(ctx, &records[0]))

	stored, err := all.Query(ctx).Where("id = ?", records[0].ID).First()
	require.NoError(t, err)
	require.NotNil(t, stored.DeletedAt)
	require.WithinDuration(t, fixed, *stored.DeletedAt, time.Second)
}
