package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"gorm-trashbin/internal/models"
	apperrors "gorm-trashbin/pkg/errors"
)

func TestUserServiceCreateAndGet(t *testing.T) {
	db := openServiceTestDB(t)
	svc, err := NewUserService(db, nil)
	require.NoError(t, err)

	ctx := context.Background()

	created, err := svc.Create(ctx, CreateUserInput{
		Username: "Maya",
		Email:    "  Maya@Example.COM ",
		Password: "password123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "maya@example.com", created.Email)
	require.True(t, created.IsActive)
	require.NotEqual(t, "password123", created.Password)

	loaded, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.Username, loaded.Username)

	_, err = svc.GetByID(ctx, "missing")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserServiceCreateRejectsDuplicates(t *testing.T) {
	db := openServiceTestDB(t)
	svc, err := NewUserService(db, nil)
	require.NoError(t, err)

	ctx := context.Background()

	_, err = svc.Create(ctx, CreateUserInput{Username: "dupe", Email: "dupe@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateUserInput{Username: "dupe", Email: "other@example.com", Password: "password123"})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperrors.ErrConflict.Code, appErr.Code)
}

func TestUserServiceAuthenticate(t *testing.T) {
	db := openServiceTestDB(t)
	svc, err := NewUserService(db, nil)
	require.NoError(t, err)

	ctx := context.Background()
	user := createTestUser(t, db, "login-user", false)

	authed, err := svc.Authenticate(ctx, "login-user", "password123")
	require.NoError(t, err)
	require.Equal(t, user.ID, authed.ID)
	require.NotNil(t, authed.LastLoginAt)

	// Email works as identifier too.
	_, err = svc.Authenticate(ctx, "login-user@example.com", "password123")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "login-user", "wrong-password")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "password123")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestUserServiceAuthenticateRejectsTrashedAndInactive(t *testing.T) {
	db := openServiceTestDB(t)
	svc, err := NewUserService(db, nil)
	require.NoError(t, err)

	ctx := context.Background()

	trashed := createTestUser(t, db, "trashed-user", false)
	require.NoError(t, svc.Delete(ctx, trashed.ID, false))

	_, err = svc.Authenticate(ctx, "trashed-user", "password123")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	inactive := createTestUser(t, db, "inactive-user", false)
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)

	_, err = svc.Authenticate(ctx, "inactive-user", "password123")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestUserServiceSoftDeleteHidesFromDefaultQueries(t *testing.T) {
	db := openServiceTestDB(t)
	events := newEventService(t, db)
	svc, err := NewUserService(db, events)
	require.NoError(t, err)

	ctx := context.Background()
	user := createTestUser(t, db, "vanishing", false)

	require.NoError(t, svc.Delete(ctx, user.ID, false))

	_, err = svc.GetByID(ctx, user.ID)
	require.ErrorIs(t, err, ErrUserNotFound)

	visible, _, err := svc.List(ctx, ListUsersOptions{})
	require.NoError(t, err)
	require.Empty(t, visible)

	all, total, err := svc.List(ctx, ListUsersOptions{Filters: UserFilters{IncludeDeleted: true}})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.NotNil(t, all[0].DeletedAt)

	require.Equal(t, int64(1), countEvents(t, db, models.TrashActionSoftDelete, "users"))
}

func TestUserServicePermanentDeleteRemovesRow(t *testing.T) {
	db := openServiceTestDB(t)
	svc, err := NewUserService(db, nil)
	require.NoError(t, err)

	ctx := context.Background()
	user := createTestUser(t, db, "condemned", false)

	require.NoError(t, svc.Delete(ctx, user.ID, true))

	_, total, err := svc.List(ctx, ListUsersOptions{Filters: UserFilters{IncludeDeleted: true}})
	require.NoError(t, err)
	require.Zero(t, total)

	require.ErrorIs(t, svc.Delete(ctx, user.ID, true), ErrUserNotFound)
}

func TestUserServiceRestore(t *testing.T) {
	db := openServiceTestDB(t)
	events := newEventService(t, db)
	svc, err := NewUserService(db, events)
	require.NoError(t, err)

	ctx := context.Background()
	user := createTestUser(t, db, "phoenix", false)

	_, err = svc.Restore(ctx, user.ID)
	require.ErrorIs(t, err, ErrUserNotTrashed)

	require.NoError(t, svc.Delete(ctx, user.ID, false))

	restored, err := svc.Restore(ctx, user.ID)
	require.NoError(t, err)
	require.False(t, restored.IsDeleted())

	back, err := svc.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Nil(t, back.DeletedAt)

	require.Equal(t, int64(1), countEvents(t, db, models.TrashActionRestore, "users"))
}

func TestUserServiceProtectsLastAdmin(t *testing.T) {
	db := openServiceTestDB(t)
	svc, err := NewUserService(db, nil)
	require.NoError(t, err)

	ctx := context.Background()
	admin := createTestUser(t, db, "only-admin", true)

	require.ErrorIs(t, svc.Delete(ctx, admin.ID, false), ErrLastAdminImmutable)
	require.ErrorIs(t, svc.Delete(ctx, admin.ID, true), ErrLastAdminImmutable)

	demoted := false
	_, err = svc.Update(ctx, admin.ID, UpdateUserInput{IsAdmin: &demoted})
	require.ErrorIs(t, err, ErrLastAdminImmutable)

	inactive := false
	_, err = svc.Update(ctx, admin.ID, UpdateUserInput{IsActive: &inactive})
	require.ErrorIs(t, err, ErrLastAdminImmutable)

	// With a second active admin the guard releases.
	createTestUser(t, db, "backup-admin", true)
	require.NoError(t, svc.Delete(ctx, admin.ID, false))
}

func TestUserServiceUpdateFields(t *testing.T) {
	db := openServiceTestDB(t)
	svc, err := NewUserService(db, nil)
	require.NoError(t, err)

	ctx := context.Background()
	user := createTestUser(t, db, "mutable", false)

	first := " Ada "
	email := "ADA@example.com"
	updated, err := svc.Update(ctx, user.ID, UpdateUserInput{
		FirstName: &first,
		Email:     &email,
	})
	require.NoError(t, err)
	require.Equal(t, "Ada", updated.FirstName)
	require.Equal(t, "ada@example.com", updated.Email)

	// No-op update returns the stored record unchanged.
	same, err := svc.Update(ctx, user.ID, UpdateUserInput{})
	require.NoError(t, err)
	require.Equal(t, updated.Email, same.Email)
}

func TestUserServiceChangePassword(t *testing.T) {
	db := openServiceTestDB(t)
	svc, err := NewUserService(db, nil)
	require.NoError(t, err)

	ctx := context.Background()
	user := createTestUser(t, db, "rotating", false)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "fresh-password"))

	_, err = svc.Authenticate(ctx, "rotating", "fresh-password")
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, "rotating", "password123")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	require.ErrorIs(t, svc.ChangePassword(ctx, "missing", "whatever-pass"), ErrUserNotFound)
}

func TestUserServiceListFilters(t *testing.T) {
	db := openServiceTestDB(t)
	svc, err := NewUserService(db, nil)
	require.NoError(t, err)

	ctx := context.Background()
	createTestUser(t, db, "alice", false)
	createTestUser(t, db, "bob", false)
	inactive := createTestUser(t, db, "carol", false)
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)

	users, total, err := svc.List(ctx, ListUsersOptions{Filters: UserFilters{Query: "ali"}})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "alice", users[0].Username)

	active := true
	_, total, err = svc.List(ctx, ListUsersOptions{Filters: UserFilters{IsActive: &active}})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)

	// Pagination caps and clamps.
	page, _, err := svc.List(ctx, ListUsersOptions{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)
}
