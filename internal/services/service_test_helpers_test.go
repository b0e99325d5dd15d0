package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"gorm-trashbin/internal/database/testutil"
	"gorm-trashbin/internal/models"
	"gorm-trashbin/internal/trash"
	"gorm-trashbin/pkg/crypto"
)

func openServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.MustOpenTestDB(t)
}

func newEventService(t *testing.T, db *gorm.DB) *TrashEventService {
	t.Helper()

	events, err := NewTrashEventService(db)
	require.NoError(t, err)
	return events
}

func createTestUser(t *testing.T, db *gorm.DB, username string, admin bool) *models.User {
	t.Helper()

	hashed, err := crypto.HashPassword("password123")
	require.NoError(t, err)

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: hashed,
		IsAdmin:  admin,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestSnippet(t *testing.T, db *gorm.DB, name, ownerID string) *models.Snippet {
	t.Helper()

	snippet := &models.Snippet{
		Name:     name,
		Command:  "echo " + name,
		Language: "bash",
	}
	if ownerID != "" {
		snippet.OwnerUserID = &ownerID
	}
	require.NoError(t, db.Create(snippet).Error)
	return snippet
}

func newTestRegistry(t *testing.T, db *gorm.DB) *trash.Registry {
	t.Helper()

	registry := trash.NewRegistry()
	require.NoError(t, registry.Register(trash.NewResource[models.User]("users", db, func(u *models.User) string {
		return u.Username
	})))
	require.NoError(t, registry.Register(trash.NewResource[models.Snippet]("snippets", db, func(s *models.Snippet) string {
		return s.Name
	})))
	return registry
}

func countEvents(t *testing.T, db *gorm.DB, action, resource string) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.TrashEvent{}).
		Where("action = ? AND resource = ?", action, resource).
		Count(&count).Error)
	return count
}
