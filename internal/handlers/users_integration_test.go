package handlers_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"gorm-trashbin/internal/database"
	"gorm-trashbin/internal/handlers/testutil"
)

func TestUserHandler_CRUDAndTrashLifecycle(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := env.Login(database.DefaultAdminUsername, database.DefaultAdminPassword)
	token := admin.AccessToken

	username := "alice-" + uuid.NewString()
	created := env.Request(http.MethodPost, "/api/users", map[string]any{
		"username":   username,
		"email":      username + "@example.com",
		"password":   "Password123!",
		"first_name": "Alice",
	}, token)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())

	var user testutil.UserPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, created).Data, &user)
	require.NotEmpty(t, user.ID)
	require.Equal(t, username, user.Username)
	require.True(t, user.IsActive)
	require.False(t, user.IsAdmin)

	get := env.Request(http.MethodGet, "/api/users/"+user.ID, nil, token)
	require.Equal(t, http.StatusOK, get.Code)

	updated := env.Request(http.MethodPatch, "/api/users/"+user.ID, map[string]any{
		"first_name": "Alicia",
		"last_name":  "Smith",
	}, token)
	require.Equal(t, http.StatusOK, updated.Code, updated.Body.String())
	var afterUpdate testutil.UserPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, updated).Data, &afterUpdate)
	require.Equal(t, "Alicia", afterUpdate.FirstName)
	require.Equal(t, "Smith", afterUpdate.LastName)

	list := env.Request(http.MethodGet, "/api/users?q="+username, nil, token)
	require.Equal(t, http.StatusOK, list.Code)
	listPayload := testutil.DecodeResponse(t, list)
	require.NotNil(t, listPayload.Meta)
	require.Equal(t, 1, listPayload.Meta.Total)

	changed := env.Request(http.MethodPost, "/api/users/"+user.ID+"/password", map[string]any{
		"password": "Rotated456!",
	}, token)
	require.Equal(t, http.StatusOK, changed.Code, changed.Body.String())
	env.Login(username, "Rotated456!")

	// Soft delete parks the account in the trash.
	trashed := env.Request(http.MethodDelete, "/api/users/"+user.ID, nil, token)
	require.Equal(t, http.StatusOK, trashed.Code, trashed.Body.String())
	var deleteResult struct {
		Deleted   bool `json:"deleted"`
		Permanent bool `json:"permanent"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, trashed).Data, &deleteResult)
	require.True(t, deleteResult.Deleted)
	require.False(t, deleteResult.Permanent)

	missing := env.Request(http.MethodGet, "/api/users/"+user.ID, nil, token)
	require.Equal(t, http.StatusNotFound, missing.Code)
	require.Equal(t, "USER_NOT_FOUND", testutil.DecodeResponse(t, missing).Error.Code)

	hiddenFromList := env.Request(http.MethodGet, "/api/users?q="+username, nil, token)
	require.Equal(t, 0, testutil.DecodeResponse(t, hiddenFromList).Meta.Total)

	inclusive := env.Request(http.MethodGet, "/api/users?q="+username+"&include_deleted=true", nil, token)
	inclusivePayload := testutil.DecodeResponse(t, inclusive)
	require.Equal(t, 1, inclusivePayload.Meta.Total)
	var trashedUsers []testutil.UserPayload
	testutil.DecodeInto(t, inclusivePayload.Data, &trashedUsers)
	require.Len(t, trashedUsers, 1)
	require.NotNil(t, trashedUsers[0].DeletedAt)

	// Restore brings the account back with its rotated password.
	restored := env.Request(http.MethodPost, "/api/users/"+user.ID+"/restore", nil, token)
	require.Equal(t, http.StatusOK, restored.Code, restored.Body.String())
	var afterRestore testutil.UserPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, restored).Data, &afterRestore)
	require.Nil(t, afterRestore.DeletedAt)
	env.Login(username, "Rotated456!")

	doubleRestore := env.Request(http.MethodPost, "/api/users/"+user.ID+"/restore", nil, token)
	require.Equal(t, http.StatusBadRequest, doubleRestore.Code)
	require.Equal(t, "USER_NOT_TRASHED", testutil.DecodeResponse(t, doubleRestore).Error.Code)

	// A permanent delete removes the row outright.
	purged := env.Request(http.MethodDelete, "/api/users/"+user.ID+"?permanent=true", nil, token)
	require.Equal(t, http.StatusOK, purged.Code, purged.Body.String())
	testutil.DecodeInto(t, testutil.DecodeResponse(t, purged).Data, &deleteResult)
	require.True(t, deleteResult.Permanent)

	gone := env.Request(http.MethodGet, "/api/users?q="+username+"&include_deleted=true", nil, token)
	require.Equal(t, 0, testutil.DecodeResponse(t, gone).Meta.Total)
}

func TestUserHandler_CreateValidation(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := env.Login(database.DefaultAdminUsername, database.DefaultAdminPassword)

	shortUsername := env.Request(http.MethodPost, "/api/users", map[string]any{
		"username": "ab",
		"email":    "ab@example.com",
		"password": "Password123!",
	}, admin.AccessToken)
	require.Equal(t, http.StatusBadRequest, shortUsername.Code)

	badEmail := env.Request(http.MethodPost, "/api/users", map[string]any{
		"username": "charlie-" + uuid.NewString(),
		"email":    "not-an-email",
		"password": "Password123!",
	}, admin.AccessToken)
	require.Equal(t, http.StatusBadRequest, badEmail.Code)

	badCharacters := env.Request(http.MethodPost, "/api/users", map[string]any{
		"username": "no spaces!",
		"email":    "spaces@example.com",
		"password": "Password123!",
	}, admin.AccessToken)
	require.Equal(t, http.StatusBadRequest, badCharacters.Code)
	badBody := testutil.DecodeResponse(t, badCharacters)
	require.Contains(t, badBody.Error.Message, "letters, digits, dots")

	duplicate := map[string]any{
		"username": "dup-" + uuid.NewString(),
		"email":    "dup-" + uuid.NewString() + "@example.com",
		"password": "Password123!",
	}
	first := env.Request(http.MethodPost, "/api/users", duplicate, admin.AccessToken)
	require.Equal(t, http.StatusCreated, first.Code)
	second := env.Request(http.MethodPost, "/api/users", duplicate, admin.AccessToken)
	require.Equal(t, http.StatusConflict, second.Code)
	require.Equal(t, "CONFLICT", testutil.DecodeResponse(t, second).Error.Code)
}

func TestUserHandler_RequiresAdmin(t *testing.T) {
	env := testutil.NewEnv(t)
	user := env.CreateUser("Password123!")
	login := env.Login(user.Username, "Password123!")

	list := env.Request(http.MethodGet, "/api/users", nil, login.AccessToken)
	require.Equal(t, http.StatusForbidden, list.Code)
	require.Equal(t, "FORBIDDEN", testutil.DecodeResponse(t, list).Error.Code)

	create := env.Request(http.MethodPost, "/api/users", map[string]any{
		"username": "mallory-" + uuid.NewString(),
		"email":    "mallory@example.com",
		"password": "Password123!",
	}, login.AccessToken)
	require.Equal(t, http.StatusForbidden, create.Code)

	anon := env.Request(http.MethodGet, "/api/users", nil, "")
	require.Equal(t, http.StatusUnauthorized, anon.Code)
}

func TestUserHandler_LastAdminGuard(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := env.Login(database.DefaultAdminUsername, database.DefaultAdminPassword)
	token := admin.AccessToken

	// The seeded administrator is the only one, so it cannot be trashed,
	// deactivated, or demoted.
	trashed := env.Request(http.MethodDelete, "/api/users/"+admin.User.ID, nil, token)
	require.Equal(t, http.StatusBadRequest, trashed.Code)
	require.Equal(t, "USER_LAST_ADMIN", testutil.DecodeResponse(t, trashed).Error.Code)

	deactivated := env.Request(http.MethodPatch, "/api/users/"+admin.User.ID, map[string]any{
		"is_active": false,
	}, token)
	require.Equal(t, http.StatusBadRequest, deactivated.Code)
	require.Equal(t, "USER_LAST_ADMIN", testutil.DecodeResponse(t, deactivated).Error.Code)

	demoted := env.Request(http.MethodPatch, "/api/users/"+admin.User.ID, map[string]any{
		"is_admin": false,
	}, token)
	require.Equal(t, http.StatusBadRequest, demoted.Code)

	// With a second active admin in place the original may leave.
	env.CreateAdminUser("Backup123!")
	allowed := env.Request(http.MethodDelete, "/api/users/"+admin.User.ID, nil, token)
	require.Equal(t, http.StatusOK, allowed.Code, allowed.Body.String())
}
