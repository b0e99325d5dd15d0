package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"gorm-trashbin/internal/models"
	"gorm-trashbin/pkg/crypto"
	apperrors "gorm-trashbin/pkg/errors"
	"gorm-trashbin/pkg/metrics"
	"gorm-trashbin/pkg/softdelete"
)

const userResourceName = "users"

var (
	// ErrUserNotFound indicates the requested user does not exist or is hidden in the trash.
	ErrUserNotFound = apperrors.New("USER_NOT_FOUND", "User not found", http.StatusNotFound)
	// ErrLastAdminImmutable protects the final active administrator from deletion or deactivation.
	ErrLastAdminImmutable = apperrors.New("USER_LAST_ADMIN", "The last administrator cannot be removed", http.StatusBadRequest)
	// ErrUserNotTrashed is returned when restoring a user that is not in the trash.
	ErrUserNotTrashed = apperrors.New("USER_NOT_TRASHED", "User is not in the trash", http.StatusBadRequest)
)

// CreateUserInput describes the fields accepted when creating a user.
type CreateUserInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	IsAdmin   bool
	IsActive  *bool
}

// UpdateUserInput enumerates mutable user attributes. Nil pointers leave the
// stored value unchanged.
type UpdateUserInput struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	IsAdmin   *bool
	IsActive  *bool
}

// UserFilters captures listing filters.
type UserFilters struct {
	IsActive       *bool
	Query          string
	IncludeDeleted bool
}

// ListUsersOptions controls pagination for user listing.
type ListUsersOptions struct {
	Page     int
	PageSize int
	Filters  UserFilters
}

// UserService manages account lifecycle on top of the soft-delete managers.
// The default manager backs every read so trashed accounts stay invisible,
// while the unfiltered manager supports restore and administrative listings.
type UserService struct {
	db      *gorm.DB
	objects *softdelete.Manager[models.User]
	all     *softdelete.Manager[models.User]
	events  *TrashEventService
	now     func() time.Time
}

// NewUserService constructs a UserService instance. The event service is
// optional; without it trash operations are simply not recorded.
func NewUserService(db *gorm.DB, events *TrashEventService) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{
		db:      db,
		objects: models.UserObjects(db),
		all:     models.AllUserObjects(db),
		events:  events,
		now:     time.Now,
	}, nil
}

// Create provisions a new user with a hashed password.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if username == "" {
		return nil, apperrors.NewBadRequest("username is required")
	}
	if email == "" {
		return nil, apperrors.NewBadRequest("email is required")
	}
	if strings.TrimSpace(input.Password) == "" {
		return nil, apperrors.NewBadRequest("password is required")
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	user := &models.User{
		Username:  username,
		Email:     email,
		Password:  hashed,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		IsAdmin:   input.IsAdmin,
		IsActive:  true,
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewConflict("username or email already exists")
		}
		return nil, fmt.Errorf("user service: create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies credentials for an active account. Trashed users are
// looked up through the default manager and therefore cannot sign in.
func (s *UserService) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	ctx = ensureContext(ctx)

	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	user, err := s.objects.Query(ctx).
		Where("username = ? OR email = ?", identifier, strings.ToLower(identifier)).
		First()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("user service: lookup user: %w", err)
	}

	if !user.IsActive || !crypto.VerifyPassword(user.Password, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	loginAt := s.now()
	if err := s.db.WithContext(ctx).Model(user).Update("last_login_at", loginAt).Error; err != nil {
		return nil, fmt.Errorf("user service: stamp login: %w", err)
	}
	user.LastLoginAt = &loginAt

	return user, nil
}

// GetByID loads an active user by identifier.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx = ensureContext(ctx)

	user, err := s.objects.Query(ctx).Where("id = ?", id).First()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: get user: %w", err)
	}
	return user, nil
}

// List retrieves users matching the supplied filters with pagination. With
// IncludeDeleted set the listing switches to the unfiltered manager so
// administrators see trashed accounts too.
func (s *UserService) List(ctx context.Context, opts ListUsersOptions) ([]models.User, int64, error) {
	ctx = ensureContext(ctx)

	page, perPage := normalisePage(opts.Page, opts.PageSize)

	manager := s.objects
	if opts.Filters.IncludeDeleted {
		manager = s.all
	}

	query := manager.Query(ctx)
	if opts.Filters.IsActive != nil {
		query = query.Where("is_active = ?", *opts.Filters.IsActive)
	}
	if q := strings.TrimSpace(opts.Filters.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	total, err := query.Count()
	if err != nil {
		return nil, 0, fmt.Errorf("user service: count users: %w", err)
	}

	users, err := query.
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find()
	if err != nil {
		return nil, 0, fmt.Errorf("user service: list users: %w", err)
	}

	return users, total, nil
}

// Update persists mutable attributes for an existing active user.
func (s *UserService) Update(ctx context.Context, id string, input UpdateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}

	if input.Username != nil {
		if name := strings.TrimSpace(*input.Username); name != "" && name != user.Username {
			updates["username"] = name
		}
	}
	if input.Email != nil {
		if email := strings.ToLower(strings.TrimSpace(*input.Email)); email != "" && email != user.Email {
			updates["email"] = email
		}
	}
	if input.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*input.LastName)
	}
	if input.IsAdmin != nil && *input.IsAdmin != user.IsAdmin {
		if !*input.IsAdmin {
			if err := s.ensureAnotherActiveAdmin(ctx, user); err != nil {
				return nil, err
			}
		}
		updates["is_admin"] = *input.IsAdmin
	}
	if input.IsActive != nil && *input.IsActive != user.IsActive {
		if !*input.IsActive {
			if err := s.ensureAnotherActiveAdmin(ctx, user); err != nil {
				return nil, err
			}
		}
		updates["is_active"] = *input.IsActive
	}

	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewConflict("username or email already exists")
		}
		return nil, fmt.Errorf("user service: update user: %w", err)
	}

	return s.GetByID(ctx, id)
}

// ChangePassword hashes and updates the user's password.
func (s *UserService) ChangePassword(ctx context.Context, id, newPassword string) error {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(newPassword) == "" {
		return apperrors.NewBadRequest("new password is required")
	}

	hashed, err := crypto.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("user service: hash new password: %w", err)
	}

	result := s.objects.DB(ctx).
		Where("id = ?", id).
		Update("password", hashed)
	if result.Error != nil {
		return fmt.Errorf("user service: change password: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// Delete moves a user to the trash, or removes the row entirely when
// permanently is set. The last remaining active administrator is protected
// either way.
func (s *UserService) Delete(ctx context.Context, id string, permanently bool) error {
	ctx = ensureContext(ctx)

	user, err := s.lookupAny(ctx, id)
	if err != nil {
		return err
	}

	// Purging an account that already sits in the trash needs no guard: it
	// stopped counting as an active admin when it was soft-deleted.
	if !user.IsDeleted() {
		if err := s.ensureAnotherActiveAdmin(ctx, user); err != nil {
			return err
		}
	}

	if err := s.all.Delete(ctx, user, permanently); err != nil {
		return fmt.Errorf("user service: delete user: %w", err)
	}

	action := models.TrashActionSoftDelete
	if permanently {
		action = models.TrashActionPurge
		metrics.Purges.WithLabelValues(userResourceName, models.TrashTriggerAPI).Inc()
	} else {
		metrics.SoftDeletes.WithLabelValues(userResourceName).Inc()
	}
	recordTrashEvent(s.events, ctx, TrashEventInput{
		Action:    action,
		Resource:  userResourceName,
		RecordIDs: []string{user.ID},
	})

	return nil
}

// Restore clears the deletion marker on a trashed user.
func (s *UserService) Restore(ctx context.Context, id string) (*models.User, error) {
	ctx = ensureContext(ctx)

	user, err := s.lookupAny(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsDeleted() {
		return nil, ErrUserNotTrashed
	}

	if err := s.all.Restore(ctx, user); err != nil {
		return nil, fmt.Errorf("user service: restore user: %w", err)
	}

	metrics.Restores.WithLabelValues(userResourceName).Inc()
	recordTrashEvent(s.events, ctx, TrashEventInput{
		Action:    models.TrashActionRestore,
		Resource:  userResourceName,
		RecordIDs: []string{user.ID},
	})

	return user, nil
}

// lookupAny loads a user regardless of trash state.
func (s *UserService) lookupAny(ctx context.Context, id string) (*models.User, error) {
	user, err := s.all.Query(ctx).Where("id = ?", id).First()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: load user: %w", err)
	}
	return user, nil
}

// ensureAnotherActiveAdmin refuses operations that would leave the install
// without a usable administrator account.
func (s *UserService) ensureAnotherActiveAdmin(ctx context.Context, user *models.User) error {
	if !user.IsAdmin || !user.IsActive || user.IsDeleted() {
		return nil
	}

	others, err := s.objects.Query(ctx).
		Where("is_admin = ? AND is_active = ? AND id <> ?", true, true, user.ID).
		Count()
	if err != nil {
		return fmt.Errorf("user service: count admins: %w", err)
	}
	if others == 0 {
		return ErrLastAdminImmutable
	}
	return nil
}
