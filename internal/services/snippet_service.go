package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"gorm-trashbin/internal/models"
	apperrors "gorm-trashbin/pkg/errors"
	"gorm-trashbin/pkg/metrics"
	"gorm-trashbin/pkg/softdelete"
)

const snippetResourceName = "snippets"

var (
	// ErrSnippetNotFound indicates the requested snippet does not exist or is hidden in the trash.
	ErrSnippetNotFound = apperrors.New("SNIPPET_NOT_FOUND", "Snippet not found", http.StatusNotFound)
	// ErrSnippetNotTrashed is returned when restoring a snippet that is not in the trash.
	ErrSnippetNotTrashed = apperrors.New("SNIPPET_NOT_TRASHED", "Snippet is not in the trash", http.StatusBadRequest)
)

// CreateSnippetInput captures required fields when creating a snippet.
type CreateSnippetInput struct {
	Name        string
	Description string
	Command     string
	Language    string
	OwnerUserID string
}

// UpdateSnippetInput describes mutable snippet fields. A nil pointer indicates no change.
type UpdateSnippetInput struct {
	Name        *string
	Description *string
	Command     *string
	Language    *string
}

// SnippetFilters narrows snippet listings.
type SnippetFilters struct {
	Language       string
	OwnerUserID    string
	Query          string
	IncludeDeleted bool
}

// ListSnippetsOptions controls pagination for snippet listing.
type ListSnippetsOptions struct {
	Page     int
	PageSize int
	Filters  SnippetFilters
}

// SnippetService manages CRUD and the trash lifecycle for command snippets.
type SnippetService struct {
	db      *gorm.DB
	objects *softdelete.Manager[models.Snippet]
	all     *softdelete.Manager[models.Snippet]
	events  *TrashEventService
}

// NewSnippetService constructs a snippet service once a database handle is supplied.
func NewSnippetService(db *gorm.DB, events *TrashEventService) (*SnippetService, error) {
	if db == nil {
		return nil, errors.New("snippet service: db is required")
	}
	return &SnippetService{
		db:      db,
		objects: models.SnippetObjects(db),
		all:     models.AllSnippetObjects(db),
		events:  events,
	}, nil
}

// Create persists a new snippet.
func (s *SnippetService) Create(ctx context.Context, input CreateSnippetInput) (*models.Snippet, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	command := strings.TrimSpace(input.Command)
	if name == "" {
		return nil, apperrors.NewBadRequest("name is required")
	}
	if command == "" {
		return nil, apperrors.NewBadRequest("command is required")
	}

	snippet := models.Snippet{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Command:     command,
		Language:    input.Language,
	}
	if owner := strings.TrimSpace(input.OwnerUserID); owner != "" {
		snippet.OwnerUserID = &owner
	}
	snippet.Normalise()

	if err := s.db.WithContext(ctx).Create(&snippet).Error; err != nil {
		return nil, fmt.Errorf("snippet service: create snippet: %w", err)
	}
	return &snippet, nil
}

// GetByID retrieves an active snippet by identifier.
func (s *SnippetService) GetByID(ctx context.Context, id string) (*models.Snippet, error) {
	ctx = ensureContext(ctx)

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.NewBadRequest("snippet id is required")
	}

	snippet, err := s.objects.Query(ctx).Where("id = ?", id).First()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSnippetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("snippet service: get snippet: %w", err)
	}
	return snippet, nil
}

// List retrieves snippets matching the supplied filters with pagination.
func (s *SnippetService) List(ctx context.Context, opts ListSnippetsOptions) ([]models.Snippet, int64, error) {
	ctx = ensureContext(ctx)

	page, perPage := normalisePage(opts.Page, opts.PageSize)

	manager := s.objects
	if opts.Filters.IncludeDeleted {
		manager = s.all
	}

	query := manager.Query(ctx)
	if language := strings.ToLower(strings.TrimSpace(opts.Filters.Language)); language != "" {
		query = query.Where("language = ?", language)
	}
	if owner := strings.TrimSpace(opts.Filters.OwnerUserID); owner != "" {
		query = query.Where("owner_user_id = ?", owner)
	}
	if q := strings.TrimSpace(opts.Filters.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	total, err := query.Count()
	if err != nil {
		return nil, 0, fmt.Errorf("snippet service: count snippets: %w", err)
	}

	snippets, err := query.
		Order("LOWER(name)").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find()
	if err != nil {
		return nil, 0, fmt.Errorf("snippet service: list snippets: %w", err)
	}

	return snippets, total, nil
}

// Update applies the provided changes to an existing active snippet.
func (s *SnippetService) Update(ctx context.Context, id string, input UpdateSnippetInput) (*models.Snippet, error) {
	ctx = ensureContext(ctx)

	snippet, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewBadRequest("name is required")
		}
		snippet.Name = name
	}
	if input.Description != nil {
		snippet.Description = strings.TrimSpace(*input.Description)
	}
	if input.Command != nil {
		command := strings.TrimSpace(*input.Command)
		if command == "" {
			return nil, apperrors.NewBadRequest("command is required")
		}
		snippet.Command = command
	}
	if input.Language != nil {
		snippet.Language = *input.Language
	}
	snippet.Normalise()

	if err := s.db.WithContext(ctx).Save(snippet).Error; err != nil {
		return nil, fmt.Errorf("snippet service: update snippet: %w", err)
	}
	return snippet, nil
}

// Delete moves a snippet to the trash, or removes the row entirely when
// permanently is set.
func (s *SnippetService) Delete(ctx context.Context, id string, permanently bool) error {
	ctx = ensureContext(ctx)

	id = strings.TrimSpace(id)
	if id == "" {
		return apperrors.NewBadRequest("snippet id is required")
	}

	snippet, err := s.all.Query(ctx).Where("id = ?", id).First()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrSnippetNotFound
	}
	if err != nil {
		return fmt.Errorf("snippet service: load snippet: %w", err)
	}

	if err := s.all.Delete(ctx, snippet, permanently); err != nil {
		return fmt.Errorf("snippet service: delete snippet: %w", err)
	}

	action := models.TrashActionSoftDelete
	if permanently {
		action = models.TrashActionPurge
		metrics.Purges.WithLabelValues(snippetResourceName, models.TrashTriggerAPI).Inc()
	} else {
		metrics.SoftDeletes.WithLabelValues(snippetResourceName).Inc()
	}
	recordTrashEvent(s.events, ctx, TrashEventInput{
		Action:    action,
		Resource:  snippetResourceName,
		RecordIDs: []string{snippet.ID},
	})

	return nil
}

// DeleteByOwner trashes every snippet belonging to the given owner in a
// single bulk statement and reports how many rows were affected. With
// permanently set the rows are removed from storage instead.
func (s *SnippetService) DeleteByOwner(ctx context.Context, ownerID string, permanently bool) (int64, error) {
	ctx = ensureContext(ctx)

	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return 0, apperrors.NewBadRequest("owner id is required")
	}

	qs := s.objects.Query(ctx).Where("owner_user_id = ?", ownerID)

	var ids []string
	if permanently {
		// Capture identifiers up front: after the bulk DELETE there is
		// nothing left to ask.
		var err error
		ids, err = qs.PrimaryKeys()
		if err != nil {
			return 0, fmt.Errorf("snippet service: collect owner snippets: %w", err)
		}
	}

	affected, err := qs.Delete(permanently)
	if err != nil {
		return 0, fmt.Errorf("snippet service: delete owner snippets: %w", err)
	}
	if !permanently {
		ids = qs.DeletedPrimaryKeys()
	}
	if affected == 0 {
		return 0, nil
	}

	action := models.TrashActionSoftDelete
	if permanently {
		action = models.TrashActionPurge
		metrics.Purges.WithLabelValues(snippetResourceName, models.TrashTriggerAPI).Add(float64(affected))
	} else {
		metrics.SoftDeletes.WithLabelValues(snippetResourceName).Add(float64(affected))
	}
	recordTrashEvent(s.events, ctx, TrashEventInput{
		Action:    action,
		Resource:  snippetResourceName,
		RecordIDs: ids,
	})

	return affected, nil
}

// Restore clears the deletion marker on a trashed snippet.
func (s *SnippetService) Restore(ctx context.Context, id string) (*models.Snippet, error) {
	ctx = ensureContext(ctx)

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.NewBadRequest("snippet id is required")
	}

	snippet, err := s.all.Query(ctx).Where("id = ?", id).First()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSnippetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("snippet service: load snippet: %w", err)
	}
	if !snippet.IsDeleted() {
		return nil, ErrSnippetNotTrashed
	}

	if err := s.all.Restore(ctx, snippet); err != nil {
		return nil, fmt.Errorf("snippet service: restore snippet: %w", err)
	}

	metrics.Restores.WithLabelValues(snippetResourceName).Inc()
	recordTrashEvent(s.events, ctx, TrashEventInput{
		Action:    models.TrashActionRestore,
		Resource:  snippetResourceName,
		RecordIDs: []string{snippet.ID},
	})

	return snippet, nil
}
