package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"gorm-trashbin/internal/auditctx"
	"gorm-trashbin/internal/models"
)

// TrashEventInput captures a single trash operation to persist.
type TrashEventInput struct {
	Action    string
	Resource  string
	Trigger   string
	RecordIDs []string
	// Count overrides the derived record count for bulk operations that
	// cannot name the affected rows, such as retention purges.
	Count   int
	ActorID *string
}

// TrashEventFilters encapsulates optional filters when querying the trail.
type TrashEventFilters struct {
	Action   string
	Resource string
	Trigger  string
	ActorID  string
	Since    *time.Time
	Until    *time.Time
}

// TrashEventListOptions controls pagination and filtering for event queries.
type TrashEventListOptions struct {
	Page     int
	PageSize int
	Filters  TrashEventFilters
}

// TrashEventService persists and retrieves the trash audit trail.
type TrashEventService struct {
	db *gorm.DB
}

// NewTrashEventService constructs a TrashEventService using the provided database handle.
func NewTrashEventService(db *gorm.DB) (*TrashEventService, error) {
	if db == nil {
		return nil, errors.New("trash event service: db is required")
	}
	return &TrashEventService{db: db}, nil
}

// Record stores one trash event, marshalling the affected record identifiers
// into JSON form. Attribution and request origin come from the auditctx
// actor on ctx; an explicit ActorID in the input takes precedence.
func (s *TrashEventService) Record(ctx context.Context, input TrashEventInput) error {
	ctx = ensureContext(ctx)

	action := strings.TrimSpace(input.Action)
	if action == "" {
		return errors.New("trash event service: action is required")
	}
	resource := strings.TrimSpace(input.Resource)
	if resource == "" {
		return errors.New("trash event service: resource is required")
	}

	trigger := strings.TrimSpace(input.Trigger)
	if trigger == "" {
		trigger = models.TrashTriggerAPI
	}

	ids := normaliseIDs(input.RecordIDs)
	encoded, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("trash event service: marshal record ids: %w", err)
	}

	count := len(ids)
	if count == 0 && input.Count > 0 {
		count = input.Count
	}

	event := models.TrashEvent{
		Action:      action,
		Resource:    resource,
		TriggeredBy: trigger,
		RecordIDs:   encoded,
		RecordCount: count,
	}

	if actor, ok := auditctx.FromContext(ctx); ok {
		event.ActorID = actor.UserIDPtr()
		event.IPAddress = actor.IPAddress
		event.UserAgent = actor.UserAgent
	}
	if input.ActorID != nil && strings.TrimSpace(*input.ActorID) != "" {
		id := strings.TrimSpace(*input.ActorID)
		event.ActorID = &id
	}

	return s.db.WithContext(ctx).Create(&event).Error
}

// List returns paginated trash events ordered by creation time descending.
func (s *TrashEventService) List(ctx context.Context, opts TrashEventListOptions) ([]models.TrashEvent, int64, error) {
	ctx = ensureContext(ctx)

	page, perPage := normalisePage(opts.Page, opts.PageSize)

	query := s.db.WithContext(ctx).Model(&models.TrashEvent{})
	query = applyEventFilters(query, opts.Filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("trash event service: count events: %w", err)
	}

	var events []models.TrashEvent
	if err := query.
		Preload("Actor").
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("trash event service: list events: %w", err)
	}

	return events, total, nil
}

// CleanupOlderThan removes events older than the supplied retention window (in days).
func (s *TrashEventService) CleanupOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	ctx = ensureContext(ctx)

	if retentionDays <= 0 {
		return 0, errors.New("trash event service: retentionDays must be positive")
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	result := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.TrashEvent{})
	if result.Error != nil {
		return 0, fmt.Errorf("trash event service: cleanup events: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// recordTrashEvent logs the supplied event while tolerating recording failures.
func recordTrashEvent(events *TrashEventService, ctx context.Context, input TrashEventInput) {
	if events == nil {
		return
	}
	_ = events.Record(ctx, input)
}

func applyEventFilters(query *gorm.DB, filters TrashEventFilters) *gorm.DB {
	if filters.Action != "" {
		query = query.Where("action = ?", filters.Action)
	}
	if filters.Resource != "" {
		query = query.Where("resource = ?", filters.Resource)
	}
	if filters.Trigger != "" {
		query = query.Where("triggered_by = ?", filters.Trigger)
	}
	if filters.ActorID != "" {
		query = query.Where("actor_id = ?", filters.ActorID)
	}
	if filters.Since != nil {
		query = query.Where("created_at >= ?", *filters.Since)
	}
	if filters.Until != nil {
		query = query.Where("created_at <= ?", *filters.Until)
	}
	return query
}
