package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"gorm-trashbin/internal/models"
	"gorm-trashbin/internal/trash"
	apperrors "gorm-trashbin/pkg/errors"
	"gorm-trashbin/pkg/logger"
	"gorm-trashbin/pkg/metrics"
)

// ErrUnknownTrashResource indicates the named resource is not registered for trash administration.
var ErrUnknownTrashResource = apperrors.New("TRASH_RESOURCE_UNKNOWN", "Unknown trash resource", http.StatusNotFound)

// ResourceStats summarises one resource's trash occupancy.
type ResourceStats struct {
	Resource string `json:"resource"`
	Active   int64  `json:"active"`
	Trashed  int64  `json:"trashed"`
}

// TrashService is the administrative facade over every registered
// soft-deletable resource: it inspects, restores, and purges trashed rows and
// records an event for each mutation.
type TrashService struct {
	registry *trash.Registry
	events   *TrashEventService
	log      *zap.Logger
}

// NewTrashService constructs the facade. The event service is optional.
func NewTrashService(registry *trash.Registry, events *TrashEventService) (*TrashService, error) {
	if registry == nil {
		return nil, errors.New("trash service: registry is required")
	}
	return &TrashService{
		registry: registry,
		events:   events,
		log:      logger.WithModule("trash"),
	}, nil
}

// Resources returns the names of all administerable resources.
func (s *TrashService) Resources() []string {
	return s.registry.Names()
}

// Stats reports per-resource active and trashed counts, refreshing the
// occupancy gauge as a side effect.
func (s *TrashService) Stats(ctx context.Context) ([]ResourceStats, error) {
	ctx = ensureContext(ctx)

	resources := s.registry.Resources()
	stats := make([]ResourceStats, 0, len(resources))
	for _, res := range resources {
		active, err := res.ActiveCount(ctx)
		if err != nil {
			return nil, fmt.Errorf("trash service: count active %s: %w", res.Name(), err)
		}
		trashed, err := res.TrashedCount(ctx)
		if err != nil {
			return nil, fmt.Errorf("trash service: count trashed %s: %w", res.Name(), err)
		}

		metrics.TrashedRecords.WithLabelValues(res.Name()).Set(float64(trashed))
		stats = append(stats, ResourceStats{
			Resource: res.Name(),
			Active:   active,
			Trashed:  trashed,
		})
	}
	return stats, nil
}

// ListTrashed pages through the trashed rows of one resource.
func (s *TrashService) ListTrashed(ctx context.Context, resource string, page, pageSize int) ([]trash.TrashedRecord, int64, error) {
	ctx = ensureContext(ctx)

	res, ok := s.registry.Get(resource)
	if !ok {
		return nil, 0, ErrUnknownTrashResource
	}

	page, perPage := normalisePage(page, pageSize)
	return res.ListTrashed(ctx, (page-1)*perPage, perPage)
}

// Restore clears the deletion marker on the given rows of one resource.
func (s *TrashService) Restore(ctx context.Context, resource string, ids []string) (int64, error) {
	ctx = ensureContext(ctx)

	res, ok := s.registry.Get(resource)
	if !ok {
		return 0, ErrUnknownTrashResource
	}

	ids = normaliseIDs(ids)
	restored, err := res.Restore(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("trash service: restore %s: %w", res.Name(), err)
	}
	if restored == 0 {
		return 0, nil
	}

	metrics.Restores.WithLabelValues(res.Name()).Add(float64(restored))
	recordTrashEvent(s.events, ctx, TrashEventInput{
		Action:    models.TrashActionRestore,
		Resource:  res.Name(),
		RecordIDs: ids,
	})

	return restored, nil
}

// Purge permanently deletes the given trashed rows of one resource.
func (s *TrashService) Purge(ctx context.Context, resource string, ids []string) (int64, error) {
	ctx = ensureContext(ctx)

	res, ok := s.registry.Get(resource)
	if !ok {
		return 0, ErrUnknownTrashResource
	}

	ids = normaliseIDs(ids)
	purged, err := res.Purge(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("trash service: purge %s: %w", res.Name(), err)
	}
	if purged == 0 {
		return 0, nil
	}

	metrics.Purges.WithLabelValues(res.Name(), models.TrashTriggerAPI).Add(float64(purged))
	recordTrashEvent(s.events, ctx, TrashEventInput{
		Action:    models.TrashActionPurge,
		Resource:  res.Name(),
		RecordIDs: ids,
	})

	return purged, nil
}

// PurgeExpired permanently deletes rows across all resources whose deletion
// marker is older than the cutoff. Failures on one resource do not stop the
// others; they are aggregated into the returned error. Used by the retention
// sweeper.
func (s *TrashService) PurgeExpired(ctx context.Context, cutoff time.Time) (map[string]int64, error) {
	ctx = ensureContext(ctx)

	purged := make(map[string]int64)
	var errs error

	for _, res := range s.registry.Resources() {
		affected, err := res.PurgeOlderThan(ctx, cutoff)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("purge expired %s: %w", res.Name(), err))
			continue
		}
		if affected == 0 {
			continue
		}

		purged[res.Name()] = affected
		metrics.Purges.WithLabelValues(res.Name(), models.TrashTriggerSweeper).Add(float64(affected))
		recordTrashEvent(s.events, ctx, TrashEventInput{
			Action:   models.TrashActionPurge,
			Resource: res.Name(),
			Trigger:  models.TrashTriggerSweeper,
			Count:    int(affected),
		})

		s.log.Info("purged expired records",
			zap.String("resource", res.Name()),
			zap.Int64("count", affected),
			zap.Time("cutoff", cutoff),
		)
	}

	return purged, errs
}
