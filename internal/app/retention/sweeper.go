package retention

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gorm-trashbin/internal/database"
	"gorm-trashbin/internal/services"
	"gorm-trashbin/pkg/logger"
)

const (
	defaultRetentionDays      = 30
	defaultEventRetentionDays = 90
	defaultSchedule           = "@daily"

	// LastSweepSettingKey is the system setting stamped after each
	// successful sweep so operators can spot a stalled scheduler.
	LastSweepSettingKey = "retention.last_sweep_at"
)

// Sweeper periodically empties the trash: records whose deletion marker is
// older than the retention window are purged for every registered resource,
// and stale trash events are pruned alongside.
type Sweeper struct {
	trash  *services.TrashService
	events *services.TrashEventService
	cron   *cron.Cron
	now    func() time.Time
	log    *zap.Logger
	state  *gorm.DB

	retentionDays      int
	eventRetentionDays int
	schedule           string
}

// Option customises the Sweeper.
type Option func(*Sweeper)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(s *Sweeper) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithNow overrides the clock used to compute the purge cutoff.
func WithNow(now func() time.Time) Option {
	return func(s *Sweeper) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRetentionDays adjusts how long trashed records are kept before purging.
func WithRetentionDays(days int) Option {
	return func(s *Sweeper) {
		if days > 0 {
			s.retentionDays = days
		}
	}
}

// WithEventRetentionDays adjusts how long trash events are retained.
func WithEventRetentionDays(days int) Option {
	return func(s *Sweeper) {
		if days > 0 {
			s.eventRetentionDays = days
		}
	}
}

// WithSchedule overrides the cron expression for sweep runs.
func WithSchedule(spec string) Option {
	return func(s *Sweeper) {
		if spec != "" {
			s.schedule = spec
		}
	}
}

// WithStateStore persists the completion time of each successful sweep as a
// system setting.
func WithStateStore(db *gorm.DB) Option {
	return func(s *Sweeper) {
		s.state = db
	}
}

// NewSweeper constructs a Sweeper with sensible defaults. The event service
// is optional; without it only trashed records are swept.
func NewSweeper(trash *services.TrashService, events *services.TrashEventService, opts ...Option) *Sweeper {
	sweeper := &Sweeper{
		trash:              trash,
		events:             events,
		now:                time.Now,
		retentionDays:      defaultRetentionDays,
		eventRetentionDays: defaultEventRetentionDays,
		schedule:           defaultSchedule,
		log:                logger.WithModule("retention"),
	}

	for _, opt := range opts {
		opt(sweeper)
	}

	if sweeper.cron == nil {
		sweeper.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return sweeper
}

// Start registers the sweep job with the cron scheduler and launches it.
func (s *Sweeper) Start() error {
	if s.trash == nil && s.events == nil {
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunOnce(context.Background()); err != nil {
			s.log.Warn("scheduled sweep failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("retention sweeper started",
		zap.String("schedule", s.schedule),
		zap.Int("retention_days", s.retentionDays),
	)
	return nil
}

// Stop halts the underlying scheduler, waiting for any running sweep to complete.
func (s *Sweeper) Stop() context.Context {
	if s.cron == nil {
		return context.Background()
	}
	return s.cron.Stop()
}

// RunOnce executes a single sweep. Failures in one phase do not prevent the
// other; all errors are aggregated into the returned value.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if s.trash != nil {
		cutoff := s.now().AddDate(0, 0, -s.retentionDays)
		purged, err := s.trash.PurgeExpired(ctx, cutoff)
		if err != nil {
			errs = multierr.Append(errs, err)
		}

		var total int64
		for _, count := range purged {
			total += count
		}
		if total > 0 {
			s.log.Info("sweep complete", zap.Int64("purged", total), zap.Time("cutoff", cutoff))
		}
	}

	if s.events != nil && s.eventRetentionDays > 0 {
		if _, err := s.events.CleanupOlderThan(ctx, s.eventRetentionDays); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if errs == nil && s.state != nil {
		stamp := s.now().UTC().Format(time.RFC3339)
		if err := database.UpsertSystemSetting(ctx, s.state, LastSweepSettingKey, stamp); err != nil {
			s.log.Warn("failed to record sweep time", zap.Error(err))
		}
	}

	return errs
}
