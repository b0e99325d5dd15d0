package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gorm-trashbin/internal/api"
	"gorm-trashbin/internal/app"
	"gorm-trashbin/internal/app/retention"
	iauth "gorm-trashbin/internal/auth"
	"gorm-trashbin/internal/database"
	"gorm-trashbin/internal/models"
	"gorm-trashbin/internal/services"
	"gorm-trashbin/internal/trash"
	"gorm-trashbin/pkg/logger"
)

// runtimeStack bundles the long-lived components backing the HTTP server.
type runtimeStack struct {
	DB       *gorm.DB
	JWT      *iauth.JWTService
	Services api.Services
	Sweeper  *retention.Sweeper
	Router   *gin.Engine
}

// bootstrapRuntime initialises the database, services, retention sweeper and
// HTTP router.
func bootstrapRuntime(cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	stack.JWT, err = iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise jwt service: %w", err)
	}

	events, err := services.NewTrashEventService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise trash event service: %w", err)
	}

	users, err := services.NewUserService(stack.DB, events)
	if err != nil {
		return nil, fmt.Errorf("initialise user service: %w", err)
	}

	snippets, err := services.NewSnippetService(stack.DB, events)
	if err != nil {
		return nil, fmt.Errorf("initialise snippet service: %w", err)
	}

	registry, err := buildRegistry(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("build trash registry: %w", err)
	}

	trashSvc, err := services.NewTrashService(registry, events)
	if err != nil {
		return nil, fmt.Errorf("initialise trash service: %w", err)
	}

	stack.Services = api.Services{
		Users:    users,
		Snippets: snippets,
		Trash:    trashSvc,
		Events:   events,
	}

	if cfg.Retention.Enabled {
		stack.Sweeper = retention.NewSweeper(trashSvc, events,
			retention.WithRetentionDays(cfg.Retention.Days),
			retention.WithEventRetentionDays(cfg.Retention.EventDays),
			retention.WithSchedule(cfg.Retention.Schedule),
			retention.WithStateStore(stack.DB),
		)
		if err := stack.Sweeper.Start(); err != nil {
			return nil, fmt.Errorf("start retention sweeper: %w", err)
		}
	}

	stack.Router, err = api.NewRouter(stack.DB, stack.JWT, cfg, stack.Services)
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown stops background jobs, runs a final sweep, and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Sweeper != nil {
		<-s.Sweeper.Stop().Done()
		if err := s.Sweeper.RunOnce(ctx); err != nil {
			log.Warn("shutdown sweep failed", zap.Error(err))
		}
	}

	if s.DB != nil {
		closeDatabase(s.DB, log)
	}
}

// buildRegistry declares which soft-deletable models the trash service
// administers. New resources register here.
func buildRegistry(db *gorm.DB) (*trash.Registry, error) {
	registry := trash.NewRegistry()

	if err := registry.Register(trash.NewResource[models.User]("users", db, func(u *models.User) string {
		return u.Username
	})); err != nil {
		return nil, err
	}

	if err := registry.Register(trash.NewResource[models.Snippet]("snippets", db, func(s *models.Snippet) string {
		return s.Name
	})); err != nil {
		return nil, err
	}

	return registry, nil
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := convertDatabaseConfig(cfg)
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(db); err != nil {
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", strings.ToLower(strings.TrimSpace(dbCfg.Driver))))

	return db, nil
}

func convertDatabaseConfig(cfg *app.Config) database.Config {
	dbCfg := database.Config{
		Driver: strings.ToLower(strings.TrimSpace(cfg.Database.Driver)),
		Path:   strings.TrimSpace(cfg.Database.Path),
		DSN:    strings.TrimSpace(cfg.Database.DSN),
	}

	switch dbCfg.Driver {
	case "", "sqlite":
		dbCfg.Driver = "sqlite"
	case "postgres", "postgresql":
		dbCfg.Driver = "postgres"
		dbCfg.Host = strings.TrimSpace(cfg.Database.Postgres.Host)
		dbCfg.Port = cfg.Database.Postgres.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.Postgres.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.Postgres.Username)
		dbCfg.Password = strings.TrimSpace(cfg.Database.Postgres.Password)
	case "mysql":
		dbCfg.Host = strings.TrimSpace(cfg.Database.MySQL.Host)
		dbCfg.Port = cfg.Database.MySQL.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.MySQL.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.MySQL.Username)
		dbCfg.Password = strings.TrimSpace(cfg.Database.MySQL.Password)
	default:
		// Leave driver as-is to surface unsupported driver error during open.
	}

	return dbCfg
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
