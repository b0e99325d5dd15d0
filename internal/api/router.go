package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"gorm-trashbin/internal/app"
	iauth "gorm-trashbin/internal/auth"
	"gorm-trashbin/internal/handlers"
	"gorm-trashbin/internal/middleware"
	"gorm-trashbin/internal/services"
)

// Services bundles the wired service layer the router mounts handlers on.
type Services struct {
	Users    *services.UserService
	Snippets *services.SnippetService
	Trash    *services.TrashService
	Events   *services.TrashEventService
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config, svcs Services) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if svcs.Users == nil || svcs.Snippets == nil || svcs.Trash == nil || svcs.Events == nil {
		return nil, fmt.Errorf("all services must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	// Health endpoint (public)
	r.GET("/health", handlers.Health(db))

	authHandler := handlers.NewAuthHandler(svcs.Users, jwt)

	// Public auth routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", authHandler.Login)
	}

	// Protected routes
	requireAuth := middleware.Auth(jwt)
	requireAdmin := middleware.RequireAdmin()

	api := r.Group("/api")
	api.Use(requireAuth)

	api.GET("/auth/me", authHandler.Me)

	// Users: account management is an administrative concern.
	userHandler := handlers.NewUserHandler(svcs.Users)
	snippetHandler := handlers.NewSnippetHandler(svcs.Snippets)

	users := api.Group("/users")
	users.Use(requireAdmin)
	{
		users.GET("", userHandler.List)
		users.POST("", userHandler.Create)
		users.GET("/:id", userHandler.Get)
		users.PATCH("/:id", userHandler.Update)
		users.DELETE("/:id", userHandler.Delete)
		users.POST("/:id/restore", userHandler.Restore)
		users.POST("/:id/password", userHandler.ChangePassword)
		users.DELETE("/:id/snippets", snippetHandler.DeleteByOwner)
	}

	// Snippets: available to every authenticated user.
	snippets := api.Group("/snippets")
	{
		snippets.GET("", snippetHandler.List)
		snippets.POST("", snippetHandler.Create)
		snippets.GET("/:id", snippetHandler.Get)
		snippets.PATCH("/:id", snippetHandler.Update)
		snippets.DELETE("/:id", snippetHandler.Delete)
		snippets.POST("/:id/restore", snippetHandler.Restore)
	}

	// Trash administration spans resources, so it stays admin-only.
	trashHandler := handlers.NewTrashHandler(svcs.Trash)
	trashGroup := api.Group("/trash")
	trashGroup.Use(requireAdmin)
	{
		trashGroup.GET("", trashHandler.Stats)
		trashGroup.GET("/:resource", trashHandler.List)
		trashGroup.POST("/:resource/restore", trashHandler.Restore)
		trashGroup.POST("/:resource/purge", trashHandler.Purge)
	}

	// Trash event trail
	eventHandler := handlers.NewTrashEventHandler(svcs.Events)
	api.GET("/events", requireAdmin, eventHandler.List)

	// Metrics endpoint
	if cfg.Monitoring.Prometheus {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
