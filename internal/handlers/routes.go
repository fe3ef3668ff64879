package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/shelfmark/shelfmark-web/internal/logger"
	"github.com/shelfmark/shelfmark-web/internal/metrics"
	"github.com/shelfmark/shelfmark-web/internal/middleware"
	"github.com/shelfmark/shelfmark-web/internal/tier"
	"github.com/shelfmark/shelfmark-web/internal/token"
)

// Dependencies are the components the routes are built from.
type Dependencies struct {
	Logger   *logger.Logger
	Store    tier.Store
	Resolver *tier.Resolver
	Catalog  *tier.Catalog
	Reviewer *token.Reviewer
	Metrics  *metrics.Metrics
	// AdminLimiter throttles the admin API; nil disables throttling.
	AdminLimiter *middleware.RateLimiter
}

// RegisterRoutes mounts every route of the service on router.
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	log := deps.Logger
	if log == nil {
		log = logger.Production()
	}

	router.Use(middleware.RequestID(), middleware.Logging(log), middleware.Recovery(log), deps.Metrics.Middleware())

	router.GET("/health", NewHealthHandler().HealthCheck)
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	tokenHandler := token.NewHandler(log)
	authenticated := tokenHandler.ExtractUserInfo(deps.Reviewer)

	pages := NewPagesHandler(log, deps.Resolver, deps.Catalog, deps.Metrics)
	router.GET("/app/loading", pages.Loading)
	//nolint:contextcheck // Context is properly accessed via gin.Context in the returned handler
	app := router.Group("/app", authenticated)
	app.GET("", pages.Shell)
	app.GET("/content", pages.Content)

	tierHandler := tier.NewHandler(log, deps.Resolver, deps.Store, deps.Catalog)

	// V1 API routes
	v1Routes := router.Group("/v1", authenticated)
	v1Routes.GET("/tiers/me", tierHandler.GetMyTier)

	admin := v1Routes.Group("/admin/tiers", tierHandler.RequireAdmin(), deps.Metrics.MutationMiddleware())
	if deps.AdminLimiter != nil {
		admin.Use(deps.AdminLimiter.Limit())
	}
	admin.GET("/features", tierHandler.ListFeatures)
	admin.GET("/limits", tierHandler.ListLimits)
	admin.PUT("/:tier/features/:feature", tierHandler.ToggleFeature)
	admin.POST("/:tier/features", tierHandler.AddFeature)
	admin.DELETE("/:tier/features/:feature", tierHandler.RemoveFeature)
	admin.PUT("/:tier/limits/:key", tierHandler.UpdateLimit)
}
