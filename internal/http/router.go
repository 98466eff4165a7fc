package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spellbook-app/spellbook/internal/auth"
	"github.com/spellbook-app/spellbook/internal/config"
	"github.com/spellbook-app/spellbook/internal/demo"
	"github.com/spellbook-app/spellbook/internal/logging"
	"github.com/spellbook-app/spellbook/internal/preview"
	"github.com/spellbook-app/spellbook/internal/validation"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	v := cfg.Validator
	if v == nil {
		v = validation.New()
	}
	runner := cfg.Runner
	if runner == nil {
		runner = preview.NewRunner(config.Runner{})
	}

	router := gin.New()
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("Panic recovered", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}))
	router.Use(logging.RequestID())
	router.Use(logging.RequestLogger(logger))

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware())
	}

	if cfg.DemoMode {
		router.Use(demo.NewMiddleware(true).Handler())
	}

	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	// CSRF only guards cookie sessions, so it needs the session loaded first
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.Tokens))
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
	})

	// The audit service is optional; keep the interfaces untyped nil without it.
	var auditor Auditor
	if cfg.Audit != nil {
		auditor = cfg.Audit
	}

	// Health endpoints
	var indexCounter IndexCounter
	if cfg.Search != nil {
		indexCounter = cfg.Search
	}
	health := NewHealthController(cfg.DB, indexCounter, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	api := router.Group("/api")
	requireAuth := auth.RequireAuth()

	if cfg.AuthController != nil {
		cfg.AuthController.RegisterRoutes(api.Group("/auth"))
	}

	// Spells and favorites
	spellsController := NewSpellsController(cfg.Spells, cfg.Index, auditor, v, logger)
	favoritesController := NewFavoritesController(cfg.Favorites, cfg.Spells, auditor, logger)
	spells := api.Group("/spells")
	spells.GET("", requireAuth, spellsController.List)
	spells.POST("", requireAuth, spellsController.Create)
	spells.GET("/:id", spellsController.Get)
	spells.PATCH("/:id", requireAuth, spellsController.Update)
	spells.DELETE("/:id", requireAuth, spellsController.Delete)
	spells.GET("/:id/raw", spellsController.Raw)
	spells.GET("/:id/favorite", favoritesController.Status)
	spells.POST("/:id/favorite", requireAuth, favoritesController.Add)
	spells.DELETE("/:id/favorite", requireAuth, favoritesController.Remove)
	api.GET("/favorites", requireAuth, favoritesController.List)

	// Spellbooks
	spellbooksController := NewSpellbooksController(cfg.Spellbooks, cfg.Index, auditor, v, logger)
	spellbooks := api.Group("/spellbooks")
	spellbooks.GET("", requireAuth, spellbooksController.List)
	spellbooks.POST("", requireAuth, spellbooksController.Create)
	spellbooks.GET("/:id", spellbooksController.Get)
	spellbooks.PATCH("/:id", requireAuth, spellbooksController.Update)
	spellbooks.PUT("/:id", requireAuth, spellbooksController.Update)
	spellbooks.DELETE("/:id", requireAuth, spellbooksController.Delete)

	// Runes
	runesController := NewRunesController(cfg.Runes, cfg.Index, auditor, v, logger)
	runes := api.Group("/runes")
	runes.GET("", runesController.List)
	runes.POST("", requireAuth, runesController.Create)
	runes.GET("/:id", runesController.Get)
	runes.GET("/:id/preview", auth.PreviewHeaders, runesController.Preview)
	runes.PATCH("/:id", requireAuth, runesController.Update)
	runes.DELETE("/:id", requireAuth, runesController.Delete)

	// Profiles
	var passwords PasswordChanger
	if cfg.AuthService != nil {
		passwords = cfg.AuthService
	}
	profileController := NewProfileController(cfg.Users, passwords, auditor, v, logger)
	profile := api.Group("/profile", requireAuth)
	profile.GET("", profileController.Get)
	profile.PATCH("", profileController.Update)
	profile.GET("/check-username", profileController.CheckUsername)
	if passwords != nil {
		profile.POST("/password", profileController.ChangePassword)
	}
	usersController := NewUsersController(cfg.Users, cfg.Spells, cfg.Spellbooks, logger)
	api.GET("/users/:username", usersController.Profile)

	// Browse
	exploreController := NewExploreController(cfg.Spells, cfg.ExploreCacheTTL, logger)
	api.GET("/explore", exploreController.Explore)
	api.GET("/public/spells", exploreController.PublicSpells)
	dashboardController := NewDashboardController(cfg.Users, cfg.Spells, cfg.Spellbooks, logger)
	api.GET("/dashboard", requireAuth, dashboardController.Summary)
	sitemapController := NewSitemapController(cfg.SiteBaseURL, cfg.Spells, cfg.Spellbooks, logger)
	router.GET("/sitemap.xml", sitemapController.Sitemap)

	// Full-text search is absent (404) when disabled
	if cfg.Search != nil {
		searchController := NewSearchController(cfg.Search, logger)
		api.GET("/search", searchController.Search)
	}

	// Snippet runner
	runController := NewRunController(runner, v, logger)
	api.POST("/run", runController.Run)

	// Audit log
	if cfg.Audit != nil {
		auditController := NewAuditController(cfg.Audit, logger)
		api.GET("/audit", requireAuth, auditController.GetAuditEvents)
	}

	return router
}
