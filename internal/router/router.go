package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/questguide/questguide-backend/internal/config"
	"github.com/questguide/questguide-backend/internal/handler"
	"github.com/questguide/questguide-backend/internal/middleware"
	"github.com/questguide/questguide-backend/internal/model"
	"github.com/questguide/questguide-backend/internal/response"
	"github.com/rs/zerolog"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Test     *handler.TestHandler
	Resource *handler.ResourceHandler
	User     *handler.UserHandler
	Feed     *handler.FeedHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// loginLimiter may be nil to leave login unthrottled.
func SetupRouter(
	auth middleware.Authenticator,
	handlers *Handlers,
	loginLimiter *middleware.RateLimiter,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Every response carries request metadata; errors recorded with c.Error
	// are rendered once, after the handler chain.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())
	router.Use(middleware.ErrorHandler(log, handler.ClassifyError))

	router.NoRoute(func(c *gin.Context) {
		response.FailWithError(c, response.NewError(http.StatusNotFound, response.ErrNotFound, "Can't find "+c.Request.URL.Path+" on this server"))
	})

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	protect := middleware.Protect(auth)
	adminOnly := middleware.RestrictTo(model.RoleAdmin)

	// ─── 1. Auth Group ─────────────────────────────────────────────────
	authAPI := router.Group("/api/auth")
	{
		login := []gin.HandlerFunc{handlers.Auth.Login}
		if loginLimiter != nil {
			login = append([]gin.HandlerFunc{loginLimiter.Middleware()}, login...)
		}
		authAPI.POST("/signup", handlers.Auth.Signup)
		authAPI.POST("/login", login...)

		authAPI.GET("/me", protect, handlers.Auth.Me)
		authAPI.PATCH("/updateMe", protect, handlers.Auth.UpdateMe)
		authAPI.POST("/logout", protect, handlers.Auth.Logout)
	}

	// ─── 2. Tests Group ────────────────────────────────────────────────
	tests := router.Group("/api/tests")
	tests.Use(protect)
	{
		tests.GET("", handlers.Test.ListTests)
		tests.GET("/results", handlers.Test.MyResults)
		tests.GET("/:id", handlers.Test.GetTest)
		tests.POST("/:id/submit", handlers.Test.SubmitTest)

		tests.POST("", adminOnly, handlers.Test.CreateTest)
		tests.PUT("/:id", adminOnly, handlers.Test.UpdateTest)
		tests.DELETE("/:id", adminOnly, handlers.Test.DeleteTest)
		tests.GET("/:id/stats", adminOnly, handlers.Test.TestStats)
	}

	// ─── 3. Resources Group ────────────────────────────────────────────
	resources := router.Group("/api/resources")
	resources.Use(protect)
	{
		resources.GET("", handlers.Resource.ListResources)
		resources.POST("", handlers.Resource.CreateResource)
		resources.GET("/:id", handlers.Resource.GetResource)
		resources.PATCH("/:id", handlers.Resource.UpdateResource)
		resources.DELETE("/:id", handlers.Resource.DeleteResource)
		resources.GET("/:id/similar", handlers.Resource.SimilarResources)
	}

	// ─── 4. Users Group ────────────────────────────────────────────────
	users := router.Group("/api/users")
	users.Use(protect)
	{
		users.GET("/performance", handlers.User.Performance)

		users.GET("/students", adminOnly, handlers.User.ListStudents)
		users.GET("/admin-stats", adminOnly, handlers.User.AdminStats)
		users.GET("/dashboard-stats", adminOnly, handlers.User.DashboardStats)
		users.GET("/activity-heatmap", adminOnly, handlers.User.ActivityHeatmap)
	}

	// ─── 5. WebSocket Group (token in query) ───────────────────────────
	ws := router.Group("/ws")
	ws.Use(middleware.ProtectQuery(auth), adminOnly)
	{
		ws.GET("/tests/:id/submissions", handlers.Feed.Submissions)
	}

	return router
}
