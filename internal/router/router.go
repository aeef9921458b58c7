package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/sit-transcript-api/internal/handler"
	"github.com/noah-isme/sit-transcript-api/internal/middleware"
	"github.com/noah-isme/sit-transcript-api/internal/service"
	"github.com/noah-isme/sit-transcript-api/pkg/config"
	"github.com/noah-isme/sit-transcript-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sit-transcript-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sit-transcript-api/pkg/middleware/requestid"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth    *handler.AuthHandler
	Request *handler.RequestHandler
	Setting *handler.SettingHandler
	User    *handler.UserHandler
	Export  *handler.ExportHandler
	Metrics *handler.MetricsHandler
}

// New assembles the gin engine: middleware chain, health and metrics probes,
// and the versioned API surface with session and admin gates.
func New(cfg *config.Config, logr *zap.Logger, authSvc *service.AuthService, metricsSvc *service.MetricsService, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", h.Metrics.Health)
	r.GET("/metrics", h.Metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/logout", h.Auth.Logout)
	}

	session := middleware.Session(authSvc, cfg.Cookie.Name)
	admin := middleware.RequireAdmin()

	api.GET("/auth/me", session, h.Auth.Me)

	requests := api.Group("/requests", session)
	{
		requests.POST("", h.Request.Create)
		requests.GET("/my", h.Request.ListOwn)
		requests.GET("/:id", h.Request.GetOwn)
		requests.GET("/:id/download", h.Request.Download)

		requests.PATCH("/:id/excel-link", h.Request.SetExcelLink)
		requests.POST("/:id/upload-excel", h.Request.UploadExcel)

		requests.GET("", admin, h.Request.ListAll)
		requests.GET("/admin/:id", admin, h.Request.GetByID)
		requests.PATCH("/:id/source-link", admin, h.Request.SetSourceLink)
		requests.POST("/:id/upload-transcript", admin, h.Request.UploadTranscript)
		requests.PATCH("/:id/verify", admin, h.Request.Verify)
		requests.PATCH("/:id/status", admin, h.Request.UpdateStatus)
		requests.GET("/export", admin, h.Export.Export)
	}

	settings := api.Group("/settings")
	{
		// anonymous read: students see the template before logging in
		settings.GET("/template-link", h.Setting.GetTemplateLink)
		settings.PUT("/template-link", session, admin, h.Setting.SetTemplateLink)
	}

	users := api.Group("/users", session, admin)
	{
		users.GET("", h.User.List)
		users.GET("/stats", h.User.Stats)
		users.GET("/:id", h.User.Get)
	}

	// signed token is the only credential needed here
	api.GET("/exports/download", h.Export.Download)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "route not found"}})
	})

	return r
}
