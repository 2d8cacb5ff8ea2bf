package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/newsroom-console/internal/middleware"
	"github.com/noah-isme/newsroom-console/internal/models"
	"github.com/noah-isme/newsroom-console/internal/service"
	"github.com/noah-isme/newsroom-console/pkg/logger"
	"github.com/noah-isme/newsroom-console/pkg/middleware/browsercontext"
	corsmiddleware "github.com/noah-isme/newsroom-console/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/newsroom-console/pkg/middleware/requestid"
)

// RouterConfig carries the HTTP-level settings of the gateway.
type RouterConfig struct {
	APIPrefix      string
	AllowedOrigins []string
	Context        browsercontext.Options
	EnableMetrics  bool
	EnableDocs     bool
	MaxUploadBytes int64
	Logger         *zap.Logger
	Metrics        *service.MetricsService
}

// Services are the collaborators the handlers call.
type Services struct {
	Sessions middleware.BrowserOpener
	Imports  importService
	Reports  reportService
	Polls    pollService
	Comments commentService
	Articles articleService
}

// NewRouter assembles the gateway: operational endpoints, the JSON API under
// APIPrefix and the guarded view routes.
func NewRouter(cfg RouterConfig, svc Services) *gin.Engine {
	logr := cfg.Logger
	if logr == nil {
		logr = zap.NewNop()
	}
	prefix := "/" + strings.Trim(cfg.APIPrefix, "/")
	if prefix == "/" {
		prefix = "/api"
	}

	r := gin.New()
	r.Use(middleware.Recovery(logr))
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(cfg.Metrics, "/metrics", "/health"))

	metricsHandler := NewMetricsHandler(cfg.Metrics)
	r.GET("/health", metricsHandler.Health)
	if cfg.EnableMetrics {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	browser := []gin.HandlerFunc{
		browsercontext.Middleware(cfg.Context),
		middleware.LoadSession(svc.Sessions),
	}
	authenticated := middleware.GuardAPI(models.RequireAuthenticated)
	staff := middleware.GuardAPI(models.RequireStaff)

	auth := NewAuthHandler()
	imports := NewImportHandler(svc.Imports, svc.Reports, cfg.MaxUploadBytes)
	polls := NewPollHandler(svc.Polls)
	comments := NewCommentHandler(svc.Comments)
	articles := NewArticleHandler(svc.Articles)

	api := r.Group(prefix, browser...)
	{
		api.GET("/status", metricsHandler.Status)

		api.GET("/auth/session", auth.Session)
		api.POST("/auth/login", middleware.Audit(logr, models.AuditActionLogin, "session", ""), auth.Login)
		api.POST("/auth/register", auth.Register)
		api.POST("/auth/logout", middleware.Audit(logr, models.AuditActionLogout, "session", ""), auth.Logout)

		account := api.Group("/account", authenticated)
		account.PATCH("", auth.UpdateAccount)
		account.POST("/password", middleware.Audit(logr, models.AuditActionPasswordChange, "account", ""), auth.ChangePassword)
		account.PATCH("/avatar", auth.UpdateAvatar)
		account.PATCH("/cover-image", auth.UpdateCoverImage)

		api.GET("/articles/:slug", articles.Page)

		api.GET("/comments/:articleId", comments.List)
		api.POST("/comments/:articleId", authenticated, comments.Add)
		api.DELETE("/comments/:articleId/:commentId", authenticated,
			middleware.Audit(logr, models.AuditActionCommentDelete, "comment", "commentId"), comments.Delete)

		api.GET("/polls/active", polls.Active)
		api.POST("/polls/:id/vote", polls.Vote)

		bulk := api.Group("/imports", staff)
		bulk.GET("", imports.View)
		bulk.DELETE("", imports.Reset)
		bulk.GET("/template", imports.Template)
		bulk.POST("/file", imports.Accept)
		bulk.POST("/submit", middleware.Audit(logr, models.AuditActionImportSubmit, "import", ""), imports.Submit)
		bulk.POST("/report", imports.ExportOutcome)
		api.GET("/reports/:token", staff, imports.DownloadReport)
	}

	views := NewViewHandler()
	pages := r.Group("", browser...)
	for _, route := range ViewRoutes {
		pages.GET(route.Path, middleware.GuardView(route.Requirement), views.Render(route.Name))
	}

	return r
}
