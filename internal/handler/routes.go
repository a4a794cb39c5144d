package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/card-order-api/internal/middleware"
	appErrors "github.com/noah-isme/card-order-api/pkg/errors"
	"github.com/noah-isme/card-order-api/pkg/response"
)

// Routes bundles the handlers and guards mounted by RegisterRoutes.
type Routes struct {
	Applications *ApplicationHandler
	Admin        *AdminHandler
	Export       *ExportHandler
	// Auth is nil when admin authentication is disabled.
	Auth    *AuthHandler
	Metrics *MetricsHandler

	// AdminGuard protects the admin endpoints; nil leaves them open.
	AdminGuard  gin.HandlerFunc
	SubmitLimit gin.HandlerFunc
	LoginLimit  gin.HandlerFunc
	AuditLogger *zap.Logger
	StaticDir   string
}

// RegisterRoutes mounts the API on r. Paths match the static pages served
// alongside the API.
func RegisterRoutes(r *gin.Engine, routes Routes) {
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		response.Error(c, appErrors.ErrMethodNotAllowed)
	})
	r.NoRoute(notFound(routes.StaticDir))

	if routes.Metrics != nil {
		r.GET("/health", routes.Metrics.Health)
		r.GET("/ready", routes.Metrics.Ready)
		r.GET("/metrics", routes.Metrics.Prometheus)
	}

	api := r.Group("/api")

	if h := routes.Applications; h != nil {
		api.POST("/application-submit", limited(routes.SubmitLimit, h.Submit)...)
		api.GET("/application-confirm", h.Confirm)
		api.POST("/application-approve", h.Approve)
		api.POST("/application-modify", h.Modify)
		api.GET("/application-status", h.Status)
	}

	if routes.Auth != nil {
		api.POST("/admin-login", limited(routes.LoginLimit, routes.Auth.Login)...)
	}

	if h := routes.Admin; h != nil {
		admin := api.Group("")
		if routes.AdminGuard != nil {
			admin.Use(routes.AdminGuard)
		}
		admin.GET("/admin-applications", h.List)
		admin.GET("/admin-application", h.List)
		admin.GET("/admin-detail", h.Detail)
		admin.POST("/admin-status", middleware.Audit(routes.AuditLogger, "status_change"), h.UpdateStatus)
		admin.POST("/admin-upload", middleware.Audit(routes.AuditLogger, "draft_upload"), h.Upload)
		if routes.Export != nil {
			admin.GET("/admin-export", routes.Export.Applications)
		}
	}
}

func limited(limit, h gin.HandlerFunc) []gin.HandlerFunc {
	if limit == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{limit, h}
}

func notFound(staticDir string) gin.HandlerFunc {
	var files http.Handler
	if staticDir != "" {
		files = http.FileServer(http.Dir(staticDir))
	}
	return func(c *gin.Context) {
		method := c.Request.Method
		if files != nil && (method == http.MethodGet || method == http.MethodHead) && !strings.HasPrefix(c.Request.URL.Path, "/api/") {
			files.ServeHTTP(c.Writer, c.Request)
			return
		}
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "Not found"))
	}
}
