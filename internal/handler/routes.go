package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-id-api/internal/middleware"
	"github.com/noah-isme/campus-id-api/internal/service"
)

// Routes groups the handlers mounted under the API prefix.
type Routes struct {
	Auth          *service.AuthService
	AuthHandler   *AuthHandler
	Dashboard     *DashboardHandler
	Wizard        *WizardHandler
	Track         *TrackHandler
	AdminRequests *AdminRequestHandler
	Reports       *ReportHandler
	Metrics       *MetricsHandler
	AuditLogger   *zap.Logger
}

// Register mounts every route on api. Identify runs for the whole group so the policy
// sees the caller's session.
func (rt Routes) Register(api *gin.RouterGroup) {
	api.Use(middleware.Identify(rt.Auth))

	auth := api.Group("/auth")
	auth.POST("/login", rt.AuthHandler.Login)
	auth.POST("/register", rt.AuthHandler.Register)
	auth.POST("/forgot-password", rt.AuthHandler.ForgotPassword)
	auth.GET("/access", rt.AuthHandler.Access)
	auth.POST("/logout", middleware.RequireClient(), rt.AuthHandler.Logout)
	auth.GET("/me", middleware.RequireAuth(), rt.AuthHandler.Me)

	protected := api.Group("", middleware.RequireAuth())
	protected.GET("/dashboard", rt.Dashboard.Student)
	protected.GET("/track-request/:id", rt.Track.Track)

	wizard := protected.Group("/request-id")
	wizard.POST("", rt.Wizard.Start)
	wizard.GET("", rt.Wizard.State)
	wizard.PATCH("", rt.Wizard.Update)
	wizard.DELETE("", rt.Wizard.Cancel)
	wizard.POST("/photo", rt.Wizard.AttachPhoto)
	wizard.DELETE("/photo", rt.Wizard.ClearPhoto)
	wizard.POST("/next", rt.Wizard.Next)
	wizard.POST("/back", rt.Wizard.Back)
	wizard.POST("/submit", rt.Wizard.Submit)

	admin := api.Group("/admin", middleware.RequireAdmin(), middleware.ResponseMeta())
	admin.GET("", rt.Dashboard.Admin)
	admin.GET("/metrics", rt.Metrics.System)
	admin.GET("/requests", rt.AdminRequests.List)
	admin.POST("/requests/:id/:action", middleware.Audit(rt.AuditLogger, "review", "id_request"), rt.AdminRequests.Act)
	admin.POST("/request-batches/:action", middleware.Audit(rt.AuditLogger, "review_batch", "id_request"), rt.AdminRequests.ActBatch)
	admin.GET("/reports/summary", rt.Reports.Summary)
	admin.POST("/reports/generate", middleware.Audit(rt.AuditLogger, "generate", "report"), rt.Reports.GenerateReport)
	admin.GET("/reports/status/:id", rt.Reports.ReportStatus)

	api.GET("/export/:token", rt.Reports.DownloadReport)
}
