package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/telehealth-api/internal/middleware"
	"github.com/harentsoaR/telehealth-api/internal/models"
)

// RegisterRoutes mounts every endpoint on r. expertLimiter throttles the
// expert link endpoint.
func (h *Handler) RegisterRoutes(r *gin.Engine, expertLimiter gin.HandlerFunc) {
	r.GET("/health", h.Health)

	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", h.RegisterUser)
		authRoutes.POST("/login", h.Login)
	}

	apiRoutes := r.Group("/api")
	apiRoutes.Use(middleware.AuthMiddleware(h.Tokens)) // Protect all /api routes
	{
		apiRoutes.GET("/users/:id", h.GetUser)
		apiRoutes.PUT("/users/:id", h.UpdateUser)

		apiRoutes.POST("/expert/send-link", expertLimiter, h.SendExpertLink)

		admin := apiRoutes.Group("")
		admin.Use(middleware.RequireRole(models.RoleAdmin))

		admin.GET("/sms-providers", h.GetSmsProviders)
		admin.PATCH("/sms-providers/:id", h.UpdateSmsProvider)

		admin.POST("/whatsapp-templates", h.CreateTemplate)
		admin.GET("/whatsapp-templates", h.GetTemplates)
		admin.DELETE("/whatsapp-templates", h.DeleteTemplate)
		admin.POST("/whatsapp-templates/submit", h.SubmitTemplate)
		admin.POST("/whatsapp-templates/refresh-status", h.RefreshTemplateStatus)
	}
}
