package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetSmsProviders(c *gin.Context) {
	providers, err := h.SmsProviders.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, providers)
}

func (h *Handler) UpdateSmsProvider(c *gin.Context) {
	var req struct {
		Order  *int    `json:"order" binding:"omitempty,min=0"`
		Prefix *string `json:"prefix"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	provider, err := h.SmsProviders.Update(c.Request.Context(), c.Param("id"), req.Order, req.Prefix)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, provider)
}
