package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/telehealth-api/internal/services"
)

type SendExpertLinkRequest struct {
	To             string `json:"to" binding:"required"`
	ExpertLink     string `json:"expertLink"`
	ConsultationID string `json:"consultationId"`
}

// SendExpertLink sends the expert consultation link by SMS or email. The
// message language comes from the "locale" header.
func (h *Handler) SendExpertLink(c *gin.Context) {
	var req SendExpertLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.Notifications.SendExpertLink(c.Request.Context(), services.ExpertLinkRequest{
		To:             req.To,
		ExpertLink:     req.ExpertLink,
		ConsultationID: req.ConsultationID,
		Locale:         c.GetHeader("locale"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
