package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/telehealth-api/internal/apperrors"
	"github.com/harentsoaR/telehealth-api/internal/models"
	"github.com/harentsoaR/telehealth-api/internal/services"
)

type templateIDRequest struct {
	ID string `json:"id"`
}

// bindTemplateID reads the {"id": ...} body shared by submit, delete and
// refresh-status.
func (h *Handler) bindTemplateID(c *gin.Context) (primitive.ObjectID, bool) {
	var req templateIDRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		h.respondError(c, apperrors.BadRequest("Template ID is required."))
		return primitive.NilObjectID, false
	}
	id, err := parseObjectID(req.ID, "template")
	if err != nil {
		h.respondError(c, err)
		return primitive.NilObjectID, false
	}
	return id, true
}

func (h *Handler) CreateTemplate(c *gin.Context) {
	var req services.CreateTemplateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tpl, err := h.Templates.Create(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tpl)
}

// GetTemplates lists templates, optionally filtered by ?language= and
// ?approvalStatus=.
func (h *Handler) GetTemplates(c *gin.Context) {
	var query struct {
		Language       string `form:"language"`
		ApprovalStatus string `form:"approvalStatus" binding:"omitempty,template_status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid approvalStatus"})
		return
	}

	templates, err := h.Templates.List(c.Request.Context(), models.TemplateFilter{
		Language: query.Language,
		Status:   models.TemplateStatus(query.ApprovalStatus),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

func (h *Handler) SubmitTemplate(c *gin.Context) {
	id, ok := h.bindTemplateID(c)
	if !ok {
		return
	}

	res, err := h.Templates.Submit(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Template submitted successfully", "providerResponse": res})
}

func (h *Handler) DeleteTemplate(c *gin.Context) {
	id, ok := h.bindTemplateID(c)
	if !ok {
		return
	}

	if err := h.Templates.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Template deleted successfully"})
}

func (h *Handler) RefreshTemplateStatus(c *gin.Context) {
	id, ok := h.bindTemplateID(c)
	if !ok {
		return
	}

	details, err := h.Templates.RefreshStatus(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"approvalDetails": details})
}
