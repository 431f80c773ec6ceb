package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/harentsoaR/telehealth-api/internal/apperrors"
	"github.com/harentsoaR/telehealth-api/internal/models"
	"github.com/harentsoaR/telehealth-api/internal/services"
	"github.com/harentsoaR/telehealth-api/internal/twilio"
	"github.com/harentsoaR/telehealth-api/internal/utils"
)

type UserService interface {
	Create(ctx context.Context, u *models.User) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, changes *models.UserUpdate) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

type TemplateService interface {
	Create(ctx context.Context, in services.CreateTemplateInput) (*models.WhatsappTemplate, error)
	List(ctx context.Context, filter models.TemplateFilter) ([]models.WhatsappTemplate, error)
	Submit(ctx context.Context, id primitive.ObjectID) (*twilio.TemplateResponse, error)
	RefreshStatus(ctx context.Context, id primitive.ObjectID) (*twilio.ApprovalDetails, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type SmsProviderService interface {
	List(ctx context.Context) ([]models.SmsProvider, error)
	Update(ctx context.Context, id string, order *int, prefix *string) (*models.SmsProvider, error)
}

type Notifier interface {
	SendExpertLink(ctx context.Context, req services.ExpertLinkRequest) (*services.ExpertLinkResult, error)
}

type Handler struct {
	Users         UserService
	Templates     TemplateService
	SmsProviders  SmsProviderService
	Notifications Notifier
	Tokens        *utils.TokenIssuer
	Log           *zap.Logger
}

func NewHandler(users UserService, templates TemplateService, smsProviders SmsProviderService, notifications Notifier, tokens *utils.TokenIssuer, logger *zap.Logger) *Handler {
	RegisterValidators()
	return &Handler{
		Users:         users,
		Templates:     templates,
		SmsProviders:  smsProviders,
		Notifications: notifications,
		Tokens:        tokens,
		Log:           logger,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError writes err as {"error": message}. Server errors are logged
// with their cause, which never reaches the client.
func (h *Handler) respondError(c *gin.Context, err error) {
	appErr := apperrors.From(err)
	if appErr.IsServerError() {
		h.Log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("code", string(appErr.Code)),
			zap.Error(err))
	}
	c.JSON(appErr.HTTPCode, gin.H{"error": appErr.Message})
}

func parseObjectID(hex, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperrors.BadRequest("Invalid " + what + " id")
	}
	return id, nil
}
