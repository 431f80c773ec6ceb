package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/harentsoaR/telehealth-api/internal/apperrors"
	"github.com/harentsoaR/telehealth-api/internal/models"
	"github.com/harentsoaR/telehealth-api/internal/repository"
	"github.com/harentsoaR/telehealth-api/internal/twilio"
)

// TemplateProvider is the remote side of the template approval workflow.
type TemplateProvider interface {
	CreateTemplate(ctx context.Context, in twilio.TemplateRequest) (*twilio.TemplateResponse, error)
	FetchApprovalStatus(ctx context.Context, sid string) (*twilio.ApprovalDetails, error)
	DeleteTemplate(ctx context.Context, sid string) error
}

type TemplateService struct {
	templates repository.TemplateRepository
	provider  TemplateProvider
	log       *zap.Logger
}

func NewTemplateService(templates repository.TemplateRepository, provider TemplateProvider, logger *zap.Logger) *TemplateService {
	return &TemplateService{templates: templates, provider: provider, log: logger}
}

type CreateTemplateInput struct {
	Name        string            `json:"name" binding:"required"`
	Language    string            `json:"language" binding:"required"`
	Body        string            `json:"body" binding:"required"`
	Category    string            `json:"category"`
	ContentType string            `json:"contentType"`
	Variables   map[string]string `json:"variables"`
}

// Create stores a new template as a draft.
func (s *TemplateService) Create(ctx context.Context, in CreateTemplateInput) (*models.WhatsappTemplate, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Language) == "" || strings.TrimSpace(in.Body) == "" {
		return nil, apperrors.BadRequest("name, language and body are required")
	}
	contentType := in.ContentType
	if contentType == "" {
		contentType = twilio.DefaultContentType
	}
	now := time.Now()
	t := &models.WhatsappTemplate{
		Name:        in.Name,
		Language:    in.Language,
		Body:        in.Body,
		Category:    in.Category,
		ContentType: contentType,
		Variables:   in.Variables,
		Status:      models.TemplateStatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.templates.Create(ctx, t); err != nil {
		return nil, apperrors.Internal("Failed to create template", err)
	}
	return t, nil
}

func (s *TemplateService) List(ctx context.Context, filter models.TemplateFilter) ([]models.WhatsappTemplate, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.BadRequest("Invalid approvalStatus")
	}
	templates, err := s.templates.Find(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch templates", err)
	}
	return templates, nil
}

// Submit sends a draft template to the provider and moves it to pending.
func (s *TemplateService) Submit(ctx context.Context, id primitive.ObjectID) (*twilio.TemplateResponse, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status != models.TemplateStatusDraft {
		return nil, apperrors.InvalidState("Only draft templates can be submitted")
	}

	res, err := s.provider.CreateTemplate(ctx, twilio.TemplateRequest{
		Name:        t.Name,
		Language:    t.Language,
		Body:        t.Body,
		Category:    t.Category,
		ContentType: t.ContentType,
		Variables:   t.Variables,
	})
	if err != nil {
		s.log.Error("failed to submit template", zap.String("templateId", id.Hex()), zap.Error(err))
		return nil, apperrors.Provider("Failed to submit template", err)
	}

	err = s.transition(ctx, t, models.TemplateTransition{
		From:             models.TemplateStatusDraft,
		To:               models.TemplateStatusPending,
		TwilioTemplateID: res.TwilioTemplateID,
	})
	if err != nil {
		// The remote template exists but is not recorded locally.
		if delErr := s.provider.DeleteTemplate(ctx, res.TwilioTemplateID); delErr != nil {
			s.log.Warn("failed to remove unrecorded remote template",
				zap.String("twilioTemplateId", res.TwilioTemplateID), zap.Error(delErr))
		}
		return nil, err
	}
	s.log.Info("template submitted", zap.String("templateId", id.Hex()), zap.String("twilioTemplateId", res.TwilioTemplateID))
	return res, nil
}

// RefreshStatus pulls the provider's verdict for a submitted template and
// stores it.
func (s *TemplateService) RefreshStatus(ctx context.Context, id primitive.ObjectID) (*twilio.ApprovalDetails, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.Submitted() {
		return nil, apperrors.NotFound("Template has not been submitted")
	}

	details, err := s.provider.FetchApprovalStatus(ctx, t.TwilioTemplateID)
	if err != nil {
		s.log.Error("failed to fetch template status", zap.String("templateId", id.Hex()), zap.Error(err))
		return nil, apperrors.Provider("Failed to fetch template status", err)
	}
	next, ok := models.ParseApprovalStatus(details.Status)
	if !ok {
		return nil, apperrors.Provider("Unknown approval status "+details.Status, nil)
	}

	tr := models.TemplateTransition{From: t.Status, To: next}
	if next == models.TemplateStatusRejected {
		tr.RejectionReason = details.RejectionReason
	}
	if err := s.transition(ctx, t, tr); err != nil {
		return nil, err
	}
	return details, nil
}

// Delete removes the template locally. The remote counterpart is deleted
// first on a best-effort basis; a remote failure is only logged.
func (s *TemplateService) Delete(ctx context.Context, id primitive.ObjectID) error {
	t, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if t.Submitted() {
		if err := s.provider.DeleteTemplate(ctx, t.TwilioTemplateID); err != nil {
			s.log.Warn("failed to delete remote template, deleting locally anyway",
				zap.String("templateId", id.Hex()),
				zap.String("twilioTemplateId", t.TwilioTemplateID),
				zap.Error(err))
		}
	}

	if _, err := s.templates.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("Template not found")
		}
		return apperrors.Internal("Failed to delete template", err)
	}
	return nil
}

func (s *TemplateService) find(ctx context.Context, id primitive.ObjectID) (*models.WhatsappTemplate, error) {
	t, err := s.templates.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("Template not found")
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to load template", err)
	}
	return t, nil
}

// transition is the only place template status is written.
func (s *TemplateService) transition(ctx context.Context, t *models.WhatsappTemplate, tr models.TemplateTransition) error {
	if !tr.From.CanTransitionTo(tr.To) {
		return apperrors.InvalidState("Template cannot move from " + string(tr.From) + " to " + string(tr.To))
	}
	err := s.templates.Transition(ctx, t.ID, tr)
	switch {
	case errors.Is(err, repository.ErrStaleStatus):
		return apperrors.InvalidState("Template status changed concurrently")
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NotFound("Template not found")
	case err != nil:
		return apperrors.Internal("Failed to update template status", err)
	}
	return nil
}
