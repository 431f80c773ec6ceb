package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/harentsoaR/telehealth-api/internal/apperrors"
	"github.com/harentsoaR/telehealth-api/internal/models"
	"github.com/harentsoaR/telehealth-api/internal/repository"
)

type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
)

// phonePattern accepts digits and spaces after the prefix, up to the end or an
// "@". "+1@example.com" then matches both channels and is rejected as ambiguous.
var phonePattern = regexp.MustCompile(`^(\+|00)[0-9 ]+(@|$)`)

// ClassifyDestination decides whether to is a phone number or an email
// address. Exactly one of the two must match.
func ClassifyDestination(to string) (Channel, error) {
	to = strings.TrimSpace(to)
	isPhone := phonePattern.MatchString(to)
	isEmail := strings.Contains(to, "@")

	switch {
	case isPhone && !isEmail:
		return ChannelSMS, nil
	case isEmail && !isPhone:
		return ChannelEmail, nil
	default:
		return "", apperrors.InvalidDestination()
	}
}

type Translator interface {
	T(locale, key string, args ...string) string
}

type SMSDispatcher interface {
	Send(ctx context.Context, msg models.SMSMessage) error
}

type NotificationService struct {
	sms           SMSDispatcher
	email         EmailSender
	consultations repository.ConsultationRepository
	translator    Translator
	log           *zap.Logger
}

func NewNotificationService(sms SMSDispatcher, email EmailSender, consultations repository.ConsultationRepository, translator Translator, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		sms:           sms,
		email:         email,
		consultations: consultations,
		translator:    translator,
		log:           logger,
	}
}

type ExpertLinkRequest struct {
	To             string
	ExpertLink     string
	ConsultationID string
	Locale         string
}

type ExpertLinkResult struct {
	ChannelUsed Channel `json:"channelUsed"`
	Message     string  `json:"message"`
}

// SendExpertLink delivers the expert link by SMS or email depending on the
// shape of req.To, and waits for the channel to accept it.
func (s *NotificationService) SendExpertLink(ctx context.Context, req ExpertLinkRequest) (*ExpertLinkResult, error) {
	if strings.TrimSpace(req.ExpertLink) == "" {
		return nil, apperrors.BadRequest("expertLink is required")
	}
	channel, err := ClassifyDestination(req.To)
	if err != nil {
		return nil, err
	}

	text := s.translator.T(req.Locale, "please use this link", req.ExpertLink)

	switch channel {
	case ChannelSMS:
		msg := models.SMSMessage{
			To:          strings.TrimSpace(req.To),
			Body:        text,
			SenderEmail: s.senderEmail(ctx, req.ConsultationID),
		}
		if err := s.sms.Send(ctx, msg); err != nil {
			return nil, apperrors.Dispatch(err)
		}
		return &ExpertLinkResult{ChannelUsed: ChannelSMS, Message: "SMS sent successfully"}, nil

	default:
		subject := s.translator.T(req.Locale, "consultation link")
		if err := s.email.SendEmail(ctx, strings.TrimSpace(req.To), subject, text); err != nil {
			return nil, apperrors.Dispatch(err)
		}
		return &ExpertLinkResult{ChannelUsed: ChannelEmail, Message: "Email sent successfully"}, nil
	}
}

// senderEmail resolves the consultation doctor's email; "" when unknown.
func (s *NotificationService) senderEmail(ctx context.Context, consultationID string) string {
	if consultationID == "" {
		return ""
	}
	id, err := primitive.ObjectIDFromHex(consultationID)
	if err != nil {
		s.log.Debug("ignoring malformed consultation id", zap.String("consultationId", consultationID))
		return ""
	}
	email, err := s.consultations.DoctorEmail(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("failed to resolve consultation doctor", zap.String("consultationId", consultationID), zap.Error(err))
		}
		return ""
	}
	return email
}
