package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/harentsoaR/telehealth-api/internal/apperrors"
	"github.com/harentsoaR/telehealth-api/internal/models"
	"github.com/harentsoaR/telehealth-api/internal/repository"
)

type SmsProviderService struct {
	providers repository.SmsProviderRepository
	log       *zap.Logger
}

func NewSmsProviderService(providers repository.SmsProviderRepository, logger *zap.Logger) *SmsProviderService {
	return &SmsProviderService{providers: providers, log: logger}
}

func (s *SmsProviderService) List(ctx context.Context) ([]models.SmsProvider, error) {
	providers, err := s.providers.List(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to list sms providers", err)
	}
	return providers, nil
}

// Update changes the priority and/or prefix of the provider named id.
func (s *SmsProviderService) Update(ctx context.Context, id string, order *int, prefix *string) (*models.SmsProvider, error) {
	if id == "" {
		return nil, apperrors.BadRequest("Provider name is required.")
	}
	fields := map[string]interface{}{}
	if order != nil {
		fields["order"] = *order
	}
	if prefix != nil {
		fields["prefix"] = *prefix
	}
	if len(fields) == 0 {
		return nil, apperrors.BadRequest("No update fields provided")
	}

	p, err := s.providers.Update(ctx, id, fields)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("Provider not found.")
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to update sms provider", err)
	}
	s.log.Info("sms provider updated", zap.String("provider", p.ID), zap.Int("order", p.Order), zap.String("prefix", p.Prefix))
	return p, nil
}
