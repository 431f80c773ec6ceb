package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/harentsoaR/telehealth-api/internal/models"
	"github.com/harentsoaR/telehealth-api/internal/repository"
)

type SMSGateway interface {
	Name() string
	SendSMS(ctx context.Context, msg models.SMSMessage) error
}

// SMSRouter picks the gateway for a destination from the configured
// SmsProvider records: lowest order first, first matching prefix wins.
type SMSRouter struct {
	providers repository.SmsProviderRepository
	gateways  map[string]SMSGateway
	fallback  string
	log       *zap.Logger
}

func NewSMSRouter(providers repository.SmsProviderRepository, fallback string, logger *zap.Logger, gateways ...SMSGateway) *SMSRouter {
	r := &SMSRouter{
		providers: providers,
		gateways:  make(map[string]SMSGateway, len(gateways)),
		fallback:  fallback,
		log:       logger,
	}
	for _, g := range gateways {
		r.gateways[g.Name()] = g
	}
	return r
}

func (r *SMSRouter) Send(ctx context.Context, msg models.SMSMessage) error {
	gw, err := r.route(ctx, models.NormalizePhone(msg.To))
	if err != nil {
		return err
	}
	return gw.SendSMS(ctx, msg)
}

func (r *SMSRouter) route(ctx context.Context, phone string) (SMSGateway, error) {
	providers, err := r.providers.List(ctx)
	if err != nil {
		r.log.Warn("failed to load sms providers, using fallback gateway", zap.Error(err))
		providers = nil
	}

	for _, p := range providers {
		gw, ok := r.gateways[p.ID]
		if !ok {
			continue
		}
		if p.Matches(phone) {
			return gw, nil
		}
	}

	if gw, ok := r.gateways[r.fallback]; ok {
		return gw, nil
	}
	return nil, fmt.Errorf("no sms gateway available for %s", phone)
}
