package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/harentsoaR/telehealth-api/internal/models"
)

const DefaultTextbeltURL = "https://textbelt.com/text"

// TextbeltGateway sends SMS through the Textbelt HTTP API.
type TextbeltGateway struct {
	apiKey     string
	url        string
	httpClient *http.Client
	log        *zap.Logger
}

func NewTextbeltGateway(apiKey, url string, logger *zap.Logger) *TextbeltGateway {
	if url == "" {
		url = DefaultTextbeltURL
	}
	return &TextbeltGateway{
		apiKey:     apiKey,
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        logger,
	}
}

func (g *TextbeltGateway) Name() string {
	return "textbelt"
}

func (g *TextbeltGateway) SendSMS(ctx context.Context, msg models.SMSMessage) error {
	phone := models.NormalizePhone(msg.To)
	postBody, err := json.Marshal(map[string]string{
		"phone":   phone,
		"message": msg.Body,
		"key":     g.apiKey,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(postBody))
	if err != nil {
		return fmt.Errorf("failed to create Textbelt request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send Textbelt request: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
		TextID  string `json:"textId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode Textbelt response (status %d): %w", resp.StatusCode, err)
	}
	if !result.Success {
		return fmt.Errorf("textbelt rejected sms: %s", result.Error)
	}

	g.log.Info("sms sent", zap.String("gateway", "textbelt"), zap.String("textId", result.TextID), zap.String("sender", msg.SenderEmail))
	return nil
}
