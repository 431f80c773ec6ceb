package twilio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	twiliosdk "github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	content "github.com/twilio/twilio-go/rest/content/v1"
	"go.uber.org/zap"

	"github.com/harentsoaR/telehealth-api/internal/models"
)

const (
	DefaultAPIBaseURL     = "https://api.twilio.com"
	DefaultContentBaseURL = "https://content.twilio.com"
	DefaultContentType    = "twilio/text"
)

type Config struct {
	AccountSID string
	AuthToken  string
	From       string

	// APIBaseURL and ContentBaseURL redirect the SDK's requests, e.g. to a
	// proxy or a local test server.
	APIBaseURL     string
	ContentBaseURL string

	// Breaker trips after MaxFailures consecutive transport or 5xx failures.
	MaxFailures uint32
	Interval    time.Duration
	Timeout     time.Duration
}

// Client wraps the Twilio SDK for the Messages API (SMS) and the Content API
// (WhatsApp templates and their approval requests).
type Client struct {
	cfg  Config
	rest *twiliosdk.RestClient
	cb   *gobreaker.CircuitBreaker
	log  *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	if cfg.ContentBaseURL == "" {
		cfg.ContentBaseURL = DefaultContentBaseURL
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}

	httpClient := &http.Client{
		Timeout:   10 * time.Second,
		Transport: newBaseURLTransport(cfg, logger),
	}
	base := &twilioclient.Client{
		Credentials: twilioclient.NewCredentials(cfg.AccountSID, cfg.AuthToken),
		HTTPClient:  httpClient,
	}
	base.SetAccountSid(cfg.AccountSID)

	st := gobreaker.Settings{
		Name:        "twilio",
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isClientError(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state", zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	}
	return &Client{
		cfg:  cfg,
		rest: twiliosdk.NewRestClientWithParams(twiliosdk.ClientParams{Client: base}),
		cb:   gobreaker.NewCircuitBreaker(st),
		log:  logger,
	}
}

// baseURLTransport rewrites requests for the default Twilio hosts to the
// configured base URLs.
type baseURLTransport struct {
	next    http.RoundTripper
	targets map[string]*url.URL
}

func newBaseURLTransport(cfg Config, logger *zap.Logger) http.RoundTripper {
	t := &baseURLTransport{next: http.DefaultTransport, targets: map[string]*url.URL{}}
	for def, configured := range map[string]string{
		DefaultAPIBaseURL:     cfg.APIBaseURL,
		DefaultContentBaseURL: cfg.ContentBaseURL,
	} {
		if configured == def {
			continue
		}
		from, _ := url.Parse(def)
		to, err := url.Parse(configured)
		if err != nil || to.Host == "" {
			logger.Warn("ignoring invalid twilio base url", zap.String("url", configured))
			continue
		}
		t.targets[from.Host] = to
	}
	return t
}

func (t *baseURLTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if to, ok := t.targets[req.URL.Host]; ok {
		req = req.Clone(req.Context())
		req.URL.Scheme = to.Scheme
		req.URL.Host = to.Host
		req.Host = to.Host
	}
	return t.next.RoundTrip(req)
}

// isClientError reports whether err is a 4xx answer from Twilio. Those are
// caller mistakes and do not count against the breaker.
func isClientError(err error) bool {
	var restErr *twilioclient.TwilioRestError
	return errors.As(err, &restErr) && restErr.Status >= 400 && restErr.Status < 500
}

func isNotFound(err error) bool {
	var restErr *twilioclient.TwilioRestError
	return errors.As(err, &restErr) && restErr.Status == http.StatusNotFound
}

// call runs fn through the circuit breaker. The SDK takes no context, so a
// cancelled ctx only stops calls that have not started.
func call[T any](ctx context.Context, c *Client, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	out, err := c.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return zero, err
	}
	return out.(T), nil
}

// Name identifies this client as an SMS gateway.
func (c *Client) Name() string {
	return "twilio"
}

// SendSMS sends an SMS message via Twilio.
func (c *Client) SendSMS(ctx context.Context, msg models.SMSMessage) error {
	params := &openapi.CreateMessageParams{}
	params.SetTo(models.NormalizePhone(msg.To))
	params.SetFrom(c.cfg.From)
	params.SetBody(msg.Body)

	sent, err := call(ctx, c, func() (*openapi.ApiV2010Message, error) {
		return c.rest.Api.CreateMessage(params)
	})
	if err != nil {
		return fmt.Errorf("failed to send Twilio SMS: %w", err)
	}

	if sent == nil || sent.Sid == nil {
		c.log.Debug("twilio response carried no message sid")
		sent = &openapi.ApiV2010Message{}
	}
	c.log.Info("sms sent", zap.String("gateway", "twilio"), zap.String("sid", deref(sent.Sid)), zap.String("sender", msg.SenderEmail))
	return nil
}

type TemplateRequest struct {
	Name        string
	Language    string
	Body        string
	Category    string
	ContentType string
	Variables   map[string]string
}

type TemplateResponse struct {
	TwilioTemplateID string `json:"twilioTemplateId"`
	ApprovalStatus   string `json:"approvalStatus"`
	Name             string `json:"name"`
	Category         string `json:"category"`
}

type ApprovalDetails struct {
	Status          string `json:"status"`
	RejectionReason string `json:"rejectionReason,omitempty"`
	Name            string `json:"name,omitempty"`
	Category        string `json:"category,omitempty"`
}

func contentTypes(contentType, body string) (content.Types, error) {
	switch contentType {
	case "", DefaultContentType:
		return content.Types{TwilioText: &content.TwilioText{Body: body}}, nil
	default:
		return content.Types{}, fmt.Errorf("unsupported content type %q", contentType)
	}
}

// CreateTemplate creates the content resource and sends it for WhatsApp
// approval. If the approval request fails, the freshly created content is
// removed again so no orphan is left at Twilio.
func (c *Client) CreateTemplate(ctx context.Context, in TemplateRequest) (*TemplateResponse, error) {
	types, err := contentTypes(in.ContentType, in.Body)
	if err != nil {
		return nil, err
	}
	createParams := &content.CreateContentParams{}
	createParams.SetContentCreateRequest(content.ContentCreateRequest{
		FriendlyName: in.Name,
		Language:     in.Language,
		Variables:    in.Variables,
		Types:        types,
	})

	created, err := call(ctx, c, func() (*content.ContentV1Content, error) {
		return c.rest.ContentV1.CreateContent(createParams)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create content: %w", err)
	}
	sid := deref(created.Sid)
	if sid == "" {
		return nil, errors.New("twilio returned no content sid")
	}

	approvalParams := &content.CreateApprovalCreateParams{}
	approvalParams.SetContentApprovalRequest(content.ContentApprovalRequest{
		Name:     in.Name,
		Category: in.Category,
	})
	approval, err := call(ctx, c, func() (*content.ContentV1ApprovalCreate, error) {
		return c.rest.ContentV1.CreateApprovalCreate(sid, approvalParams)
	})
	if err != nil {
		if delErr := c.DeleteTemplate(context.Background(), sid); delErr != nil {
			c.log.Warn("failed to clean up content after approval error", zap.String("sid", sid), zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to request whatsapp approval: %w", err)
	}

	return &TemplateResponse{
		TwilioTemplateID: sid,
		ApprovalStatus:   deref(approval.Status),
		Name:             deref(approval.Name),
		Category:         deref(approval.Category),
	}, nil
}

// FetchApprovalStatus returns the WhatsApp approval verdict for a content sid.
func (c *Client) FetchApprovalStatus(ctx context.Context, sid string) (*ApprovalDetails, error) {
	fetched, err := call(ctx, c, func() (*content.ContentV1ApprovalFetch, error) {
		return c.rest.ContentV1.FetchApprovalFetch(sid)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch approval status: %w", err)
	}
	if fetched.Whatsapp == nil {
		return nil, errors.New("twilio returned no whatsapp approval")
	}

	// The SDK leaves the whatsapp object untyped.
	raw, err := json.Marshal(fetched.Whatsapp)
	if err != nil {
		return nil, fmt.Errorf("failed to read whatsapp approval: %w", err)
	}
	var whatsapp struct {
		Name            string `json:"name"`
		Category        string `json:"category"`
		Status          string `json:"status"`
		RejectionReason string `json:"rejection_reason"`
	}
	if err := json.Unmarshal(raw, &whatsapp); err != nil {
		return nil, fmt.Errorf("failed to read whatsapp approval: %w", err)
	}
	return &ApprovalDetails{
		Status:          whatsapp.Status,
		RejectionReason: whatsapp.RejectionReason,
		Name:            whatsapp.Name,
		Category:        whatsapp.Category,
	}, nil
}

// DeleteTemplate deletes a content resource. A resource that is already gone
// counts as deleted.
func (c *Client) DeleteTemplate(ctx context.Context, sid string) error {
	_, err := call(ctx, c, func() (struct{}, error) {
		return struct{}{}, c.rest.ContentV1.DeleteContent(sid)
	})
	if isNotFound(err) {
		return nil
	}
	return err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
