package services

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/telehealth-api/internal/models"
	"github.com/harentsoaR/telehealth-api/internal/repository"
	"github.com/harentsoaR/telehealth-api/internal/twilio"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func newMemUserRepo(users ...models.User) *memUserRepo {
	r := &memUserRepo{users: map[primitive.ObjectID]models.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.Email != "" {
		for _, existing := range r.users {
			if existing.Email == u.Email {
				return repository.ErrDuplicateEmail
			}
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	r.users[u.ID] = *u
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) FindOthersByEmail(_ context.Context, email string, excludeID primitive.ObjectID) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for id, u := range r.users {
		if u.Email == email && id != excludeID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memUserRepo) Update(_ context.Context, id primitive.ObjectID, fields map[string]interface{}) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if email, ok := fields["email"].(string); ok {
		for otherID, other := range r.users {
			if otherID != id && other.Email == email {
				return nil, repository.ErrDuplicateEmail
			}
		}
		u.Email = email
	}
	if pw, ok := fields["password"].(string); ok {
		u.Password = pw
	}
	if first, ok := fields["firstName"].(string); ok {
		u.FirstName = first
	}
	if status, ok := fields["status"].(string); ok {
		u.Status = status
	}
	r.users[id] = u
	return &u, nil
}

type memTemplateRepo struct {
	mu        sync.Mutex
	templates map[primitive.ObjectID]models.WhatsappTemplate
	// beforeTransition runs with the lock released, before the status check.
	beforeTransition func()
}

func newMemTemplateRepo(templates ...models.WhatsappTemplate) *memTemplateRepo {
	r := &memTemplateRepo{templates: map[primitive.ObjectID]models.WhatsappTemplate{}}
	for _, t := range templates {
		r.templates[t.ID] = t
	}
	return r
}

func (r *memTemplateRepo) Create(_ context.Context, t *models.WhatsappTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	r.templates[t.ID] = *t
	return nil
}

func (r *memTemplateRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.WhatsappTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *memTemplateRepo) Find(_ context.Context, filter models.TemplateFilter) ([]models.WhatsappTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.WhatsappTemplate{}
	for _, t := range r.templates {
		if filter.Language != "" && t.Language != filter.Language {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memTemplateRepo) Transition(_ context.Context, id primitive.ObjectID, tr models.TemplateTransition) error {
	if r.beforeTransition != nil {
		r.beforeTransition()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	if !ok {
		return repository.ErrNotFound
	}
	if t.Status != tr.From {
		return repository.ErrStaleStatus
	}
	t.Status = tr.To
	if tr.TwilioTemplateID != "" {
		t.TwilioTemplateID = tr.TwilioTemplateID
	}
	t.RejectionReason = ""
	if tr.To == models.TemplateStatusRejected {
		t.RejectionReason = tr.RejectionReason
	}
	r.templates[id] = t
	return nil
}

func (r *memTemplateRepo) Delete(_ context.Context, id primitive.ObjectID) (*models.WhatsappTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(r.templates, id)
	return &t, nil
}

func (r *memTemplateRepo) get(id primitive.ObjectID) models.WhatsappTemplate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.templates[id]
}

type mockTemplateProvider struct {
	CreateTemplateFunc      func(ctx context.Context, in twilio.TemplateRequest) (*twilio.TemplateResponse, error)
	FetchApprovalStatusFunc func(ctx context.Context, sid string) (*twilio.ApprovalDetails, error)
	DeleteTemplateFunc      func(ctx context.Context, sid string) error

	created []twilio.TemplateRequest
	deleted []string
}

func (m *mockTemplateProvider) CreateTemplate(ctx context.Context, in twilio.TemplateRequest) (*twilio.TemplateResponse, error) {
	m.created = append(m.created, in)
	if m.CreateTemplateFunc != nil {
		return m.CreateTemplateFunc(ctx, in)
	}
	return &twilio.TemplateResponse{TwilioTemplateID: "HX123", ApprovalStatus: "received", Name: in.Name}, nil
}

func (m *mockTemplateProvider) FetchApprovalStatus(ctx context.Context, sid string) (*twilio.ApprovalDetails, error) {
	if m.FetchApprovalStatusFunc != nil {
		return m.FetchApprovalStatusFunc(ctx, sid)
	}
	return &twilio.ApprovalDetails{Status: "received"}, nil
}

func (m *mockTemplateProvider) DeleteTemplate(ctx context.Context, sid string) error {
	m.deleted = append(m.deleted, sid)
	if m.DeleteTemplateFunc != nil {
		return m.DeleteTemplateFunc(ctx, sid)
	}
	return nil
}

type mockSmsProviderRepo struct {
	ListFunc   func(ctx context.Context) ([]models.SmsProvider, error)
	UpdateFunc func(ctx context.Context, id string, fields map[string]interface{}) (*models.SmsProvider, error)
}

func (m *mockSmsProviderRepo) List(ctx context.Context) ([]models.SmsProvider, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []models.SmsProvider{}, nil
}

func (m *mockSmsProviderRepo) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.SmsProvider, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, fields)
	}
	return nil, repository.ErrNotFound
}

type mockConsultationRepo struct {
	DoctorEmailFunc func(ctx context.Context, id primitive.ObjectID) (string, error)
}

func (m *mockConsultationRepo) DoctorEmail(ctx context.Context, id primitive.ObjectID) (string, error) {
	if m.DoctorEmailFunc != nil {
		return m.DoctorEmailFunc(ctx, id)
	}
	return "", repository.ErrNotFound
}

type recordingGateway struct {
	name string
	err  error
	sent []models.SMSMessage
}

func (g *recordingGateway) Name() string { return g.name }

func (g *recordingGateway) SendSMS(_ context.Context, msg models.SMSMessage) error {
	g.sent = append(g.sent, msg)
	return g.err
}

type recordingEmailSender struct {
	err  error
	sent []sentEmail
}

type sentEmail struct {
	to, subject, text string
}

func (s *recordingEmailSender) SendEmail(_ context.Context, to, subject, text string) error {
	s.sent = append(s.sent, sentEmail{to: to, subject: subject, text: text})
	return s.err
}

type stubTranslator struct{}

func (stubTranslator) T(locale, key string, args ...string) string {
	out := locale + ":" + key
	for _, a := range args {
		out += " " + a
	}
	return out
}
