package twilio

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	twilioclient "github.com/twilio/twilio-go/client"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/harentsoaR/telehealth-api/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		AccountSID:     "AC123",
		AuthToken:      "token",
		From:           "+15550000000",
		APIBaseURL:     srv.URL,
		ContentBaseURL: srv.URL,
		MaxFailures:    2,
	}, zap.NewNop())
}

func TestSendSMS(t *testing.T) {
	var got struct{ to, from, body, user string }
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", r.URL.Path)
		require.NoError(t, r.ParseForm())
		got.to, got.from, got.body = r.PostForm.Get("To"), r.PostForm.Get("From"), r.PostForm.Get("Body")
		got.user, _, _ = r.BasicAuth()
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM1"}`))
	}))

	err := c.SendSMS(context.Background(), models.SMSMessage{To: "0041 79 123 45 67", Body: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "+41791234567", got.to)
	assert.Equal(t, "+15550000000", got.from)
	assert.Equal(t, "hello", got.body)
	assert.Equal(t, "AC123", got.user)
}

func TestSendSMSWithoutSidLogsAtDebug(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)
	core, logs := observer.New(zapcore.DebugLevel)
	c := NewClient(Config{AccountSID: "AC123", AuthToken: "token", From: "+15550000000", APIBaseURL: srv.URL}, zap.New(core))

	require.NoError(t, c.SendSMS(context.Background(), models.SMSMessage{To: "+41791234567", Body: "hi"}))
	assert.Equal(t, 1, logs.FilterMessage("twilio response carried no message sid").FilterLevelExact(zapcore.DebugLevel).Len())
	assert.Equal(t, 1, logs.FilterMessage("sms sent").Len())
}

func TestSendSMSClientError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":21211,"message":"Invalid 'To' Phone Number","status":400}`))
	}))

	err := c.SendSMS(context.Background(), models.SMSMessage{To: "+1", Body: "x"})
	var restErr *twilioclient.TwilioRestError
	require.True(t, errors.As(err, &restErr))
	assert.Equal(t, 21211, restErr.Code)
	assert.Equal(t, http.StatusBadRequest, restErr.Status)
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":21211,"message":"Invalid 'To' Phone Number","status":400}`))
	}))

	for i := 0; i < 3; i++ {
		err := c.SendSMS(context.Background(), models.SMSMessage{To: "+1", Body: "x"})
		assert.Error(t, err)
		assert.NotErrorIs(t, err, gobreaker.ErrOpenState)
	}
	assert.Equal(t, int32(3), calls.Load())
}

func TestCancelledContextSkipsCall(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.SendSMS(ctx, models.SMSMessage{To: "+41791234567", Body: "x"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls.Load())
}

func TestCreateTemplate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/Content", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "greeting", payload["friendly_name"])
		assert.Equal(t, "en", payload["language"])
		types := payload["types"].(map[string]interface{})
		assert.Equal(t, map[string]interface{}{"body": "Hello {{1}}"}, types["twilio/text"])
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"HX123"}`))
	})
	mux.HandleFunc("/v1/Content/HX123/ApprovalRequests/whatsapp", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"name":"greeting","category":"UTILITY","status":"received"}`))
	})
	c := newTestClient(t, mux)

	resp, err := c.CreateTemplate(context.Background(), TemplateRequest{
		Name: "greeting", Language: "en", Body: "Hello {{1}}", Category: "UTILITY",
		Variables: map[string]string{"1": "Ada"},
	})
	require.NoError(t, err)
	assert.Equal(t, "HX123", resp.TwilioTemplateID)
	assert.Equal(t, "received", resp.ApprovalStatus)
}

func TestCreateTemplateRejectsUnknownContentType(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))

	_, err := c.CreateTemplate(context.Background(), TemplateRequest{Name: "x", Language: "en", Body: "b", ContentType: "twilio/card"})
	assert.Error(t, err)
	assert.Zero(t, calls.Load())
}

func TestCreateTemplateCleansUpWhenApprovalFails(t *testing.T) {
	var deleted atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/Content", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"HX9"}`))
	})
	mux.HandleFunc("/v1/Content/HX9/ApprovalRequests/whatsapp", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":20001,"message":"bad category","status":400}`))
	})
	mux.HandleFunc("/v1/Content/HX9", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		deleted.Store(true)
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, mux)

	_, err := c.CreateTemplate(context.Background(), TemplateRequest{Name: "x", Language: "en", Body: "b"})
	assert.Error(t, err)
	assert.True(t, deleted.Load())
}

func TestFetchApprovalStatus(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/Content/HX123/ApprovalRequests", r.URL.Path)
		_, _ = w.Write([]byte(`{"sid":"HX123","whatsapp":{"name":"greeting","category":"UTILITY","status":"rejected","rejection_reason":"Duplicate content"}}`))
	}))

	details, err := c.FetchApprovalStatus(context.Background(), "HX123")
	require.NoError(t, err)
	assert.Equal(t, "rejected", details.Status)
	assert.Equal(t, "Duplicate content", details.RejectionReason)
}

func TestDeleteTemplateTreatsNotFoundAsDeleted(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":20404,"message":"not found","status":404}`))
	}))

	assert.NoError(t, c.DeleteTemplate(context.Background(), "HXgone"))
}

func TestBreakerOpensAfterServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	for i := 0; i < 2; i++ {
		_, err := c.FetchApprovalStatus(context.Background(), "HX1")
		assert.Error(t, err)
	}
	_, err := c.FetchApprovalStatus(context.Background(), "HX1")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), calls.Load())
}
