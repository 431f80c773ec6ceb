package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to TemplateStatus
		allowed  bool
	}{
		{TemplateStatusDraft, TemplateStatusPending, true},
		{TemplateStatusDraft, TemplateStatusApproved, false},
		{TemplateStatusDraft, TemplateStatusDraft, false},
		{TemplateStatusPending, TemplateStatusApproved, true},
		{TemplateStatusPending, TemplateStatusRejected, true},
		{TemplateStatusPending, TemplateStatusPending, true},
		{TemplateStatusPending, TemplateStatusDraft, false},
		{TemplateStatusApproved, TemplateStatusDraft, false},
		{TemplateStatusApproved, TemplateStatusRejected, false},
		{TemplateStatusRejected, TemplateStatusDraft, false},
		{TemplateStatusRejected, TemplateStatusPending, false},
		{TemplateStatus("bogus"), TemplateStatusPending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestParseApprovalStatus(t *testing.T) {
	s, ok := ParseApprovalStatus("APPROVED")
	assert.True(t, ok)
	assert.Equal(t, TemplateStatusApproved, s)

	s, ok = ParseApprovalStatus("received")
	assert.True(t, ok)
	assert.Equal(t, TemplateStatusPending, s)

	_, ok = ParseApprovalStatus("paused")
	assert.False(t, ok)
}

func TestSmsProviderMatches(t *testing.T) {
	p := SmsProvider{ID: "twilio", Prefix: "+41, 0033"}
	assert.True(t, p.Matches(NormalizePhone("0041 79 000 00 00")))
	assert.True(t, p.Matches(NormalizePhone("+33 6 00 00 00 00")))
	assert.False(t, p.Matches(NormalizePhone("+1 555 0100")))

	assert.True(t, SmsProvider{Prefix: "*"}.Matches("+1555"))
	assert.True(t, SmsProvider{}.Matches("+1555"))
}

func TestUserJSONHidesSecrets(t *testing.T) {
	u := User{Email: "a@b.c", Password: "$2a$10$hash", SmsVerificationCode: "123456", ResetPasswordToken: "tok"}
	b, err := json.Marshal(u)
	require.NoError(t, err)
	body := string(b)
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "123456")
	assert.NotContains(t, body, "tok")
	assert.Contains(t, body, "a@b.c")
}

func TestUserApplyDefaults(t *testing.T) {
	u := User{}
	u.ApplyDefaults()
	assert.Equal(t, UserStatusApproved, u.Status)
	assert.Equal(t, "0", u.DoctorTermsVersion)
	assert.Equal(t, "2", u.MessageService)
}

func TestUserUpdateFields(t *testing.T) {
	email := "x@y.z"
	notif := false
	fields := (&UserUpdate{Email: &email, EnableNotif: &notif}).Fields()
	assert.Equal(t, map[string]interface{}{"email": "x@y.z", "enableNotif": false}, fields)
}
