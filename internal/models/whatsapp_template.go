package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TemplateStatus string

const (
	TemplateStatusDraft    TemplateStatus = "draft"
	TemplateStatusPending  TemplateStatus = "pending"
	TemplateStatusApproved TemplateStatus = "approved"
	TemplateStatusRejected TemplateStatus = "rejected"
)

// templateTransitions lists, per status, the statuses a write may move it to.
// Nothing ever goes back to draft.
var templateTransitions = map[TemplateStatus][]TemplateStatus{
	TemplateStatusDraft:    {TemplateStatusPending},
	TemplateStatusPending:  {TemplateStatusPending, TemplateStatusApproved, TemplateStatusRejected},
	TemplateStatusApproved: {TemplateStatusApproved},
	TemplateStatusRejected: {TemplateStatusRejected},
}

func (s TemplateStatus) Valid() bool {
	_, ok := templateTransitions[s]
	return ok
}

func (s TemplateStatus) CanTransitionTo(next TemplateStatus) bool {
	for _, allowed := range templateTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseApprovalStatus maps a provider approval verdict onto a template status.
// Twilio reports in-review templates as "received" or "pending", and a
// content resource that was never sent for approval as "unsubmitted".
func ParseApprovalStatus(providerStatus string) (TemplateStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(providerStatus)) {
	case "approved":
		return TemplateStatusApproved, true
	case "rejected":
		return TemplateStatusRejected, true
	case "pending", "received", "unsubmitted":
		return TemplateStatusPending, true
	default:
		return "", false
	}
}

type WhatsappTemplate struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name             string             `bson:"name" json:"name"`
	Language         string             `bson:"language" json:"language"`
	Body             string             `bson:"body" json:"body"`
	Category         string             `bson:"category" json:"category"`
	ContentType      string             `bson:"contentType" json:"contentType"`
	Variables        map[string]string  `bson:"variables,omitempty" json:"variables,omitempty"`
	Status           TemplateStatus     `bson:"status" json:"status"`
	TwilioTemplateID string             `bson:"twilioTemplateId,omitempty" json:"twilioTemplateId,omitempty"`
	RejectionReason  string             `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Submitted reports whether the template has a counterpart at the provider.
func (t *WhatsappTemplate) Submitted() bool {
	return t.TwilioTemplateID != ""
}

type TemplateFilter struct {
	Language string
	Status   TemplateStatus
}

// TemplateTransition describes one status write. RejectionReason is stored
// only when To is rejected and cleared otherwise; TwilioTemplateID is stored
// when non-empty.
type TemplateTransition struct {
	From             TemplateStatus
	To               TemplateStatus
	TwilioTemplateID string
	RejectionReason  string
}
