package models

import "strings"

// SmsProvider is keyed by the gateway name, e.g. "twilio" or "textbelt".
type SmsProvider struct {
	ID     string `bson:"_id" json:"id"`
	Order  int    `bson:"order" json:"order"`
	Prefix string `bson:"prefix" json:"prefix"`
}

// Matches reports whether phone (already normalized) starts with one of the
// comma-separated prefixes. An empty prefix or "*" matches everything.
func (p SmsProvider) Matches(phone string) bool {
	prefix := strings.TrimSpace(p.Prefix)
	if prefix == "" || prefix == "*" {
		return true
	}
	for _, candidate := range strings.Split(prefix, ",") {
		candidate = NormalizePhone(candidate)
		if candidate != "" && strings.HasPrefix(phone, candidate) {
			return true
		}
	}
	return false
}

// NormalizePhone strips spaces and rewrites a leading international "00" as "+".
func NormalizePhone(phone string) string {
	phone = strings.ReplaceAll(strings.TrimSpace(phone), " ", "")
	if strings.HasPrefix(phone, "00") {
		phone = "+" + phone[2:]
	}
	return phone
}
