package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleDoctor     = "doctor"
	RoleNurse      = "nurse"
	RoleAdmin      = "admin"
	RolePatient    = "patient"
	RoleTranslator = "translator"
	RoleGuest      = "guest"
	RoleScheduler  = "scheduler"
	RoleExpert     = "expert"
)

var Roles = []string{RoleDoctor, RoleNurse, RoleAdmin, RolePatient, RoleTranslator, RoleGuest, RoleScheduler, RoleExpert}

const (
	UserStatusApproved    = "approved"
	UserStatusNotApproved = "not-approved"
)

type User struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username            string             `bson:"username,omitempty" json:"username,omitempty"`
	Email               string             `bson:"email,omitempty" json:"email,omitempty"`
	FirstName           string             `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName            string             `bson:"lastName,omitempty" json:"lastName,omitempty"`
	Role                string             `bson:"role" json:"role"`
	Password            string             `bson:"password,omitempty" json:"-"` // bcrypt hash, never serialized
	SmsVerificationCode string             `bson:"smsVerificationCode,omitempty" json:"-"`
	SmsAttempts         int                `bson:"smsAttempts" json:"smsAttempts"`
	TemporaryAccount    bool               `bson:"temporaryAccount" json:"temporaryAccount"`
	ResetPasswordToken  string             `bson:"resetPasswordToken,omitempty" json:"-"`
	PhoneNumber         string             `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	AuthPhoneNumber     string             `bson:"authPhoneNumber,omitempty" json:"authPhoneNumber,omitempty"`
	NotifPhoneNumber    string             `bson:"notifPhoneNumber,omitempty" json:"notifPhoneNumber,omitempty"`
	EnableNotif         bool               `bson:"enableNotif" json:"enableNotif"`
	ViewAllQueues       bool               `bson:"viewAllQueues" json:"viewAllQueues"`
	DoctorClientVersion string             `bson:"doctorClientVersion,omitempty" json:"doctorClientVersion,omitempty"`
	Department          string             `bson:"department,omitempty" json:"department,omitempty"`
	Function            string             `bson:"_function,omitempty" json:"_function,omitempty"`
	LastLoginType       string             `bson:"lastLoginType,omitempty" json:"lastLoginType,omitempty"`
	PreferredLanguage   string             `bson:"preferredLanguage,omitempty" json:"preferredLanguage,omitempty"`
	Direct              string             `bson:"direct,omitempty" json:"direct,omitempty"`
	Organization        string             `bson:"organization,omitempty" json:"organization,omitempty"`
	Country             string             `bson:"country,omitempty" json:"country,omitempty"`
	Sex                 string             `bson:"sex,omitempty" json:"sex,omitempty"`
	Status              string             `bson:"status" json:"status"`
	DoctorTermsVersion  string             `bson:"doctorTermsVersion" json:"doctorTermsVersion"`
	MessageService      string             `bson:"messageService" json:"messageService"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ApplyDefaults fills the attributes that have a default when left empty.
func (u *User) ApplyDefaults() {
	if u.Status == "" {
		u.Status = UserStatusApproved
	}
	if u.DoctorTermsVersion == "" {
		u.DoctorTermsVersion = "0"
	}
	if u.MessageService == "" {
		u.MessageService = "2"
	}
}

// UserUpdate is a partial update; nil fields are left untouched.
type UserUpdate struct {
	Username          *string `json:"username,omitempty"`
	Email             *string `json:"email,omitempty" binding:"omitempty,email"`
	FirstName         *string `json:"firstName,omitempty"`
	LastName          *string `json:"lastName,omitempty"`
	Password          *string `json:"password,omitempty" binding:"omitempty,min=8"`
	Role              *string `json:"role,omitempty" binding:"omitempty,user_role"`
	Status            *string `json:"status,omitempty" binding:"omitempty,oneof=approved not-approved"`
	PhoneNumber       *string `json:"phoneNumber,omitempty"`
	AuthPhoneNumber   *string `json:"authPhoneNumber,omitempty"`
	NotifPhoneNumber  *string `json:"notifPhoneNumber,omitempty"`
	EnableNotif       *bool   `json:"enableNotif,omitempty"`
	Department        *string `json:"department,omitempty"`
	PreferredLanguage *string `json:"preferredLanguage,omitempty"`
	Organization      *string `json:"organization,omitempty"`
	Country           *string `json:"country,omitempty"`
	Sex               *string `json:"sex,omitempty" binding:"omitempty,oneof=male female other"`
}

// Fields returns the bson field/value pairs to $set for the non-nil fields.
func (u *UserUpdate) Fields() map[string]interface{} {
	set := map[string]interface{}{}
	str := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	str("username", u.Username)
	str("email", u.Email)
	str("firstName", u.FirstName)
	str("lastName", u.LastName)
	str("password", u.Password)
	str("role", u.Role)
	str("status", u.Status)
	str("phoneNumber", u.PhoneNumber)
	str("authPhoneNumber", u.AuthPhoneNumber)
	str("notifPhoneNumber", u.NotifPhoneNumber)
	str("department", u.Department)
	str("preferredLanguage", u.PreferredLanguage)
	str("organization", u.Organization)
	str("country", u.Country)
	str("sex", u.Sex)
	if u.EnableNotif != nil {
		set["enableNotif"] = *u.EnableNotif
	}
	return set
}
