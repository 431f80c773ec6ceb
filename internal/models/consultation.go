package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Consultation is read-only here; only the doctor reference is used.
type Consultation struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Doctor primitive.ObjectID `bson:"doctor,omitempty" json:"doctor"`
	Owner  primitive.ObjectID `bson:"owner,omitempty" json:"owner"`
	Status string             `bson:"status" json:"status"`
}

// SMSMessage is what the SMS gateways send.
type SMSMessage struct {
	To          string
	Body        string
	SenderEmail string
}
