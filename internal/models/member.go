package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SubscriptionType string

type SubscriptionStatus string

const (
	SubscriptionFree    SubscriptionType = "FREE"
	SubscriptionMonthly SubscriptionType = "MONTHLY"
	SubscriptionYearly  SubscriptionType = "YEARLY"

	SubscriptionActive    SubscriptionStatus = "ACTIVE"
	SubscriptionCancelled SubscriptionStatus = "CANCELLED"
	SubscriptionExpired   SubscriptionStatus = "EXPIRED"

	MemberEntity = "member"
)

// Member is the identity collaborator's projection: the engine reads only
// the id and the current subscription facts.
type Member struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name               string             `bson:"name" json:"name"`
	Email              string             `bson:"email" json:"email"`
	SubscriptionType   SubscriptionType   `bson:"subscription_type" json:"subscription_type"`
	SubscriptionStatus SubscriptionStatus `bson:"subscription_status" json:"subscription_status"`
	IsActive           bool               `bson:"is_active" json:"is_active"`
	CreatedAt          time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updated_at"`
}

var ValidSubscriptionTypes = map[string]bool{
	string(SubscriptionFree):    true,
	string(SubscriptionMonthly): true,
	string(SubscriptionYearly):  true,
}

func IsValidSubscriptionType(t string) bool {
	return ValidSubscriptionTypes[t]
}
