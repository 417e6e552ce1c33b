package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClientStatus type for the client lifecycle.
type ClientStatus string

const (
	ClientActive   ClientStatus = "activo"
	ClientInactive ClientStatus = "inactivo"
)

// ValidClientStatus reports whether s is a member of the enumeration.
func ValidClientStatus(s ClientStatus) bool {
	return s == ClientActive || s == ClientInactive
}

// Client is a coached client, managed by a trainer. Clients are documents,
// not login accounts.
type Client struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID      primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	Name           string             `bson:"name" json:"name"`
	Email          string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone          string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Status         ClientStatus       `bson:"status" json:"status"`
	Tags           []string           `bson:"tags,omitempty" json:"tags,omitempty"` // Set semantics, insertion order kept
	Notes          string             `bson:"notes,omitempty" json:"notes,omitempty"`
	PhotoURL       string             `bson:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	JoinedAt       time.Time          `bson:"joinedAt" json:"joinedAt"`
	LastActivityAt time.Time          `bson:"lastActivityAt" json:"lastActivityAt"`
	IsDeleted      bool               `bson:"isDeleted" json:"-"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Touch stamps the client's last activity.
func (c *Client) Touch(now time.Time) {
	c.LastActivityAt = now
}
