// internal/domain/models/proposal.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Proposal is a submission from the public website's proposal form.
type Proposal struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"`
	Email       string             `bson:"email" json:"email"`
	EmailCI     string             `bson:"email_ci" json:"-"`
	PhoneNumber string             `bson:"phone_number" json:"phone_number"`
	FileURL     string             `bson:"file_url" json:"file_url"`
	IsRead      bool               `bson:"is_read" json:"is_read"`
	ReadAt      *time.Time         `bson:"read_at,omitempty" json:"read_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
