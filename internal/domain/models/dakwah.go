// internal/domain/models/dakwah.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Dakwah is a daily devotional post. Only published posts may be highlighted.
type Dakwah struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	ImageURL    string             `bson:"image_url" json:"image_url"`
	Published   bool               `bson:"published" json:"published"`
	Highlight   bool               `bson:"highlight" json:"highlight"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
