// internal/domain/models/homeslider.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HomeSlider is one slide of the public homepage carousel. Visible is the
// capacity-bounded flag.
type HomeSlider struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Image       string             `bson:"image" json:"image"`
	Title       string             `bson:"title" json:"title"`
	Subtitle    string             `bson:"subtitle,omitempty" json:"subtitle,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	ButtonText  string             `bson:"button_text,omitempty" json:"button_text,omitempty"`
	ButtonLink  string             `bson:"button_link,omitempty" json:"button_link,omitempty"`
	BgGradient  string             `bson:"bg_gradient,omitempty" json:"bg_gradient,omitempty"`
	Featured    bool               `bson:"featured" json:"featured"`
	Visible     bool               `bson:"visible" json:"visible"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
