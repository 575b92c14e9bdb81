// internal/domain/models/gallery.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Gallery kinds. Each kind stores its objects under a bucket prefix of the
// same name.
const (
	GalleryNews       = "news"
	GalleryDakwah     = "dakwah"
	GalleryHomeSlider = "home_slider"
)

// GalleryKinds lists the valid gallery kinds.
var GalleryKinds = []string{GalleryNews, GalleryDakwah, GalleryHomeSlider}

// IsGalleryKind reports whether k names a gallery.
func IsGalleryKind(k string) bool {
	for _, g := range GalleryKinds {
		if g == k {
			return true
		}
	}
	return false
}

// GalleryImage is an uploaded image available to the dashboard's image picker.
type GalleryImage struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Kind string             `bson:"kind" json:"kind"`
	Name string             `bson:"name" json:"name"`
	Path string             `bson:"path" json:"path"` // bucket key
	URL  string             `bson:"url" json:"url"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
