// internal/domain/models/news.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// News is an article. Content is sanitized HTML produced by the dashboard's
// rich-text editor.
type News struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title      string              `bson:"title" json:"title"`
	TitleCI    string              `bson:"title_ci" json:"-"`
	Content    string              `bson:"content" json:"content"`
	Image      string              `bson:"image" json:"image"`
	ImagePath  string              `bson:"image_path,omitempty" json:"image_path,omitempty"` // bucket key when uploaded
	CategoryID *primitive.ObjectID `bson:"category_id,omitempty" json:"category_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Category groups news articles.
type Category struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name   string             `bson:"name" json:"name"`
	NameCI string             `bson:"name_ci" json:"-"`
}
