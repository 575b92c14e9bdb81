// internal/app/store/news/newsstore.go
package newsstore

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/mtt/mttdash/internal/app/system/paging"
	"github.com/mtt/mttdash/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the news collection name.
const Collection = "news"

var ErrNotFound = errors.New("news article not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Create inserts an article. Content must already be sanitized.
func (s *Store) Create(ctx context.Context, n models.News) (models.News, error) {
	n.Title = strings.TrimSpace(n.Title)
	if n.Title == "" {
		return models.News{}, mongo.CommandError{Message: "title is required"}
	}
	now := time.Now().UTC()
	n.ID = primitive.NewObjectID()
	n.TitleCI = text.Fold(n.Title)
	n.CreatedAt = now
	n.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, n); err != nil {
		return models.News{}, err
	}
	return n, nil
}

// GetByID returns ErrNotFound when no article has the id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.News, error) {
	var n models.News
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.News{}, ErrNotFound
	}
	if err != nil {
		return models.News{}, err
	}
	return n, nil
}

// ListFilter narrows List.
type ListFilter struct {
	Search     string // case-insensitive title substring
	CategoryID *primitive.ObjectID
}

func (f ListFilter) bson() bson.M {
	filter := bson.M{}
	if q := strings.TrimSpace(f.Search); q != "" {
		filter["title_ci"] = bson.M{"$regex": regexp.QuoteMeta(text.Fold(q))}
	}
	if f.CategoryID != nil {
		filter["category_id"] = *f.CategoryID
	}
	return filter
}

// List returns one page of articles, newest first, and the total matching.
func (s *Store) List(ctx context.Context, f ListFilter, pg paging.Page) ([]models.News, int64, error) {
	filter := f.bson()
	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := pg.Apply(options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}))
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	out := []models.News{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Patch holds the fields of a partial update. Nil fields are unchanged.
type Patch struct {
	Title      *string
	Content    *string
	Image      *string
	ImagePath  *string
	CategoryID *primitive.ObjectID
}

// Update applies p and returns the article as it was before the change so
// the caller can remove a replaced image from the bucket.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, p Patch) (before models.News, err error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		if t == "" {
			return models.News{}, mongo.CommandError{Message: "title is required"}
		}
		set["title"] = t
		set["title_ci"] = text.Fold(t)
	}
	if p.Content != nil {
		set["content"] = *p.Content
	}
	if p.Image != nil {
		set["image"] = *p.Image
	}
	if p.ImagePath != nil {
		set["image_path"] = *p.ImagePath
	}
	if p.CategoryID != nil {
		set["category_id"] = *p.CategoryID
	}

	err = s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.Before)).Decode(&before)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.News{}, ErrNotFound
	}
	if err != nil {
		return models.News{}, err
	}
	return before, nil
}

// Delete removes an article and returns it.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (models.News, error) {
	var n models.News
	err := s.c.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.News{}, ErrNotFound
	}
	if err != nil {
		return models.News{}, err
	}
	return n, nil
}

// ClearCategory detaches every article from a category.
func (s *Store) ClearCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx, bson.M{"category_id": categoryID}, bson.M{"$unset": bson.M{"category_id": ""}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
