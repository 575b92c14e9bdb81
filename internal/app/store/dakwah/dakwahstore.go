// internal/app/store/dakwah/dakwahstore.go
package dakwahstore

import (
	"context"
	"errors"
	"time"

	"github.com/mtt/mttdash/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the daily dakwah collection name.
const Collection = "daily_dakwah"

var ErrNotFound = errors.New("dakwah post not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Create inserts a post. Highlight has already been resolved by the caller.
func (s *Store) Create(ctx context.Context, d models.Dakwah) (models.Dakwah, error) {
	now := time.Now().UTC()
	d.ID = primitive.NewObjectID()
	d.CreatedAt = now
	d.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, d); err != nil {
		return models.Dakwah{}, err
	}
	return d, nil
}

// GetByID returns ErrNotFound when no post has the id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Dakwah, error) {
	var d models.Dakwah
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Dakwah{}, ErrNotFound
	}
	if err != nil {
		return models.Dakwah{}, err
	}
	return d, nil
}

// List returns posts newest first, filtered by filter (may be empty).
func (s *Store) List(ctx context.Context, filter bson.M) ([]models.Dakwah, error) {
	if filter == nil {
		filter = bson.M{}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Dakwah{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListHighlighted returns highlighted posts newest first.
func (s *Store) ListHighlighted(ctx context.Context) ([]models.Dakwah, error) {
	return s.List(ctx, bson.M{"highlight": true})
}

// Update writes the editable fields, highlight included.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, d models.Dakwah) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"title":       d.Title,
		"description": d.Description,
		"image_url":   d.ImageURL,
		"published":   d.Published,
		"highlight":   d.Highlight,
		"updated_at":  time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetHighlight changes only the highlight flag.
func (s *Store) SetHighlight(ctx context.Context, id primitive.ObjectID, highlight bool) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"highlight":  highlight,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountHighlighted counts highlighted posts, leaving out except when it is
// not nil.
func (s *Store) CountHighlighted(ctx context.Context, except *primitive.ObjectID) (int64, error) {
	filter := bson.M{"highlight": true}
	if except != nil {
		filter["_id"] = bson.M{"$ne": *except}
	}
	return s.c.CountDocuments(ctx, filter)
}

// Delete removes a post by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Count returns the number of posts.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
