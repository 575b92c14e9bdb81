// internal/app/store/sliders/sliderstore.go
package sliderstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mtt/mttdash/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the home slider collection name.
const Collection = "home_sliders"

var ErrNotFound = errors.New("home slider not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Create inserts a slider as given. The caller has already resolved Visible
// through the capacity policy.
func (s *Store) Create(ctx context.Context, sl models.HomeSlider) (models.HomeSlider, error) {
	if strings.TrimSpace(sl.Title) == "" || strings.TrimSpace(sl.Image) == "" {
		return models.HomeSlider{}, mongo.CommandError{Message: "image and title are required"}
	}
	now := time.Now().UTC()
	sl.ID = primitive.NewObjectID()
	sl.CreatedAt = now
	sl.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, sl); err != nil {
		return models.HomeSlider{}, err
	}
	return sl, nil
}

// GetByID returns ErrNotFound when no slider has the id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.HomeSlider, error) {
	var sl models.HomeSlider
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sl)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.HomeSlider{}, ErrNotFound
	}
	if err != nil {
		return models.HomeSlider{}, err
	}
	return sl, nil
}

// List returns sliders newest first. A non-nil visible filters on it.
func (s *Store) List(ctx context.Context, visible *bool) ([]models.HomeSlider, error) {
	filter := bson.M{}
	if visible != nil {
		filter["visible"] = *visible
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.HomeSlider{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces every editable field, visible included.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, sl models.HomeSlider) error {
	if strings.TrimSpace(sl.Title) == "" || strings.TrimSpace(sl.Image) == "" {
		return mongo.CommandError{Message: "image and title are required"}
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"image":       sl.Image,
		"title":       sl.Title,
		"subtitle":    sl.Subtitle,
		"description": sl.Description,
		"button_text": sl.ButtonText,
		"button_link": sl.ButtonLink,
		"bg_gradient": sl.BgGradient,
		"featured":    sl.Featured,
		"visible":     sl.Visible,
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

// SetVisible changes only the visible flag.
func (s *Store) SetVisible(ctx context.Context, id primitive.ObjectID, visible bool) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"visible":    visible,
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

// CountVisible counts visible sliders, leaving out except when it is not nil.
func (s *Store) CountVisible(ctx context.Context, except *primitive.ObjectID) (int64, error) {
	filter := bson.M{"visible": true}
	if except != nil {
		filter["_id"] = bson.M{"$ne": *except}
	}
	return s.c.CountDocuments(ctx, filter)
}

// Count returns the number of sliders.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// NewestHidden returns the most recently created hidden slider, or
// ErrNotFound when every slider is visible.
func (s *Store) NewestHidden(ctx context.Context) (models.HomeSlider, error) {
	var sl models.HomeSlider
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	err := s.c.FindOne(ctx, bson.M{"visible": false}, opts).Decode(&sl)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.HomeSlider{}, ErrNotFound
	}
	if err != nil {
		return models.HomeSlider{}, err
	}
	return sl, nil
}

// Delete removes a slider by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
