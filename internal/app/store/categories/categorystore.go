// internal/app/store/categories/categorystore.go
package categorystore

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/mtt/mttdash/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the news category collection name.
const Collection = "category"

var (
	ErrNotFound  = errors.New("category not found")
	ErrDuplicate = errors.New("a category with this name already exists")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// List returns all categories sorted by name.
func (s *Store) List(ctx context.Context) ([]models.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Category{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a category. Names are unique ignoring case.
func (s *Store) Create(ctx context.Context, name string) (models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Category{}, mongo.CommandError{Message: "name is required"}
	}
	c := models.Category{ID: primitive.NewObjectID(), Name: name, NameCI: text.Fold(name)}

	n, err := s.c.CountDocuments(ctx, bson.M{"name_ci": c.NameCI})
	if err != nil {
		return models.Category{}, err
	}
	if n > 0 {
		return models.Category{}, ErrDuplicate
	}
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Category{}, ErrDuplicate
		}
		return models.Category{}, err
	}
	return c, nil
}

// Exists reports whether id names a category.
func (s *Store) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes a category. It returns ErrNotFound if nothing matched.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
