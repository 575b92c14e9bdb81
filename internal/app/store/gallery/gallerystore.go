// internal/app/store/gallery/gallerystore.go
package gallerystore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mtt/mttdash/internal/app/system/paging"
	"github.com/mtt/mttdash/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection holds images of every gallery kind.
const Collection = "gallery_images"

var (
	ErrNotFound    = errors.New("gallery image not found")
	ErrUnknownKind = errors.New("unknown gallery kind")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

func checkKind(kind string) error {
	if !models.IsGalleryKind(kind) {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return nil
}

// Create records an uploaded object.
func (s *Store) Create(ctx context.Context, img models.GalleryImage) (models.GalleryImage, error) {
	if err := checkKind(img.Kind); err != nil {
		return models.GalleryImage{}, err
	}
	if strings.TrimSpace(img.Path) == "" || strings.TrimSpace(img.URL) == "" {
		return models.GalleryImage{}, mongo.CommandError{Message: "path and url are required"}
	}
	now := time.Now().UTC()
	img.ID = primitive.NewObjectID()
	img.CreatedAt = now
	img.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, img); err != nil {
		return models.GalleryImage{}, err
	}
	return img, nil
}

// GetByID finds an image of the given kind.
func (s *Store) GetByID(ctx context.Context, kind string, id primitive.ObjectID) (models.GalleryImage, error) {
	if err := checkKind(kind); err != nil {
		return models.GalleryImage{}, err
	}
	var img models.GalleryImage
	err := s.c.FindOne(ctx, bson.M{"_id": id, "kind": kind}).Decode(&img)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.GalleryImage{}, ErrNotFound
	}
	if err != nil {
		return models.GalleryImage{}, err
	}
	return img, nil
}

// List returns one page of a gallery, newest first, and its size.
func (s *Store) List(ctx context.Context, kind string, pg paging.Page) ([]models.GalleryImage, int64, error) {
	if err := checkKind(kind); err != nil {
		return nil, 0, err
	}
	filter := bson.M{"kind": kind}
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

	out := []models.GalleryImage{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Rename changes an image's display name.
func (s *Store) Rename(ctx context.Context, kind string, id primitive.ObjectID, name string) (models.GalleryImage, error) {
	if err := checkKind(kind); err != nil {
		return models.GalleryImage{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return models.GalleryImage{}, mongo.CommandError{Message: "name is required"}
	}
	var img models.GalleryImage
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "kind": kind},
		bson.M{"$set": bson.M{"name": name, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&img)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.GalleryImage{}, ErrNotFound
	}
	if err != nil {
		return models.GalleryImage{}, err
	}
	return img, nil
}

// Delete removes the record. The caller removes the object first.
func (s *Store) Delete(ctx context.Context, kind string, id primitive.ObjectID) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "kind": kind})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByPath finds an image by its bucket key.
func (s *Store) GetByPath(ctx context.Context, path string) (models.GalleryImage, error) {
	var img models.GalleryImage
	err := s.c.FindOne(ctx, bson.M{"path": path}).Decode(&img)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.GalleryImage{}, ErrNotFound
	}
	if err != nil {
		return models.GalleryImage{}, err
	}
	return img, nil
}
