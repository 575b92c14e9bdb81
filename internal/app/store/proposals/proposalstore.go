// internal/app/store/proposals/proposalstore.go
package proposalstore

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/mtt/mttdash/internal/app/system/paging"
	"github.com/mtt/mttdash/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the proposal submissions collection name.
const Collection = "proposals"

var (
	ErrNotFound       = errors.New("proposal not found")
	ErrDuplicateEmail = errors.New("a proposal with this email already exists")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Create inserts a new unread proposal. One proposal is accepted per email,
// compared case-insensitively.
func (s *Store) Create(ctx context.Context, p models.Proposal) (models.Proposal, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.PhoneNumber = strings.TrimSpace(p.PhoneNumber)
	p.ID = primitive.NewObjectID()
	p.NameCI = text.Fold(p.Name)
	p.EmailCI = text.Fold(p.Email)
	p.IsRead = false
	p.ReadAt = nil
	p.CreatedAt = time.Now().UTC()

	exists, err := s.EmailExists(ctx, p.Email)
	if err != nil {
		return models.Proposal{}, err
	}
	if exists {
		return models.Proposal{}, ErrDuplicateEmail
	}
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Proposal{}, ErrDuplicateEmail
		}
		return models.Proposal{}, err
	}
	return p, nil
}

// EmailExists reports whether a proposal was already submitted for email.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"email_ci": text.Fold(strings.TrimSpace(email))}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetByID returns ErrNotFound when no proposal has the id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Proposal, error) {
	var p models.Proposal
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Proposal{}, ErrNotFound
	}
	if err != nil {
		return models.Proposal{}, err
	}
	return p, nil
}

// ListFilter narrows List.
type ListFilter struct {
	// Search matches name, email or phone number, ignoring case.
	Search string
	// IsRead filters on read state when non-nil.
	IsRead *bool
}

func (f ListFilter) bson() bson.M {
	filter := bson.M{}
	if f.IsRead != nil {
		filter["is_read"] = *f.IsRead
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		folded := regexp.QuoteMeta(text.Fold(q))
		filter["$or"] = bson.A{
			bson.M{"name_ci": bson.M{"$regex": folded}},
			bson.M{"email_ci": bson.M{"$regex": folded}},
			bson.M{"phone_number": bson.M{"$regex": regexp.QuoteMeta(q)}},
		}
	}
	return filter
}

// List returns one page of proposals, newest first, and the total matching.
func (s *Store) List(ctx context.Context, f ListFilter, pg paging.Page) ([]models.Proposal, int64, error) {
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

	out := []models.Proposal{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// MarkRead sets is_read and stamps read_at. Marking an already read
// proposal keeps its first read_at.
func (s *Store) MarkRead(ctx context.Context, id primitive.ObjectID) (models.Proposal, error) {
	now := time.Now().UTC()
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"is_read": true,
			"read_at": bson.M{"$ifNull": bson.A{"$read_at", now}},
		}}},
	}
	var p models.Proposal
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, pipeline,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Proposal{}, ErrNotFound
	}
	if err != nil {
		return models.Proposal{}, err
	}
	return p, nil
}

// CountUnread returns how many proposals have not been opened.
func (s *Store) CountUnread(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"is_read": false})
}
