package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/mtt/mttdash/internal/app/system/authutil"
	"github.com/mtt/mttdash/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	ErrBadCredentials = errors.New("invalid email or password")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID returns ErrNotFound when no user has the id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail looks a user up by case-folded email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return s.findOne(ctx, bson.M{"email_ci": text.Fold(strings.TrimSpace(email))})
}

// GetByIDs returns the users among ids that exist, in no particular order.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Create inserts a user with a bcrypt hash of password.
func (s *Store) Create(ctx context.Context, u models.User, password string) (models.User, error) {
	u.Email = strings.TrimSpace(u.Email)
	if u.Email == "" {
		return models.User{}, mongo.CommandError{Message: "email is required"}
	}
	if password == "" {
		return models.User{}, mongo.CommandError{Message: "password is required"}
	}
	taken, err := s.EmailExistsForOther(ctx, u.Email, primitive.NilObjectID)
	if err != nil {
		return models.User{}, err
	}
	if taken {
		return models.User{}, ErrDuplicateEmail
	}
	hash, err := authutil.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.EmailCI = text.Fold(u.Email)
	u.PasswordHash = hash
	if u.Status == "" {
		u.Status = StatusActive
	}
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// Authenticate returns the active user whose email and password match.
// Unknown emails, wrong passwords and disabled accounts all yield
// ErrBadCredentials; the returned user (when found) lets callers audit which.
func (s *Store) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return models.User{}, ErrBadCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	if !authutil.CheckPassword(password, u.PasswordHash) {
		return u, ErrBadCredentials
	}
	if u.Status == StatusDisabled {
		return u, ErrBadCredentials
	}
	return u, nil
}

// SetPassword replaces the user's password hash.
func (s *Store) SetPassword(ctx context.Context, id primitive.ObjectID, password string) error {
	if password == "" {
		return mongo.CommandError{Message: "password is required"}
	}
	hash, err := authutil.HashPassword(password)
	if err != nil {
		return err
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"password_hash": hash,
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ProfileUpdate holds the contact details an admin can edit on themselves.
type ProfileUpdate struct {
	Email       string
	PhoneNumber string
	Location    string
}

// UpdateProfile writes contact details. ErrDuplicateEmail when another user
// already has the email.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) error {
	set := bson.M{
		"phone_number": strings.TrimSpace(upd.PhoneNumber),
		"location":     strings.TrimSpace(upd.Location),
		"updated_at":   time.Now().UTC(),
	}
	if email := strings.TrimSpace(upd.Email); email != "" {
		taken, err := s.EmailExistsForOther(ctx, email, id)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateEmail
		}
		set["email"] = email
		set["email_ci"] = text.Fold(email)
	}

	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// EmailExistsForOther reports whether a user other than excludeID has email.
func (s *Store) EmailExistsForOther(ctx context.Context, email string, excludeID primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"email_ci": text.Fold(strings.TrimSpace(email)),
		"_id":      bson.M{"$ne": excludeID},
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetStatus enables or disables a user.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	if status != StatusActive && status != StatusDisabled {
		return mongo.CommandError{Message: "status must be 'active' or 'disabled'"}
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":     status,
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
