// internal/app/store/otp/otpstore.go
package otpstore

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/mtt/mttdash/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

// Collection holds one pending code per email.
const Collection = "email_otps"

const (
	// CodeLength is the number of digits in a code.
	CodeLength = 6
	// DefaultExpiry is how long a code stays valid.
	DefaultExpiry = 2 * time.Minute
	// BcryptCost for hashing codes.
	BcryptCost = 10
	// MaxVerifyAttempts is how many guesses one code allows.
	MaxVerifyAttempts = 5
	// MaxResends is how many codes one email may request per ResendWindow.
	MaxResends = 3
	// ResendWindow bounds MaxResends.
	ResendWindow = 10 * time.Minute
)

var (
	ErrNotFound        = errors.New("code not found or expired")
	ErrInvalidCode     = errors.New("invalid code")
	ErrTooManyAttempts = errors.New("too many verification attempts")
	ErrTooManyResends  = errors.New("too many code requests")
)

// Store manages one-time codes.
type Store struct {
	c      *mongo.Collection
	expiry time.Duration
}

// New creates a Store. A non-positive expiry means DefaultExpiry.
func New(db *mongo.Database, expiry time.Duration) *Store {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Store{c: db.Collection(Collection), expiry: expiry}
}

// Expiry returns how long issued codes are valid.
func (s *Store) Expiry() time.Duration { return s.expiry }

// Issue replaces any code for email with a fresh one and returns the plain
// code for mailing. Requests beyond MaxResends within ResendWindow fail
// with ErrTooManyResends.
func (s *Store) Issue(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	emailCI := text.Fold(email)
	now := time.Now().UTC()

	since := now.Add(-ResendWindow)
	recent, err := s.c.CountDocuments(ctx, bson.M{"email_ci": emailCI, "created_at": bson.M{"$gt": since}})
	if err != nil {
		return "", err
	}
	if recent >= MaxResends {
		return "", ErrTooManyResends
	}

	code, err := generateCode()
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash code: %w", err)
	}

	// Older unverified codes stop working; they stay until cleanup so the
	// resend window can count them.
	if _, err := s.c.UpdateMany(ctx,
		bson.M{"email_ci": emailCI, "verified": false, "expires_at": bson.M{"$gt": now}},
		bson.M{"$set": bson.M{"expires_at": now}},
	); err != nil {
		return "", err
	}

	otp := models.EmailOTP{
		ID:        primitive.NewObjectID(),
		Email:     email,
		EmailCI:   emailCI,
		CodeHash:  string(hash),
		ExpiresAt: now.Add(s.expiry),
		CreatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, otp); err != nil {
		return "", fmt.Errorf("insert otp: %w", err)
	}
	return code, nil
}

// Verify checks code against the newest live code for email and marks it
// verified. Every call counts as an attempt.
func (s *Store) Verify(ctx context.Context, email, code string) error {
	now := time.Now().UTC()
	var otp models.EmailOTP
	err := s.c.FindOne(ctx,
		bson.M{"email_ci": text.Fold(strings.TrimSpace(email)), "verified": false, "expires_at": bson.M{"$gt": now}},
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	).Decode(&otp)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if otp.Attempts >= MaxVerifyAttempts {
		return ErrTooManyAttempts
	}
	if _, err := s.c.UpdateByID(ctx, otp.ID, bson.M{"$inc": bson.M{"attempts": 1}}); err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(strings.TrimSpace(code))); err != nil {
		return ErrInvalidCode
	}

	_, err = s.c.UpdateByID(ctx, otp.ID, bson.M{"$set": bson.M{"verified": true, "verified_at": now}})
	return err
}

// DeleteExpired removes codes that expired before cutoff.
func (s *Store) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
