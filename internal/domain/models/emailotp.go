// internal/domain/models/emailotp.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EmailOTP is a one-time code mailed to a proposal submitter. Only the bcrypt
// hash of the code is stored.
type EmailOTP struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Email      string             `bson:"email"`
	EmailCI    string             `bson:"email_ci"`
	CodeHash   string             `bson:"code_hash"`
	Attempts   int                `bson:"attempts"`
	Verified   bool               `bson:"verified"`
	VerifiedAt *time.Time         `bson:"verified_at,omitempty"`
	ExpiresAt  time.Time          `bson:"expires_at"`
	CreatedAt  time.Time          `bson:"created_at"`
}
