// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/mtt/mttdash/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
//
// Collections must exist before the capacity guard runs multi-document
// transactions against them, so every collection the app writes is listed
// here even when it carries no validator.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersSchema())
	ensure("home_sliders", slidersSchema())
	ensure("daily_dakwah", dakwahSchema())
	ensure("news", newsSchema())
	ensure("category", categorySchema())
	ensure("proposals", proposalsSchema())
	ensure("gallery_images", gallerySchema())
	ensure("email_otps", otpsSchema())

	ensure("audit_events", nil)
	ensure("capacity_guards", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"email", "email_ci", "password_hash", "status"},
			"properties": bson.M{
				"name":          bson.M{"bsonType": "string"},
				"email":         nonBlank,
				"email_ci":      nonBlank,
				"password_hash": nonBlank,
				"status":        bson.M{"enum": bson.A{"active", "disabled"}},
			},
		},
	}
}

func slidersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "image", "visible"},
			"properties": bson.M{
				"title":    nonBlank,
				"image":    nonBlank,
				"visible":  bson.M{"bsonType": "bool"},
				"featured": bson.M{"bsonType": "bool"},
			},
		},
	}
}

func dakwahSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "published", "highlight"},
			"properties": bson.M{
				"title":       bson.M{"bsonType": "string", "minLength": 1, "maxLength": 32},
				"description": bson.M{"bsonType": "string", "maxLength": 120},
				"published":   bson.M{"bsonType": "bool"},
				"highlight":   bson.M{"bsonType": "bool"},
			},
		},
	}
}

func newsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "title_ci"},
			"properties": bson.M{
				"title":       nonBlank,
				"title_ci":    nonBlank,
				"content":     bson.M{"bsonType": "string"},
				"category_id": bson.M{"bsonType": "objectId"},
			},
		},
	}
}

func categorySchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "name_ci"},
			"properties": bson.M{
				"name":    nonBlank,
				"name_ci": nonBlank,
			},
		},
	}
}

func proposalsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "email", "email_ci", "is_read"},
			"properties": bson.M{
				"name":     nonBlank,
				"email":    nonBlank,
				"email_ci": nonBlank,
				"is_read":  bson.M{"bsonType": "bool"},
				"read_at":  bson.M{"bsonType": bson.A{"date", "null"}},
			},
		},
	}
}

func gallerySchema() bson.M {
	kinds := bson.A{}
	for _, k := range models.GalleryKinds {
		kinds = append(kinds, k)
	}
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"kind", "path", "url"},
			"properties": bson.M{
				"kind": bson.M{"enum": kinds},
				"path": nonBlank,
				"url":  nonBlank,
			},
		},
	}
}

func otpsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"email_ci", "expires_at"},
			"properties": bson.M{
				"email_ci":   nonBlank,
				"attempts":   bson.M{"bsonType": bson.A{"int", "long"}},
				"verified":   bson.M{"bsonType": "bool"},
				"expires_at": bson.M{"bsonType": "date"},
			},
		},
	}
}
