// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// collectionIndexes pairs a collection with the indexes it should carry.
type collectionIndexes struct {
	name   string
	models []mongo.IndexModel
}

/*
EnsureAll is called at startup. Every collection is reconciled even when an
earlier one fails; problems are aggregated so startup can fail fast with the
full picture.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	var problems []string
	for _, ci := range desired() {
		if err := ensureIndexSet(ctx, db.Collection(ci.name), ci.models, logger); err != nil {
			problems = append(problems, ci.name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func desired() []collectionIndexes {
	return []collectionIndexes{
		{"users", []mongo.IndexModel{
			// Login and profile updates look users up by folded email.
			{
				Keys:    bson.D{{Key: "email_ci", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_users_emailci"),
			},
		}},
		{"home_sliders", []mongo.IndexModel{
			// Public list, newest first, optionally filtered by visible.
			// Also serves the visible count and "newest hidden" promotion.
			{
				Keys:    bson.D{{Key: "visible", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_sliders_visible_created"),
			},
			{
				Keys:    bson.D{{Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_sliders_created"),
			},
		}},
		{"daily_dakwah", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "highlight", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_dakwah_highlight_created"),
			},
			{
				Keys:    bson.D{{Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_dakwah_created"),
			},
		}},
		{"news", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
				Options: options.Index().SetName("idx_news_created__id"),
			},
			{
				Keys:    bson.D{{Key: "category_id", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_news_category_created"),
			},
			{
				Keys:    bson.D{{Key: "title_ci", Value: 1}},
				Options: options.Index().SetName("idx_news_titleci"),
			},
		}},
		{"category", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "name_ci", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_category_nameci"),
			},
		}},
		{"proposals", []mongo.IndexModel{
			// One proposal per email address.
			{
				Keys:    bson.D{{Key: "email_ci", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_proposals_emailci"),
			},
			{
				Keys:    bson.D{{Key: "is_read", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_proposals_isread_created"),
			},
			{
				Keys:    bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
				Options: options.Index().SetName("idx_proposals_created__id"),
			},
		}},
		{"gallery_images", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "kind", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_gallery_kind_created"),
			},
			{
				Keys:    bson.D{{Key: "path", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_gallery_path"),
			},
		}},
		{"email_otps", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "email_ci", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_otps_emailci_created"),
			},
			// Expired codes linger for the resend window, then the server
			// removes them. The otp-cleanup job covers TTL monitor delays.
			{
				Keys:    bson.D{{Key: "expires_at", Value: 1}},
				Options: options.Index().SetExpireAfterSeconds(int32((10 * time.Minute).Seconds())).SetName("ttl_otps_expires"),
			},
		}},
		{"audit_events", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "timestamp", Value: -1}},
				Options: options.Index().SetName("idx_audit_ts"),
			},
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
				Options: options.Index().SetName("idx_audit_user_ts"),
			},
			{
				Keys:    bson.D{{Key: "entity", Value: 1}, {Key: "entity_id", Value: 1}, {Key: "timestamp", Value: -1}},
				Options: options.Index().SetName("idx_audit_entity_ts"),
			},
			{
				Keys:    bson.D{{Key: "category", Value: 1}, {Key: "event_type", Value: 1}, {Key: "timestamp", Value: -1}},
				Options: options.Index().SetName("idx_audit_category_type_ts"),
			},
		}},
	}
}

/* -------------------------------------------------------------------------- */
/* Reconcile a set of desired indexes for one collection                      */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolVal(b *bool) bool {
	return b != nil && *b
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Mongo/DocDB sometimes returns IndexOptionsConflict when an index with the
// same keys already exists under a different name (or options differ).
func isOptionsConflictErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "IndexOptionsConflict")
}

func listIndexes(ctx context.Context, coll *mongo.Collection, logger *zap.Logger) map[string]existingIndex {
	existing := map[string]existingIndex{} // sig -> index
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return existing
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			logger.Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel, logger *zap.Logger) error {
	var errs []string
	for _, m := range models {
		if err := ensureIndex(ctx, coll, m, logger); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func ensureIndex(ctx context.Context, coll *mongo.Collection, m mongo.IndexModel, logger *zap.Logger) error {
	var name string
	var unique *bool
	if m.Options != nil {
		if m.Options.Name != nil {
			name = *m.Options.Name
		}
		unique = m.Options.Unique
	}
	sig := keySig(m.Keys.(bson.D))
	start := time.Now()
	log := logger.With(
		zap.String("collection", coll.Name()),
		zap.String("name", name),
		zap.String("keys", sig),
		zap.Bool("unique", boolVal(unique)))

	ex, ok := listIndexes(ctx, coll, logger)[sig]
	if !ok {
		_, err := coll.Indexes().CreateOne(ctx, m)
		if err == nil {
			log.Info("index ensured", zap.Duration("took", time.Since(start)))
			return nil
		}
		if !isOptionsConflictErr(err) {
			log.Warn("index ensure failed", zap.Error(err))
			return createErr(coll, name, unique, err)
		}
		// The server raced us or matched keys differently; look again.
		ex, ok = listIndexes(ctx, coll, logger)[sig]
		if !ok {
			log.Warn("index ensure failed", zap.Error(err))
			return createErr(coll, name, unique, err)
		}
	}

	if boolVal(unique) == boolVal(ex.Unique) && (name == "" || ex.Name == name) {
		log.Debug("reusing existing index", zap.Duration("took", time.Since(start)))
		return nil
	}

	// Name or uniqueness differs: drop and recreate.
	if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
		log.Warn("drop existing index failed", zap.String("existing", ex.Name), zap.Error(err))
		return fmt.Errorf("%s(%s): drop %s failed: %v", coll.Name(), name, ex.Name, err)
	}
	if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
		log.Warn("recreate index failed", zap.Error(err))
		return createErr(coll, name, unique, err)
	}
	log.Info("index dropped and recreated",
		zap.String("replaced", ex.Name),
		zap.Duration("took", time.Since(start)))
	return nil
}

func createErr(coll *mongo.Collection, name string, unique *bool, err error) error {
	if boolVal(unique) && isDuplicateKeyErr(err) {
		return fmt.Errorf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), name)
	}
	return fmt.Errorf("%s(%s): %v", coll.Name(), name, err)
}
