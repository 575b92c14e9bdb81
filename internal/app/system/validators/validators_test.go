package validators_test

import (
	"testing"
	"time"

	"github.com/mtt/mttdash/internal/app/system/validators"
	"github.com/mtt/mttdash/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	expectedCollections := []string{
		"users",
		"home_sliders",
		"daily_dakwah",
		"news",
		"category",
		"proposals",
		"gallery_images",
		"email_otps",
		"audit_events",
		"capacity_guards",
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	collMap := make(map[string]bool)
	for _, name := range names {
		collMap[name] = true
	}
	for _, expected := range expectedCollections {
		if !collMap[expected] {
			t.Errorf("expected collection %q to exist", expected)
		}
	}
}

func TestValidators_RejectAndAccept(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	now := time.Now()
	tests := []struct {
		name    string
		coll    string
		doc     bson.M
		wantErr bool
	}{
		{"user missing password", "users", bson.M{"email": "a@b.c", "email_ci": "a@b.c", "status": "active"}, true},
		{"user bad status", "users", bson.M{"email": "a@b.c", "email_ci": "a@b.c", "password_hash": "x", "status": "banned"}, true},
		{"user ok", "users", bson.M{"email": "a@b.c", "email_ci": "a@b.c", "password_hash": "x", "status": "active"}, false},

		{"slider missing image", "home_sliders", bson.M{"title": "t", "visible": true}, true},
		{"slider visible not bool", "home_sliders", bson.M{"title": "t", "image": "i", "visible": "yes"}, true},
		{"slider ok", "home_sliders", bson.M{"title": "t", "image": "i", "visible": false}, false},

		{"dakwah title too long", "daily_dakwah", bson.M{"title": "abcdefghijklmnopqrstuvwxyzabcdefg", "published": true, "highlight": false}, true},
		{"dakwah ok", "daily_dakwah", bson.M{"title": "Renungan", "published": true, "highlight": true}, false},

		{"news blank title", "news", bson.M{"title": "   ", "title_ci": "x"}, true},
		{"news ok", "news", bson.M{"title": "Hello", "title_ci": "hello"}, false},

		{"category missing name_ci", "category", bson.M{"name": "Events"}, true},

		{"proposal missing is_read", "proposals", bson.M{"name": "n", "email": "e@x.y", "email_ci": "e@x.y"}, true},
		{"proposal ok", "proposals", bson.M{"name": "n", "email": "e@x.y", "email_ci": "e@x.y", "is_read": false}, false},

		{"gallery unknown kind", "gallery_images", bson.M{"kind": "avatars", "path": "p", "url": "u"}, true},
		{"gallery ok", "gallery_images", bson.M{"kind": "news", "path": "p", "url": "u"}, false},

		{"otp missing expiry", "email_otps", bson.M{"email_ci": "e@x.y"}, true},
		{"otp ok", "email_otps", bson.M{"email_ci": "e@x.y", "expires_at": now, "attempts": 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Collection(tt.coll).InsertOne(ctx, tt.doc)
			if tt.wantErr && err == nil {
				t.Errorf("expected validation error inserting into %s", tt.coll)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("insert into %s: %v", tt.coll, err)
			}
		})
	}
}

func TestAuditEvents_NoValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	if _, err := db.Collection("audit_events").InsertOne(ctx, bson.M{"anything": 1}); err != nil {
		t.Errorf("audit_events should accept any document: %v", err)
	}
}
