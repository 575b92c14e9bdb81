package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/mtt/mttdash/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that call a handler method directly.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures inserts documents directly, bypassing stores and the capacity
// policy, so tests can set up any state.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to insert test %s: %v", coll, err)
	}
}

// CreateUser creates an active administrator with the given password.
func (f *Fixtures) CreateUser(ctx context.Context, name, email, password string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("failed to hash password: %v", err)
	}
	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Email:        email,
		EmailCI:      text.Fold(email),
		PasswordHash: string(hash),
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.insert(ctx, "users", u)
	return u
}

// CreateDisabledUser creates a disabled administrator.
func (f *Fixtures) CreateDisabledUser(ctx context.Context, name, email, password string) models.User {
	f.t.Helper()
	u := f.CreateUser(ctx, name, email, password)
	if _, err := f.db.Collection("users").UpdateByID(ctx, u.ID, bson.M{"$set": bson.M{"status": "disabled"}}); err != nil {
		f.t.Fatalf("failed to disable test user: %v", err)
	}
	u.Status = "disabled"
	return u
}

// CreateSlider creates a slider with the given visibility.
func (f *Fixtures) CreateSlider(ctx context.Context, title string, visible bool) models.HomeSlider {
	f.t.Helper()
	now := time.Now().UTC()
	sl := models.HomeSlider{
		ID:        primitive.NewObjectID(),
		Image:     "https://cdn.example.com/home_slider/" + title + ".png",
		Title:     title,
		Visible:   visible,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "home_sliders", sl)
	return sl
}

// CreateDakwah creates a devotional post.
func (f *Fixtures) CreateDakwah(ctx context.Context, title string, published, highlight bool) models.Dakwah {
	f.t.Helper()
	now := time.Now().UTC()
	d := models.Dakwah{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Description: "Description for " + title,
		ImageURL:    "https://cdn.example.com/dakwah/" + title + ".png",
		Published:   published,
		Highlight:   highlight,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.insert(ctx, "daily_dakwah", d)
	return d
}

// CreateNews creates an article.
func (f *Fixtures) CreateNews(ctx context.Context, title, content string) models.News {
	f.t.Helper()
	now := time.Now().UTC()
	n := models.News{
		ID:        primitive.NewObjectID(),
		Title:     title,
		TitleCI:   text.Fold(title),
		Content:   content,
		Image:     "https://cdn.example.com/news/" + title + ".png",
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "news", n)
	return n
}

// CreateCategory creates a news category.
func (f *Fixtures) CreateCategory(ctx context.Context, name string) models.Category {
	f.t.Helper()
	c := models.Category{ID: primitive.NewObjectID(), Name: name, NameCI: text.Fold(name)}
	f.insert(ctx, "category", c)
	return c
}

// CreateProposal creates an unread proposal.
func (f *Fixtures) CreateProposal(ctx context.Context, name, email string) models.Proposal {
	f.t.Helper()
	p := models.Proposal{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Email:       email,
		EmailCI:     text.Fold(email),
		PhoneNumber: "+628123456789",
		FileURL:     "https://cdn.example.com/proposal/" + name + ".pdf",
		CreatedAt:   time.Now().UTC(),
	}
	f.insert(ctx, "proposals", p)
	return p
}

// CreateGalleryImage records an image of kind whose object lives at path.
func (f *Fixtures) CreateGalleryImage(ctx context.Context, kind, path string) models.GalleryImage {
	f.t.Helper()
	now := time.Now().UTC()
	img := models.GalleryImage{
		ID:        primitive.NewObjectID(),
		Kind:      kind,
		Name:      path,
		Path:      path,
		URL:       "https://cdn.example.com/" + path,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "gallery_images", img)
	return img
}
