package categorystore_test

import (
	"errors"
	"testing"

	categorystore "github.com/mtt/mttdash/internal/app/store/categories"
	"github.com/mtt/mttdash/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestList_SortedByName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := categorystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, name := range []string{"Sosial", "dakwah", "Pendidikan"} {
		if _, err := store.Create(ctx, name); err != nil {
			t.Fatalf("Create(%q) failed: %v", name, err)
		}
	}

	got, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"dakwah", "Pendidikan", "Sosial"}
	if len(got) != len(want) {
		t.Fatalf("got %d categories, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Name != want[i] {
			t.Errorf("category %d: got %q, want %q", i, got[i].Name, want[i])
		}
	}
}

func TestCreate_DuplicateIgnoresCase(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := categorystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, "Dakwah"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_, err := store.Create(ctx, " DAKWAH ")
	if !errors.Is(err, categorystore.ErrDuplicate) {
		t.Errorf("second Create: got %v, want ErrDuplicate", err)
	}
	if _, err := store.Create(ctx, ""); err == nil {
		t.Error("expected error for empty name")
	}
}

func TestExistsAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := categorystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c, err := store.Create(ctx, "Berita")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	ok, err := store.Exists(ctx, c.ID)
	if err != nil || !ok {
		t.Fatalf("Exists: got %v, %v; want true, nil", ok, err)
	}
	if err := store.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if ok, _ := store.Exists(ctx, c.ID); ok {
		t.Error("category should be gone after Delete")
	}
	if err := store.Delete(ctx, primitive.NewObjectID()); !errors.Is(err, categorystore.ErrNotFound) {
		t.Errorf("Delete missing: got %v, want ErrNotFound", err)
	}
}
