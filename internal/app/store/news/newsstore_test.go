package newsstore_test

import (
	"errors"
	"testing"

	newsstore "github.com/mtt/mttdash/internal/app/store/news"
	"github.com/mtt/mttdash/internal/app/system/paging"
	"github.com/mtt/mttdash/internal/domain/models"
	"github.com/mtt/mttdash/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := newsstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	n, err := store.Create(ctx, models.News{Title: "  Ramadan Schedule ", Content: "<p>Details here</p>", Image: "/uploads/a.png"})
	require.NoError(t, err)
	assert.Equal(t, "Ramadan Schedule", n.Title)
	assert.False(t, n.ID.IsZero())

	got, err := store.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "<p>Details here</p>", got.Content)

	_, err = store.GetByID(ctx, primitive.NewObjectID())
	assert.True(t, errors.Is(err, newsstore.ErrNotFound))
}

func TestCreate_RequiresTitle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := newsstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.News{Title: "   ", Content: "body"})
	assert.Error(t, err)
}

func TestList_PagingAndSearch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := newsstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cat := primitive.NewObjectID()
	titles := []string{"Kajian Pekanan", "Santunan Yatim", "Kajian Akbar", "Wakaf Sumur", "Kajian Subuh"}
	for i, title := range titles {
		n := models.News{Title: title, Content: "content body"}
		if i%2 == 0 {
			n.CategoryID = &cat
		}
		_, err := store.Create(ctx, n)
		require.NoError(t, err)
	}

	page, total, err := store.List(ctx, newsstore.ListFilter{}, paging.Page{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, "Kajian Subuh", page[0].Title, "newest first")

	page, _, err = store.List(ctx, newsstore.ListFilter{}, paging.Page{Page: 3, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 1)

	found, total, err := store.List(ctx, newsstore.ListFilter{Search: "KAJIAN"}, paging.Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, found, 3)

	inCat, total, err := store.List(ctx, newsstore.ListFilter{CategoryID: &cat}, paging.Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, inCat, 3)

	// regex metacharacters are literal
	none, total, err := store.List(ctx, newsstore.ListFilter{Search: ".*"}, paging.Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	assert.Empty(t, none)
}

func TestUpdate_ReturnsPrevious(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := newsstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	n, err := store.Create(ctx, models.News{Title: "Old", Content: "old body", Image: "https://cdn/x/old.png", ImagePath: "news/old.png"})
	require.NoError(t, err)

	newTitle := "New Title"
	newImage := "https://cdn/x/new.png"
	newPath := "news/new.png"
	before, err := store.Update(ctx, n.ID, newsstore.Patch{Title: &newTitle, Image: &newImage, ImagePath: &newPath})
	require.NoError(t, err)
	assert.Equal(t, "news/old.png", before.ImagePath)

	got, err := store.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Title", got.Title)
	assert.Equal(t, "old body", got.Content, "unset fields are unchanged")
	assert.Equal(t, newPath, got.ImagePath)

	_, err = store.Update(ctx, primitive.NewObjectID(), newsstore.Patch{Title: &newTitle})
	assert.True(t, errors.Is(err, newsstore.ErrNotFound))

	blank := " "
	_, err = store.Update(ctx, n.ID, newsstore.Patch{Title: &blank})
	assert.Error(t, err)
}

func TestDeleteAndClearCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := newsstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cat := primitive.NewObjectID()
	a, err := store.Create(ctx, models.News{Title: "A", CategoryID: &cat})
	require.NoError(t, err)
	b, err := store.Create(ctx, models.News{Title: "B", CategoryID: &cat})
	require.NoError(t, err)

	n, err := store.ClearCategory(ctx, cat)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	got, err := store.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)

	deleted, err := store.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", deleted.Title)

	_, err = store.Delete(ctx, a.ID)
	assert.True(t, errors.Is(err, newsstore.ErrNotFound))
}
