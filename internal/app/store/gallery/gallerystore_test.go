package gallerystore_test

import (
	"errors"
	"fmt"
	"testing"

	gallerystore "github.com/mtt/mttdash/internal/app/store/gallery"
	"github.com/mtt/mttdash/internal/app/system/paging"
	"github.com/mtt/mttdash/internal/domain/models"
	"github.com/mtt/mttdash/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func image(kind string, i int) models.GalleryImage {
	path := fmt.Sprintf("%s/%s-%d.png", kind, kind, i)
	return models.GalleryImage{Kind: kind, Name: fmt.Sprintf("%s-%d.png", kind, i), Path: path, URL: "https://cdn.example.com/" + path}
}

func TestCreate_RejectsUnknownKind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := gallerystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, image("banner", 1))
	assert.True(t, errors.Is(err, gallerystore.ErrUnknownKind))

	_, err = store.Create(ctx, models.GalleryImage{Kind: models.GalleryNews, Name: "x"})
	assert.Error(t, err, "path and url are required")
}

func TestList_PagesPerKind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := gallerystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i := 0; i < 11; i++ {
		_, err := store.Create(ctx, image(models.GalleryDakwah, i))
		require.NoError(t, err)
	}
	_, err := store.Create(ctx, image(models.GalleryNews, 0))
	require.NoError(t, err)

	first, total, err := store.List(ctx, models.GalleryDakwah, paging.Page{Page: 1, Limit: paging.GalleryLimit})
	require.NoError(t, err)
	assert.EqualValues(t, 11, total)
	assert.Len(t, first, 9)
	assert.Equal(t, "dakwah-10.png", first[0].Name, "newest first")

	second, _, err := store.List(ctx, models.GalleryDakwah, paging.Page{Page: 2, Limit: paging.GalleryLimit})
	require.NoError(t, err)
	assert.Len(t, second, 2)

	news, total, err := store.List(ctx, models.GalleryNews, paging.Page{Page: 1, Limit: 9})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, news, 1)
}

func TestGetRenameDelete_ScopedByKind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := gallerystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	img, err := store.Create(ctx, image(models.GalleryHomeSlider, 1))
	require.NoError(t, err)

	_, err = store.GetByID(ctx, models.GalleryNews, img.ID)
	assert.True(t, errors.Is(err, gallerystore.ErrNotFound), "wrong kind must not match")

	renamed, err := store.Rename(ctx, models.GalleryHomeSlider, img.ID, "Hero banner")
	require.NoError(t, err)
	assert.Equal(t, "Hero banner", renamed.Name)

	byPath, err := store.GetByPath(ctx, img.Path)
	require.NoError(t, err)
	assert.Equal(t, img.ID, byPath.ID)

	assert.True(t, errors.Is(store.Delete(ctx, models.GalleryNews, img.ID), gallerystore.ErrNotFound))
	require.NoError(t, store.Delete(ctx, models.GalleryHomeSlider, img.ID))
	assert.True(t, errors.Is(store.Delete(ctx, models.GalleryHomeSlider, img.ID), gallerystore.ErrNotFound))

	_, err = store.Rename(ctx, models.GalleryHomeSlider, primitive.NewObjectID(), "x")
	assert.True(t, errors.Is(err, gallerystore.ErrNotFound))
}
