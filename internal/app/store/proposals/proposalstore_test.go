package proposalstore_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	proposalstore "github.com/mtt/mttdash/internal/app/store/proposals"
	"github.com/mtt/mttdash/internal/app/system/paging"
	"github.com/mtt/mttdash/internal/domain/models"
	"github.com/mtt/mttdash/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func proposal(name, email, phone string) models.Proposal {
	return models.Proposal{Name: name, Email: email, PhoneNumber: phone, FileURL: "https://files.example.com/proposal/" + name + ".pdf"}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := proposalstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := store.Create(ctx, proposal("Aisyah", "aisyah@example.com", "+6281234567890"))
	require.NoError(t, err)
	assert.False(t, p.IsRead)
	assert.Nil(t, p.ReadAt)

	_, err = store.Create(ctx, proposal("Other", "AISYAH@example.com", "+6281111111111"))
	assert.True(t, errors.Is(err, proposalstore.ErrDuplicateEmail), "got %v", err)
}

func TestList_FiltersAndPaging(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := proposalstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	var ids []primitive.ObjectID
	for i := 0; i < 12; i++ {
		p, err := store.Create(ctx, proposal(fmt.Sprintf("Person %02d", i), fmt.Sprintf("p%02d@example.com", i), fmt.Sprintf("+62812000000%02d", i)))
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	_, err := store.Create(ctx, proposal("Yayasan Nur", "info@nur.org", "+6285555555555"))
	require.NoError(t, err)

	for _, id := range ids[:3] {
		_, err := store.MarkRead(ctx, id)
		require.NoError(t, err)
	}

	all, total, err := store.List(ctx, proposalstore.ListFilter{}, paging.Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 13, total)
	assert.Len(t, all, 10)
	assert.Equal(t, "Yayasan Nur", all[0].Name, "newest first")

	second, _, err := store.List(ctx, proposalstore.ListFilter{}, paging.Page{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, second, 3)

	read := true
	readList, total, err := store.List(ctx, proposalstore.ListFilter{IsRead: &read}, paging.Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	for _, p := range readList {
		assert.True(t, p.IsRead)
	}

	unread, err := store.CountUnread(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 10, unread)

	byName, total, err := store.List(ctx, proposalstore.ListFilter{Search: "yayasan"}, paging.Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, byName, 1)

	byEmail, _, err := store.List(ctx, proposalstore.ListFilter{Search: "NUR.ORG"}, paging.Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, byEmail, 1)

	byPhone, _, err := store.List(ctx, proposalstore.ListFilter{Search: "+6285555"}, paging.Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, byPhone, 1)
}

func TestMarkRead_KeepsFirstReadAt(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := proposalstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := store.Create(ctx, proposal("Hasan", "hasan@example.com", "+628123"))
	require.NoError(t, err)

	first, err := store.MarkRead(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, first.ReadAt)
	assert.True(t, first.IsRead)

	time.Sleep(5 * time.Millisecond)
	second, err := store.MarkRead(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, first.ReadAt.Equal(*second.ReadAt))

	_, err = store.MarkRead(ctx, primitive.NewObjectID())
	assert.True(t, errors.Is(err, proposalstore.ErrNotFound))
}
