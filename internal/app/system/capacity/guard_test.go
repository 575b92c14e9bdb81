package capacity_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mtt/mttdash/internal/app/system/capacity"
	"github.com/mtt/mttdash/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func TestGuard_SerializesCountThenWrite(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := capacity.NewGuard(db, zap.NewNop(), nil)
	coll := db.Collection("widgets")
	const max = 5

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := g.Do(ctx, "widgets", func(ctx context.Context) error {
				n, err := coll.CountDocuments(ctx, bson.M{"active": true})
				if err != nil {
					return err
				}
				_, err = coll.InsertOne(ctx, bson.M{"_id": primitive.NewObjectID(), "active": n < max})
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	active, err := coll.CountDocuments(ctx, bson.M{"active": true})
	require.NoError(t, err)
	assert.Equal(t, int64(max), active)

	total, err := coll.CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
}

func TestGuard_PropagatesCallbackError(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := capacity.NewGuard(db, zap.NewNop(), nil)
	sentinel := errors.New("nope")
	coll := db.Collection("widgets")

	err := g.Do(ctx, "widgets", func(ctx context.Context) error {
		if _, err := coll.InsertOne(ctx, bson.M{"active": true}); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	if g.TransactionsEnabled() {
		// The insert was rolled back with the transaction.
		n, err := coll.CountDocuments(ctx, bson.M{})
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	}
}

func TestGuard_WithoutTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := capacity.NewGuard(db, zap.NewNop(), nil)
	g.DisableTransactions()
	require.False(t, g.TransactionsEnabled())

	calls := 0
	err := g.Do(ctx, "widgets", func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestGuard_CallbackErrorKeepsTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Learn whether this deployment runs transactions at all.
	baseline := capacity.NewGuard(db, zap.NewNop(), nil)
	require.NoError(t, baseline.Do(ctx, "widgets", func(ctx context.Context) error { return nil }))

	g := capacity.NewGuard(db, zap.NewNop(), nil)
	fnErr := mongo.CommandError{Code: 263, Message: "Cannot run in a multi-document transaction"}
	calls := 0
	err := g.Do(ctx, "widgets", func(ctx context.Context) error {
		calls++
		return fnErr
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "callback must not be replayed outside the transaction")
	assert.Equal(t, baseline.TransactionsEnabled(), g.TransactionsEnabled(),
		"an error from the callback must not change the guard's mode")
}
