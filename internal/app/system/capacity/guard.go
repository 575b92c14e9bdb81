// Package capacity serializes count-decide-write sequences on
// capacity-bounded collections.
//
// Each sequence runs under an in-process mutex keyed by collection and,
// when the server supports it, inside a transaction that first bumps a
// per-collection document in capacity_guards. Two instances racing on the
// same collection both write that document, so one of them hits a write
// conflict and the driver retries it against the committed state.
package capacity

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mtt/mttdash/internal/app/system/metrics"
	"github.com/mtt/mttdash/internal/app/system/txn"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// GuardCollection holds one document per guarded collection.
const GuardCollection = "capacity_guards"

var errNoTxn = errors.New("transactions not supported")

// Guard runs capacity mutations one at a time per collection.
type Guard struct {
	client  *mongo.Client
	guards  *mongo.Collection
	log     *zap.Logger
	metrics *metrics.Metrics

	locks    sync.Map // collection name -> *sync.Mutex
	noTxn    atomic.Bool
	warnOnce sync.Once
}

// NewGuard returns a Guard bound to db. m may be nil.
func NewGuard(db *mongo.Database, logger *zap.Logger, m *metrics.Metrics) *Guard {
	return &Guard{
		client:  db.Client(),
		guards:  db.Collection(GuardCollection),
		log:     logger,
		metrics: m,
	}
}

// DisableTransactions makes the guard use the mutex only. Intended for
// deployments that are known to run a standalone server.
func (g *Guard) DisableTransactions() {
	g.noTxn.Store(true)
}

// TransactionsEnabled reports whether the guard still uses transactions.
func (g *Guard) TransactionsEnabled() bool {
	return !g.noTxn.Load()
}

// Do runs fn as the only capacity mutation on name in this process, inside
// a transaction when possible. fn may run more than once and must use the
// context it is given for every database call.
func (g *Guard) Do(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	mu := g.lock(name)
	mu.Lock()
	defer mu.Unlock()

	if g.noTxn.Load() {
		g.metrics.TxnFallback()
		return fn(ctx)
	}

	// Only a failure before fn ever ran may switch the guard to mutex-only
	// mode; errors from fn or the commit are returned as they are.
	ran := false
	err := txn.Run(ctx, g.client, func(sc mongo.SessionContext) error {
		if err := g.bump(sc, name); err != nil {
			if !ran && txn.IsNotSupported(err) {
				return errNoTxn
			}
			return err
		}
		ran = true
		return fn(sc)
	})
	if !ran && (errors.Is(err, errNoTxn) || (err != nil && txn.IsNotSupported(err))) {
		g.fallback(name, err)
		g.metrics.TxnFallback()
		return fn(ctx)
	}
	return err
}

func (g *Guard) lock(name string) *sync.Mutex {
	v, _ := g.locks.LoadOrStore(name, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (g *Guard) bump(ctx context.Context, name string) error {
	_, err := g.guards.UpdateOne(ctx,
		bson.M{"_id": name},
		bson.M{
			"$inc": bson.M{"version": 1},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

func (g *Guard) fallback(name string, cause error) {
	g.noTxn.Store(true)
	g.warnOnce.Do(func() {
		g.log.Warn("mongo transactions unavailable; capacity checks are serialized in-process only",
			zap.String("collection", name),
			zap.Error(cause))
	})
}
