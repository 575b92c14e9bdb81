// Package txn wraps MongoDB multi-document transactions and recognizes the
// errors a standalone server returns when transactions are unavailable.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// Server error codes meaning "transactions are not available here".
const (
	codeIllegalOperation                   = 20
	codeOperationNotSupportedInTransaction = 263
)

// Run executes fn inside a snapshot transaction with majority writes.
//
// The driver retries fn on transient errors (write conflicts included), so fn
// must be safe to run more than once and must use sc for every operation.
func Run(ctx context.Context, client *mongo.Client, fn func(sc mongo.SessionContext) error) error {
	sess, err := client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	opts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	}, opts)
	return err
}

// IsNotSupported reports whether err means the deployment cannot run
// transactions (standalone mongod, some emulators). Session state errors
// such as "cannot start transaction N on session ... newer transaction" are
// not matched; they are transient.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		if ce.Code == codeIllegalOperation || ce.Code == codeOperationNotSupportedInTransaction {
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	has := func(s string) bool { return strings.Contains(msg, s) }

	switch {
	case has("illegal operation"):
		return true
	case has("transaction") && has("replica set"):
		return true
	case has("session") && has("not supported"):
		return true
	}
	return false
}
