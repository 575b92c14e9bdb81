// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"io"

	"github.com/dalemusser/waffle/config"
	"github.com/mtt/mttdash/internal/app/system/indexes"
	"github.com/mtt/mttdash/internal/app/system/objectstore"
	"github.com/mtt/mttdash/internal/app/system/timeouts"
	"github.com/mtt/mttdash/internal/app/system/validators"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB connects to MongoDB and opens the configured storage bucket.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetAppName("mttdash")
	if appCfg.MongoMaxPoolSize > 0 {
		opts.SetMaxPoolSize(appCfg.MongoMaxPoolSize)
	}
	if appCfg.MongoMinPoolSize > 0 {
		opts.SetMinPoolSize(appCfg.MongoMinPoolSize)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("ping mongo: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	bucket, err := openBucket(ctx, appCfg)
	if err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, err
	}
	logger.Info("object storage ready", zap.String("backend", bucket.Backend()))

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
		Bucket:        bucket,
	}, nil
}

// openBucket builds the storage backend named by storage_type.
func openBucket(ctx context.Context, appCfg AppConfig) (objectstore.Bucket, error) {
	switch appCfg.StorageType {
	case objectstore.BackendS3:
		b, err := objectstore.NewS3(ctx, objectstore.S3Config{
			Region:    appCfg.StorageS3Region,
			Bucket:    appCfg.StorageS3Bucket,
			Prefix:    appCfg.StorageS3Prefix,
			Endpoint:  appCfg.StorageS3Endpoint,
			AccessKey: appCfg.StorageS3AccessKey,
			SecretKey: appCfg.StorageS3SecretKey,
			PublicURL: appCfg.StoragePublicURL,
		})
		if err != nil {
			return nil, fmt.Errorf("open s3 bucket: %w", err)
		}
		return b, nil
	case objectstore.BackendGCS:
		b, err := objectstore.NewGCS(ctx, objectstore.GCSConfig{
			Bucket:          appCfg.StorageGCSBucket,
			CredentialsFile: appCfg.StorageGCSCredentials,
			PublicURL:       appCfg.StoragePublicURL,
		})
		if err != nil {
			return nil, fmt.Errorf("open gcs bucket: %w", err)
		}
		return b, nil
	default:
		b, err := objectstore.NewLocal(appCfg.StorageLocalPath, appCfg.StorageLocalURL)
		if err != nil {
			return nil, fmt.Errorf("open local storage: %w", err)
		}
		return b, nil
	}
}

// closeBucket releases a bucket's client when it holds one.
func closeBucket(b objectstore.Bucket) error {
	if c, ok := b.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// EnsureSchema applies collection validators and then indexes. Validators go
// first so documents written during index builds are already checked.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase
	if err := validators.EnsureAll(ctx, db); err != nil {
		logger.Error("apply collection validators", zap.Error(err))
		return err
	}
	if err := indexes.EnsureAll(ctx, db, logger); err != nil {
		logger.Error("ensure indexes", zap.Error(err))
		return err
	}
	return nil
}

