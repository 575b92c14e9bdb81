// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops background jobs, then closes the bucket and MongoDB client.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	svcMu.Lock()
	s := svc
	svc = nil
	svcMu.Unlock()
	if s != nil {
		s.Runner.Stop()
		s.Limiter.Stop()
	}

	if deps.Bucket != nil {
		if err := closeBucket(deps.Bucket); err != nil {
			logger.Warn("object storage close failed", zap.Error(err))
		}
	}

	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
