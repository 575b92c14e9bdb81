// Command mttctl performs maintenance tasks against the dashboard database:
// managing administrator accounts and inspecting capacity-bounded content.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
)

const programName = "mttctl"

var globalFlags = struct {
	debug    bool
	mongoURI string
	database string
	timeout  time.Duration
}{}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	if globalFlags.debug {
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger.Named(programName)
}

// connect opens the database named by the global flags. The caller must
// invoke the returned func to disconnect.
func connect(ctx context.Context) (*mongo.Database, func(), error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(globalFlags.mongoURI).SetAppName(programName))
	if err != nil {
		return nil, nil, fmt.Errorf("connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	return client.Database(globalFlags.database), func() { _ = client.Disconnect(context.Background()) }, nil
}

func rootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Maintenance commands for the MTT dashboard backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().
		BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")
	rootCmd.PersistentFlags().
		StringVar(&globalFlags.mongoURI, "mongo-uri", envOr("MTTDASH_MONGO_URI", "mongodb://localhost:27017"), "MongoDB connection URI")
	rootCmd.PersistentFlags().
		StringVar(&globalFlags.database, "mongo-database", envOr("MTTDASH_MONGO_DATABASE", "mtt_dashboard"), "MongoDB database name")
	rootCmd.PersistentFlags().
		DurationVar(&globalFlags.timeout, "timeout", 30*time.Second, "overall command timeout")

	rootCmd.AddCommand(userCommand())
	rootCmd.AddCommand(capacityCommand())
	return rootCmd
}

func main() {
	_, _ = maxprocs.Set()
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", programName, err)
		os.Exit(1)
	}
}
