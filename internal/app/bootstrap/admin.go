// internal/app/bootstrap/admin.go
package bootstrap

import (
	"context"
	"errors"
	"strings"

	userstore "github.com/mtt/mttdash/internal/app/store/users"
	"github.com/mtt/mttdash/internal/domain/models"
	"go.uber.org/zap"
)

// ensureAdmin creates the seed administrator when no user has email yet.
// An existing user is left alone, including their password.
func ensureAdmin(ctx context.Context, deps DBDeps, email, password string, logger *zap.Logger) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	users := userstore.New(deps.MongoDatabase)

	_, err := users.GetByEmail(ctx, email)
	if err == nil {
		logger.Debug("seed admin already exists", zap.String("email", email))
		return nil
	}
	if !errors.Is(err, userstore.ErrNotFound) {
		return err
	}

	name, _, _ := strings.Cut(email, "@")
	u, err := users.Create(ctx, models.User{Name: name, Email: email}, password)
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		// Another instance created it first.
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("created seed admin", zap.String("email", u.Email), zap.String("user_id", u.ID.Hex()))
	return nil
}
