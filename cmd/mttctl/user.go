package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	userstore "github.com/mtt/mttdash/internal/app/store/users"
	"github.com/mtt/mttdash/internal/app/system/authutil"
	"github.com/mtt/mttdash/internal/domain/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func userCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage administrator accounts",
	}
	cmd.AddCommand(userAddCommand())
	cmd.AddCommand(userPasswdCommand())
	cmd.AddCommand(userStatusCommand())
	return cmd
}

func userAddCommand() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an administrator",
		RunE: func(cmd *cobra.Command, args []string) error {
			email = strings.TrimSpace(email)
			if email == "" {
				return errors.New("--email is required")
			}
			if err := authutil.ValidatePassword(password); err != nil {
				return err
			}
			if name == "" {
				name, _, _ = strings.Cut(email, "@")
			}
			return withUsers(cmd.Context(), func(ctx context.Context, users *userstore.Store, logger *zap.Logger) error {
				u, err := users.Create(ctx, models.User{Name: name, Email: email}, password)
				if errors.Is(err, userstore.ErrDuplicateEmail) {
					return fmt.Errorf("a user with email %s already exists", email)
				}
				if err != nil {
					return err
				}
				logger.Info("created administrator", zap.String("user_id", u.ID.Hex()))
				fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", u.Email, u.ID.Hex())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name (defaults to the email's local part)")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	return cmd
}

func userPasswdCommand() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Reset an administrator's password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := authutil.ValidatePassword(password); err != nil {
				return err
			}
			return withUsers(cmd.Context(), func(ctx context.Context, users *userstore.Store, logger *zap.Logger) error {
				u, err := lookup(ctx, users, email)
				if err != nil {
					return err
				}
				if err := users.SetPassword(ctx, u.ID, password); err != nil {
					return err
				}
				logger.Info("password reset", zap.String("user_id", u.ID.Hex()))
				fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s\n", u.Email)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "new password")
	return cmd
}

func userStatusCommand() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:       "status (active|disabled)",
		Short:     "Enable or disable an administrator",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{userstore.StatusActive, userstore.StatusDisabled},
		RunE: func(cmd *cobra.Command, args []string) error {
			status := args[0]
			return withUsers(cmd.Context(), func(ctx context.Context, users *userstore.Store, logger *zap.Logger) error {
				u, err := lookup(ctx, users, email)
				if err != nil {
					return err
				}
				if err := users.SetStatus(ctx, u.ID, status); err != nil {
					return err
				}
				logger.Info("status changed", zap.String("user_id", u.ID.Hex()), zap.String("status", status))
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", u.Email, status)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	return cmd
}

func lookup(ctx context.Context, users *userstore.Store, email string) (models.User, error) {
	u, err := users.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, userstore.ErrNotFound) {
		return u, fmt.Errorf("no user with email %q", email)
	}
	return u, err
}

func withUsers(ctx context.Context, fn func(context.Context, *userstore.Store, *zap.Logger) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, globalFlags.timeout)
	defer cancel()

	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	db, disconnect, err := connect(ctx)
	if err != nil {
		return err
	}
	defer disconnect()
	return fn(ctx, userstore.New(db), logger)
}
