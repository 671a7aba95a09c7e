package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/tour-booking/internal/database"
	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/repository"
	"github.com/iliyamo/tour-booking/internal/utils"
)

func migrateCmd() *cobra.Command {
	var adminEmail, adminPassword, adminName string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables and optionally an admin account",
		Long: `Apply the embedded schema.  Tables that already exist are left alone.

Examples:
  tourbook migrate
  tourbook migrate --admin-email ops@example.com --admin-password 'change-me-now'`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx := cmd.Context()
			db, err := database.Open(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(ctx, db, log); err != nil {
				return err
			}
			if adminEmail == "" {
				return nil
			}
			return seedAdmin(ctx, repository.NewUserRepo(db), adminName, adminEmail, adminPassword, cfg.BcryptCost, log)
		},
	}
	cmd.Flags().StringVar(&adminEmail, "admin-email", "", "create an admin account with this email")
	cmd.Flags().StringVar(&adminPassword, "admin-password", "", "password of the admin account")
	cmd.Flags().StringVar(&adminName, "admin-name", "Administrator", "display name of the admin account")
	return cmd
}

// seedAdmin creates an admin unless the email is already registered.
func seedAdmin(ctx context.Context, users *repository.UserRepo, name, email, password string, cost int, log *zap.Logger) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if len(password) < utils.MinPasswordLen {
		return fmt.Errorf("admin password must be at least %d characters", utils.MinPasswordLen)
	}
	if _, err := users.GetByEmail(ctx, email); err == nil {
		log.Info("admin already exists", zap.String("email", email))
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	u := &model.User{Name: name, Email: email, PasswordHash: hash, RoleID: model.RoleAdmin, IsActive: true}
	if err := users.Create(ctx, u); err != nil {
		return err
	}
	log.Info("admin created", zap.String("email", email), zap.Uint64("id", u.ID))
	return nil
}
