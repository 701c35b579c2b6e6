package main

import (
	"errors"
	"fmt"
	"time"

	"eventify/internal/auth"
	"eventify/internal/models"
	"eventify/internal/repositories"
	"eventify/internal/services"
	"eventify/internal/utils"

	"github.com/spf13/cobra"
)

func newCreateOrganizerCommand() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "create-organizer",
		Short: "Create an organizer account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, logger, db, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			authService := services.NewAuthService(
				repositories.NewUserRepository(db.DB),
				repositories.NewTokenRepository(db.DB),
				utils.NewPasswordHasher(utils.DefaultArgon2Params()),
				auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, "eventify"),
				logger,
			)

			resp, err := authService.Register(ctx, &models.RegisterRequest{
				Name:                 name,
				Email:                email,
				Password:             password,
				PasswordConfirmation: password,
			})
			if err != nil {
				var verr *models.ValidationError
				if errors.As(err, &verr) {
					return fmt.Errorf("invalid organizer: %s", verr.Error())
				}
				return err
			}

			fmt.Printf("Organizer created with ID %d (%s)\n", resp.User.ID, resp.User.Email)
			fmt.Printf("Token (expires %s):\n%s\n", resp.ExpiresAt.Format(time.RFC3339), resp.Token)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "password (at least 8 characters)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
