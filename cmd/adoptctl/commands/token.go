package commands

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Apurer/pet-adoption-api/internal/app/api"
	"github.com/Apurer/pet-adoption-api/internal/app/seed"
	"github.com/Apurer/pet-adoption-api/internal/platform/auth"
)

func tokenCommand() *cobra.Command {
	var (
		as     string
		userID string
		role   string
		name   string
		email  string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development bearer token signed with AUTH_JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := api.LoadConfig()
			if err != nil {
				return err
			}
			verifier, err := auth.NewVerifier(cfg.JWTSecret)
			if err != nil {
				return err
			}
			var identity auth.Identity
			switch as {
			case "admin":
				identity = seed.Admin
			case "adopter":
				identity = seed.Adopter
			case "":
				id, err := uuid.Parse(userID)
				if err != nil {
					return fmt.Errorf("--user-id must be a UUID: %w", err)
				}
				identity = auth.Identity{UserID: id, Role: role, Name: name, Email: email}
			default:
				return fmt.Errorf("--as must be admin or adopter")
			}
			raw, err := verifier.Issue(identity, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), raw)
			return nil
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "use a seeded account: admin or adopter")
	cmd.Flags().StringVar(&userID, "user-id", "", "subject of the token")
	cmd.Flags().StringVar(&role, "role", auth.RoleUser, "user or admin")
	cmd.Flags().StringVar(&name, "name", "", "display name recorded in the user directory")
	cmd.Flags().StringVar(&email, "email", "", "email recorded in the user directory")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
