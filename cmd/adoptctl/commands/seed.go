package commands

import (
	"github.com/spf13/cobra"

	"github.com/Apurer/pet-adoption-api/internal/app/api"
	"github.com/Apurer/pet-adoption-api/internal/app/seed"
	petsapp "github.com/Apurer/pet-adoption-api/internal/domains/pets/application"
	userapp "github.com/Apurer/pet-adoption-api/internal/domains/users/application"
	"github.com/Apurer/pet-adoption-api/internal/platform/migrations"
)

func seedCommand() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the demo catalogue and accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, closeDB, err := connect(ctx)
			if err != nil {
				return err
			}
			defer closeDB()
			if migrate {
				if err := migrations.Run(db); err != nil {
					return err
				}
			}
			backend := api.NewPostgresBackend(db)
			n, err := seed.Run(ctx,
				petsapp.NewService(backend.Pets, backend.Tx.ForPets()),
				userapp.NewService(backend.Users),
			)
			if err != nil {
				return err
			}
			logger().Info("database seeded",
				"pets", n,
				"admin", seed.Admin.UserID.String(),
				"adopter", seed.Adopter.UserID.String(),
			)
			return nil
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply pending migrations first")
	return cmd
}
