package cli

import (
	"freight-broker-be/internal/config"
	"freight-broker-be/internal/model"
	"freight-broker-be/pkg/database"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the broker tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			db, err := openDB(cfg)
			if err != nil {
				return err
			}

			models := model.All()
			if err := database.AutoMigrate(db, models...); err != nil {
				return err
			}
			okColor.Fprintf(cmd.OutOrStdout(), "Migrated %d tables (%s)\n", len(models), cfg.Database.Driver)
			return nil
		},
	}
}
