package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/eslsoft/bookdrill/internal/infrastructure/config"
	"github.com/eslsoft/bookdrill/internal/infrastructure/database"
)

// dbInitCmd creates or updates the database schema.
var dbInitCmd = &cobra.Command{
	Use:   "db-init",
	Short: "Initialize the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		db, cleanup, err := database.NewConnection(cfg)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer cleanup()

		if err := database.Migrate(db); err != nil {
			return err
		}

		log.Printf("schema migration complete (driver=%s)", cfg.DatabaseDriver())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbInitCmd)
}
