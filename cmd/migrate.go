package cmd

import (
	"github.com/vibast-solutions/ms-go-webauth/app/database"
	"github.com/vibast-solutions/ms-go-webauth/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status|version]",
	Short:     "Apply or inspect database migrations",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status", "version"},
	RunE:      runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err = configureLogging(cfg); err != nil {
		return err
	}

	db, err := database.Open(cmd.Context(), cfg.MySQL)
	if err != nil {
		return err
	}
	defer db.Close()

	logrus.WithField("command", args[0]).Info("Running migrations")
	return database.Migrate(cmd.Context(), db, args[0])
}
