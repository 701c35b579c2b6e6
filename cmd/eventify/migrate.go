package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"eventify/internal/database"

	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_, logger, db, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := database.NewMigrator(db.DB, logger).Up(ctx)
			if err != nil {
				return err
			}
			logger.Info().Int("applied", applied).Msg("migrations complete")
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show which migrations have been applied",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_, logger, db, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			status, err := database.NewMigrator(db.DB, logger).Status(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED")
			for _, s := range status {
				fmt.Fprintf(w, "%03d\t%s\t%t\n", s.Version, s.Name, s.Applied)
			}
			return w.Flush()
		},
	})
	return cmd
}
