package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"today/internal/server/store"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long: `Create or update the database schema.

serve applies the schema on start as well; migrate lets you prepare the
database ahead of a deploy.

Examples:
  todayd migrate
  todayd migrate --config /etc/todayd.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			st, err := store.Open(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %s\n", cfg.Database)
			return nil
		},
	}
}
