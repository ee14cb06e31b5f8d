// Command todayd serves the API the today client syncs with.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"today/internal/config"
)

// Version is set at build time.
var Version = "dev"

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "todayd",
		Short:         "todayd - task sync server for today",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "todayd.yaml", "path to the server config file")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, nil))
}

func loadConfig() (*config.ServerConfig, error) {
	return config.LoadServer(configPath)
}
