package main

import (
	"fmt"
	"os"

	"github.com/AdamBeresnev/shuttle-league/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	dbPath string
)

var rootCmd = &cobra.Command{
	Use:   "shuttle-league",
	Short: "Operate a shuttle-league database",
	Long: `A command-line interface for preparing and inspecting the league
database used by the web server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if dbPath == "" {
			dbPath = cfg.DatabasePath
		}
		return nil
	},
}

func Execute() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %s\n", err)
		os.Exit(1)
	}
	cfg.InstallLogger(os.Stderr)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your command '%s'\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the SQLite database (defaults to DATABASE_PATH)")
}

func main() {
	Execute()
}
