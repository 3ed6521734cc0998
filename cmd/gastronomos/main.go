package main

import (
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	logLevel string
	port     string
	envFile  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gastronomos",
		Short: "Restaurant import and search service for a group of friends",
		Long: `Gastronomos turns restaurant links shared in a group chat into records,
and answers free-text searches over the group's restaurants and live place results.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a .env file to load if present")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides PORT)")

	extractCmd := &cobra.Command{
		Use:   "extract <url>",
		Short: "Extract restaurant details from a link and print them as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runExtract,
	}

	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a chat search and print the results as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}

	rootCmd.AddCommand(serveCmd, extractCmd, searchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
