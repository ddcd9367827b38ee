package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dronemind-ai/dronemind/internal/cli"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "dronemindd",
		Short: "DroneMind daemon",
		Long: `DroneMind daemon for serving the drone-spec chat API and
refreshing the knowledge base from vendor spec pages.

Environment variables use the DRONEMIND_ prefix, e.g.
  DRONEMIND_DATABASE_URL    Postgres connection string (required)
  DRONEMIND_OPENAI_API_KEY  OpenAI-compatible API key`,
		Version: version,
	}

	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.IngestCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
