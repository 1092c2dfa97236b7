package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	host string
)

var rootCmd = &cobra.Command{
	Use:   "scraper-cli",
	Short: "A CLI to interact with a running nuvla-job-stats-scraper",
	Long: `A command-line interface for making requests to the operational endpoints
of the nuvla-job-stats-scraper, served when it runs with --listen-address.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:9102", "The host address of the scraper")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your command '%s'", err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
