package main

import (
	"os"

	"github.com/charmbracelet/log"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error("Scraper exited with error", "error", err)
		os.Exit(1)
	}
}
