package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hextras-api",
	Short: "Hextras task marketplace API",
}

func main() {
	// Missing .env is fine; env vars and defaults take over
	_ = godotenv.Load()

	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("command failed: %v", err)
	}
}
