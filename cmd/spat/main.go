package main

import (
	"os"

	"github.com/joho/godotenv"

	"spat/internal/logging"
)

func main() {
	// Pick up SPAT_* settings from a local .env file when present.
	_ = godotenv.Load()

	logger := logging.NewLogger(logging.Config{
		Format: "human",
		Level:  "info",
	})

	if err := rootCmd.Execute(); err != nil {
		logger.Error("Command execution failed", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}
}
