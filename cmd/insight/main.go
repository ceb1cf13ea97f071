package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/beck40/insight/internal/adapters/driving/cli"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	// Optional .env for API keys; absence is fine.
	_ = godotenv.Load()

	if err := cli.Execute(version); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
