package main

import (
	"fmt"
	"os"

	"github.com/deqistore/deqistore-backend/internal/cli"
	"github.com/deqistore/deqistore-backend/pkg/logger"
)

func main() {
	logger.Initialize(logger.Config{
		Level:       "warn",
		Format:      "console",
		EnableColor: true,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
