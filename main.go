package main

import (
	"fmt"
	"os"

	"camp-proximity/internal/config"
	"camp-proximity/internal/logger"
	"camp-proximity/internal/pipeline"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger setup failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Missing data, schema problems and write failures are reported and
	// degrade to a camp-only map; none of them are fatal to the process.
	if err := pipeline.New(cfg, log).Run(); err != nil {
		log.Warn("run finished with problems", zap.Error(err))
	}
}
