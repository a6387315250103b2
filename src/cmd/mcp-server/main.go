// Package main provides the MCP server entry point for the versioning
// backend. CI orchestration agents report build lifecycle transitions
// through the report_build_* tools.
package main

import (
	"log"
	"os"

	"versioning-backend/src/config"
	"versioning-backend/src/logger"
	"versioning-backend/src/mcp"
	"versioning-backend/src/pipeline"
)

const version = "1.0.0"

func main() {
	cfg := config.MustLoadFromEnv()

	// stdout carries the MCP protocol, so logs go to stderr
	appLogger := logger.New(os.Stderr, logger.Options{
		Format: cfg.Log.Format,
		Level:  cfg.Log.Level,
	})

	backend, err := pipeline.Open(cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to open backend: %v", err)
	}
	defer backend.Close()

	if backend.Mode == pipeline.LocalMode {
		appLogger.Info("DATABASE_URL not set, build records are kept in memory")
	}

	server := mcp.NewServer(backend.Service, version)

	// Run server over stdin/stdout (stdio transport)
	if err := server.Run(); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
}
