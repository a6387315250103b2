// Package pipeline opens the storage and event backends selected by
// configuration and builds the build service on top of them.
// This package is used by both the CLI and the MCP server.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"versioning-backend/src/broker"
	"versioning-backend/src/builds"
	"versioning-backend/src/config"
	"versioning-backend/src/logger"
	"versioning-backend/src/store"
)

// pingTimeout bounds the broker reachability check in Open.
const pingTimeout = 5 * time.Second

// Mode is the backend selection.
type Mode int

const (
	// LocalMode keeps records in memory for the life of the process.
	LocalMode Mode = iota
	// PersistentMode stores records in Postgres.
	PersistentMode
)

func (m Mode) String() string {
	switch m {
	case LocalMode:
		return "local"
	case PersistentMode:
		return "persistent"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// DetectMode selects PersistentMode when a database URL is configured.
func DetectMode(cfg *config.Config) Mode {
	if cfg.Store.DatabaseURL != "" {
		return PersistentMode
	}
	return LocalMode
}

// Backend bundles the opened backends and the service built on them.
type Backend struct {
	Mode    Mode
	Store   store.Store
	Events  broker.Broker
	Service *builds.Service
}

// Open opens the store for the detected mode and, when brokers are
// configured, the Redpanda event publisher. Event publishing is independent
// of the storage mode.
func Open(cfg *config.Config, log logger.Logger) (*Backend, error) {
	b := &Backend{Mode: DetectMode(cfg)}

	switch b.Mode {
	case PersistentMode:
		pg, err := store.NewPostgresStore(cfg.Store.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create Postgres store: %w", err)
		}
		b.Store = pg
	default:
		b.Store = store.NewMemoryStore()
	}

	if len(cfg.Events.Brokers) > 0 {
		events, err := broker.NewRedpandaBroker(cfg.Events.Brokers, log)
		if err != nil {
			b.Store.Close()
			return nil, fmt.Errorf("failed to create Redpanda broker: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		if err := events.Ping(pingCtx); err != nil {
			// The client keeps retrying; writes never wait on events.
			log.Error("event brokers unreachable, build events may be delayed: %v", err)
		}
		cancel()
		b.Events = events
	}

	log.Debug("opened %s backend (events: %t)", b.Mode, b.Events != nil)
	b.Service = builds.NewService(b.Store, log, ServiceOptions(cfg, b.Events))
	return b, nil
}

// ServiceOptions maps configuration onto the service policies.
func ServiceOptions(cfg *config.Config, events broker.Broker) builds.Options {
	return builds.Options{
		PropagateCreateErrors: cfg.Store.PropagateCreateErrors,
		GuardPublished:        cfg.Store.GuardPublished,
		Events:                events,
		EventsTopic:           cfg.Events.Topic,
	}
}

// Close releases the event publisher and the store.
func (b *Backend) Close() error {
	if b.Events != nil {
		b.Events.Close()
	}
	return b.Store.Close()
}
