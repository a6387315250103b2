// Package store defines the interface for persistent build record storage.
package store

import (
	"context"
	"fmt"
	"time"

	"versioning-backend/src/contracts"
)

// Store persists CiBuild records in a single logical collection.
// Implementations assign every timestamp themselves at write time.
type Store interface {
	// List returns every record in storage-native order.
	List(ctx context.Context) ([]contracts.CiBuild, error)

	// Get returns a single record by build ID.
	Get(ctx context.Context, buildID string) (*contracts.CiBuild, error)

	// Set writes a fresh record, replacing any existing one with the same ID.
	// Meta timestamps, AddedDate and ModifiedDate are assigned by the store.
	Set(ctx context.Context, build *contracts.CiBuild) error

	// Apply updates an existing record in a single atomic write and returns
	// the resulting record.
	Apply(ctx context.Context, buildID string, mutation Mutation) (*contracts.CiBuild, error)

	// Close closes the store connection
	Close() error
}

// Mutation describes a partial update of a build record. Fields left at
// their zero value are untouched. ModifiedDate is always bumped.
type Mutation struct {
	Status     contracts.BuildStatus
	Failure    *contracts.BuildFailure
	DockerInfo *contracts.DockerInfo

	// IncrementFailures adds one to meta.failureCount without a read.
	IncrementFailures bool
	// StampLastFailure sets meta.lastBuildFailure to the write time.
	StampLastFailure bool
	// StampPublished sets meta.publishedDate to the write time.
	StampPublished bool

	// RejectTerminal makes the write fail with ErrTerminalState when the
	// stored status is terminal.
	RejectTerminal bool
}

func (m Mutation) validate() error {
	if m.Status != "" && !m.Status.Valid() {
		return fmt.Errorf("invalid build status %q", string(m.Status))
	}
	return nil
}

// apply mutates build in place. Shared by backends that hold documents
// in process.
func (m Mutation) apply(build *contracts.CiBuild, t time.Time) {
	if m.Status != "" {
		build.Status = m.Status
	}
	if m.Failure != nil {
		failure := *m.Failure
		build.Failure = &failure
	}
	if m.DockerInfo != nil {
		info := *m.DockerInfo
		build.DockerInfo = &info
	}
	if m.IncrementFailures {
		build.Meta.FailureCount++
	}
	if m.StampLastFailure {
		stamp := t
		build.Meta.LastBuildFailure = &stamp
	}
	if m.StampPublished {
		stamp := t
		build.Meta.PublishedDate = &stamp
	}
	build.ModifiedDate = t
}
