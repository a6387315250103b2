// Package builds owns the lifecycle of CI build records: a runner reports
// a build as started, then as failed (any number of times) or published.
package builds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"versioning-backend/src/broker"
	"versioning-backend/src/contracts"
	"versioning-backend/src/logger"
	"versioning-backend/src/store"
)

// ErrInvalidInput is wrapped by every input validation error.
var ErrInvalidInput = errors.New("invalid input")

// Options are the explicit policy choices of the service.
type Options struct {
	// PropagateCreateErrors returns storage errors from Create. When false
	// they are logged and dropped, and the caller cannot tell a stored
	// build from a lost one.
	PropagateCreateErrors bool

	// GuardPublished rejects failure and publish reports for builds that
	// are already published. When false such reports overwrite silently.
	GuardPublished bool

	// Events receives a contracts.BuildEvent after every successful write.
	// Nil disables publishing.
	Events broker.Broker

	// EventsTopic defaults to contracts.TopicBuildEvents.
	EventsTopic string
}

// Service is the build store used by CI runners.
type Service struct {
	store store.Store
	log   logger.Logger
	opts  Options
}

// NewService creates a build service on top of a storage backend.
func NewService(s store.Store, log logger.Logger, opts Options) *Service {
	if log == nil {
		log = logger.NewSilentLogger()
	}
	if opts.EventsTopic == "" {
		opts.EventsTopic = contracts.TopicBuildEvents
	}
	return &Service{store: s, log: log, opts: opts}
}

// GetAll returns every build record in storage order. An empty collection
// is an empty, non-nil slice.
func (s *Service) GetAll(ctx context.Context) ([]contracts.CiBuild, error) {
	builds, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if builds == nil {
		builds = []contracts.CiBuild{}
	}
	return builds, nil
}

// Get returns a single build record.
func (s *Service) Get(ctx context.Context, buildID string) (*contracts.CiBuild, error) {
	return s.store.Get(ctx, buildID)
}

// Create records a build as started. The record key is BuildID(imageType,
// buildVersionInfo). Storage failures are only logged unless
// Options.PropagateCreateErrors is set; invalid input is always returned.
func (s *Service) Create(
	ctx context.Context,
	jobID string,
	imageType contracts.ImageType,
	buildVersionInfo contracts.BuildVersionInfo,
	repoVersionInfo contracts.RepoVersionInfo,
) error {
	info, err := resolveVersionInfo(buildVersionInfo, repoVersionInfo)
	if err != nil {
		return err
	}
	if jobID == "" {
		return fmt.Errorf("%w: job ID is required", ErrInvalidInput)
	}
	if !imageType.Valid() {
		return fmt.Errorf("%w: image type %q", ErrInvalidInput, string(imageType))
	}

	build := &contracts.CiBuild{
		JobID:            jobID,
		BuildID:          BuildID(imageType, info),
		Status:           contracts.StatusStarted,
		ImageType:        imageType,
		UnityVersionInfo: info,
	}

	if err := s.store.Set(ctx, build); err != nil {
		if s.opts.PropagateCreateErrors {
			return err
		}
		s.log.Error("Error occurred while trying to enqueue a new build %s: %v", build.BuildID, err)
		return nil
	}

	s.log.Info("build %s started by job %s", build.BuildID, jobID)
	s.publish(ctx, contracts.EventBuildStarted, *build)
	return nil
}

// MarkBuildAsFailed records a failure report. The failure counter is
// incremented by the backend atomically.
func (s *Service) MarkBuildAsFailed(ctx context.Context, buildID string, failure contracts.BuildFailure) (*contracts.CiBuild, error) {
	if buildID == "" {
		return nil, fmt.Errorf("%w: build ID is required", ErrInvalidInput)
	}

	build, err := s.store.Apply(ctx, buildID, store.Mutation{
		Status:            contracts.StatusFailed,
		Failure:           &failure,
		IncrementFailures: true,
		StampLastFailure:  true,
		RejectTerminal:    s.opts.GuardPublished,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("build %s failed (%d failures): %s", buildID, build.Meta.FailureCount, failure.Reason)
	s.publish(ctx, contracts.EventBuildFailed, *build)
	return build, nil
}

// MarkBuildAsPublished records that the build's image was pushed.
func (s *Service) MarkBuildAsPublished(ctx context.Context, buildID string, dockerInfo contracts.DockerInfo) (*contracts.CiBuild, error) {
	if buildID == "" {
		return nil, fmt.Errorf("%w: build ID is required", ErrInvalidInput)
	}

	build, err := s.store.Apply(ctx, buildID, store.Mutation{
		Status:         contracts.StatusPublished,
		DockerInfo:     &dockerInfo,
		StampPublished: true,
		RejectTerminal: s.opts.GuardPublished,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("build %s published as %s/%s:%s", buildID, dockerInfo.ImageRepo, dockerInfo.ImageName, dockerInfo.SpecificTag)
	s.publish(ctx, contracts.EventBuildPublished, *build)
	return build, nil
}

// publish is best effort: a lost event never fails the write it follows.
func (s *Service) publish(ctx context.Context, eventType contracts.BuildEventType, build contracts.CiBuild) {
	if s.opts.Events == nil {
		return
	}

	event := contracts.NewBuildEvent(eventType, build)
	data, err := json.Marshal(event)
	if err != nil {
		s.log.Error("failed to marshal %s event for %s: %v", eventType, build.BuildID, err)
		return
	}
	if err := s.opts.Events.Publish(ctx, s.opts.EventsTopic, build.BuildID, data); err != nil {
		s.log.Error("failed to publish %s event for %s: %v", eventType, build.BuildID, err)
	}
}

// resolveVersionInfo fills RepoVersion from repoVersionInfo and checks
// that the two agree.
func resolveVersionInfo(info contracts.BuildVersionInfo, repo contracts.RepoVersionInfo) (contracts.BuildVersionInfo, error) {
	switch {
	case info.RepoVersion == "":
		info.RepoVersion = repo.Version
	case repo.Version != "" && repo.Version != info.RepoVersion:
		return info, fmt.Errorf("%w: repo version %q does not match build repo version %q",
			ErrInvalidInput, repo.Version, info.RepoVersion)
	}

	missing := func(field, value string) error {
		if value == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
		}
		return nil
	}
	for _, err := range []error{
		missing("baseOs", info.BaseOS),
		missing("repoVersion", info.RepoVersion),
		missing("unityVersion", info.UnityVersion),
		missing("targetPlatform", info.TargetPlatform),
	} {
		if err != nil {
			return info, err
		}
	}
	return info, nil
}
