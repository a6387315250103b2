package contracts

import (
	"time"

	"github.com/google/uuid"
)

// TopicBuildEvents carries one BuildEvent per successful lifecycle write.
// Key: {build_id}
const TopicBuildEvents = "ci_build_events"

// BuildEventType names the lifecycle write that produced an event.
type BuildEventType string

const (
	EventBuildStarted   BuildEventType = "build.started"
	EventBuildFailed    BuildEventType = "build.failed"
	EventBuildPublished BuildEventType = "build.published"
)

// BuildEvent announces a lifecycle transition of a build record.
type BuildEvent struct {
	ID           string         `json:"id"`
	Type         BuildEventType `json:"type"`
	BuildID      string         `json:"build_id"`
	JobID        string         `json:"job_id,omitempty"`
	ImageType    ImageType      `json:"image_type,omitempty"`
	Status       BuildStatus    `json:"status"`
	FailureCount int            `json:"failure_count"`
	Timestamp    string         `json:"timestamp"`
}

// NewBuildEvent builds an event for the given record state.
func NewBuildEvent(eventType BuildEventType, build CiBuild) BuildEvent {
	at := build.ModifiedDate
	if at.IsZero() {
		at = time.Now()
	}
	return BuildEvent{
		ID:           uuid.NewString(),
		Type:         eventType,
		BuildID:      build.BuildID,
		JobID:        build.JobID,
		ImageType:    build.ImageType,
		Status:       build.Status,
		FailureCount: build.Meta.FailureCount,
		Timestamp:    at.UTC().Format(time.RFC3339Nano),
	}
}
