// Package contracts defines the build record types shared by the store,
// the service layer and the external surfaces (CLI, MCP, events).
package contracts

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// BuildStatus is the lifecycle state of a CI build.
type BuildStatus string

const (
	StatusStarted   BuildStatus = "started"
	StatusFailed    BuildStatus = "failed"
	StatusPublished BuildStatus = "published"
)

// legacyStatuses maps the ordinal encoding written by the previous
// Firestore backend onto named statuses.
var legacyStatuses = []BuildStatus{StatusStarted, StatusFailed, StatusPublished}

// Valid reports whether s is one of the known statuses.
func (s BuildStatus) Valid() bool {
	switch s {
	case StatusStarted, StatusFailed, StatusPublished:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transitions are intended from s.
func (s BuildStatus) Terminal() bool {
	switch s {
	case StatusPublished:
		return true
	case StatusStarted, StatusFailed:
		return false
	default:
		return false
	}
}

// MarshalJSON refuses to write unknown statuses.
func (s BuildStatus) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid build status %q", string(s))
	}
	return json.Marshal(string(s))
}

// UnmarshalJSON accepts both status names and legacy ordinals (0, 1, 2).
func (s *BuildStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		parsed, err := ParseBuildStatus(name)
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	}

	var ordinal int
	if err := json.Unmarshal(data, &ordinal); err != nil {
		return fmt.Errorf("build status must be a string or ordinal, got %s", string(data))
	}
	if ordinal < 0 || ordinal >= len(legacyStatuses) {
		return fmt.Errorf("build status ordinal %d out of range", ordinal)
	}
	*s = legacyStatuses[ordinal]
	return nil
}

// ParseBuildStatus parses a status name or a legacy ordinal.
func ParseBuildStatus(value string) (BuildStatus, error) {
	status := BuildStatus(value)
	if status.Valid() {
		return status, nil
	}
	if ordinal, err := strconv.Atoi(value); err == nil && ordinal >= 0 && ordinal < len(legacyStatuses) {
		return legacyStatuses[ordinal], nil
	}
	return "", fmt.Errorf("invalid build status %q", value)
}

// ImageType identifies the pipeline stage an image belongs to.
type ImageType string

const (
	ImageBase   ImageType = "base"
	ImageHub    ImageType = "hub"
	ImageEditor ImageType = "editor"
)

// Valid reports whether t is one of the known image types.
func (t ImageType) Valid() bool {
	switch t {
	case ImageBase, ImageHub, ImageEditor:
		return true
	default:
		return false
	}
}

// ParseImageType validates an image type name.
func ParseImageType(value string) (ImageType, error) {
	imageType := ImageType(value)
	if !imageType.Valid() {
		return "", fmt.Errorf("invalid image type %q (want base, hub or editor)", value)
	}
	return imageType, nil
}

// BuildVersionInfo describes one [baseOs-unityVersion-targetPlatform] build.
type BuildVersionInfo struct {
	BaseOS         string `json:"baseOs"`
	RepoVersion    string `json:"repoVersion"`
	UnityVersion   string `json:"unityVersion"`
	TargetPlatform string `json:"targetPlatform"`
}

// RepoVersionInfo is the version of the docker repository the build belongs to.
type RepoVersionInfo struct {
	Version string `json:"version"`
	Major   int    `json:"major"`
	Minor   int    `json:"minor"`
	Patch   int    `json:"patch"`
}

// BuildFailure is reported by a runner when a build fails.
type BuildFailure struct {
	Reason string `json:"reason"`
}

// DockerInfo is reported by a runner when an image has been pushed.
type DockerInfo struct {
	ImageRepo   string `json:"imageRepo"`
	ImageName   string `json:"imageName"`
	FriendlyTag string `json:"friendlyTag"`
	SpecificTag string `json:"specificTag"`
	Hash        string `json:"hash"`
}

// BuildMeta is bookkeeping maintained by the store.
type BuildMeta struct {
	LastBuildStart   time.Time  `json:"lastBuildStart"`
	FailureCount     int        `json:"failureCount"`
	LastBuildFailure *time.Time `json:"lastBuildFailure"`
	PublishedDate    *time.Time `json:"publishedDate"`
}

// CiBuild is the persisted record of a single build.
type CiBuild struct {
	JobID            string           `json:"jobId"`
	BuildID          string           `json:"buildId"`
	Status           BuildStatus      `json:"status"`
	ImageType        ImageType        `json:"imageType"`
	Meta             BuildMeta        `json:"meta"`
	UnityVersionInfo BuildVersionInfo `json:"unityVersionInfo"`
	Failure          *BuildFailure    `json:"failure"`
	DockerInfo       *DockerInfo      `json:"dockerInfo"`
	AddedDate        time.Time        `json:"addedDate"`
	ModifiedDate     time.Time        `json:"modifiedDate"`
}

// Clone returns a deep copy so callers never share pointers with a store.
func (b CiBuild) Clone() CiBuild {
	out := b
	if b.Failure != nil {
		failure := *b.Failure
		out.Failure = &failure
	}
	if b.DockerInfo != nil {
		info := *b.DockerInfo
		out.DockerInfo = &info
	}
	if b.Meta.LastBuildFailure != nil {
		t := *b.Meta.LastBuildFailure
		out.Meta.LastBuildFailure = &t
	}
	if b.Meta.PublishedDate != nil {
		t := *b.Meta.PublishedDate
		out.Meta.PublishedDate = &t
	}
	return out
}
