package tui

import (
	"fmt"

	"versioning-backend/src/contracts"
)

// Item represents a single build in the list.
// It wraps the domain CiBuild and implements bubbles/list.DefaultItem.
type Item struct {
	Build contracts.CiBuild
}

// FilterValue is matched by the list's fuzzy search.
func (i Item) FilterValue() string { return i.Build.BuildID + " " + i.Build.JobID }

// Title returns the build ID.
func (i Item) Title() string { return i.Build.BuildID }

// Description summarizes status, job and failures.
func (i Item) Description() string {
	return fmt.Sprintf("%s • job %s • %d failures", i.Build.Status, i.Build.JobID, i.Build.Meta.FailureCount)
}
