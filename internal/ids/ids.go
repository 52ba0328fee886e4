// Package ids generates run identifiers for packaging runs.
// A run ID correlates log lines, error context, and the run summary; it is
// never persisted, so a short prefix of a fresh UUID is enough.
package ids

import "github.com/google/uuid"

// RunIDLength is the number of characters in a run ID.
const RunIDLength = 8

// NewRunID returns a short random identifier for a single packaging run.
func NewRunID() string {
	return uuid.NewString()[:RunIDLength]
}
