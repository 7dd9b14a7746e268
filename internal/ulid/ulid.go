// Package ulid provides prefixed, lexicographically sortable identifiers
// for reviews, passes, findings and reports, built on github.com/oklog/ulid/v2.
package ulid

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Common prefixes for different parts of the application
const (
	// Prefix for review session ULIDs
	PrefixReview = "rev"

	// Prefix for per-pass ULIDs
	PrefixPass = "pass"

	// Prefix for finding ULIDs
	PrefixFinding = "find"

	// Prefix for written report ULIDs
	PrefixReport = "rpt"

	// PrefixSeparator is used to separate the prefix from the ULID
	PrefixSeparator = "-"
)

var (
	entropy     = ulid.Monotonic(rand.Reader, 0)
	entropyLock sync.Mutex
)

// Generate creates a new ULID string with the current timestamp.
func Generate() string {
	return NewWithTime(time.Now())
}

// GenerateWithPrefix creates a new ULID string with the current timestamp
// and a prefix describing what the ID represents (e.g. "rev" for review).
func GenerateWithPrefix(prefix string) string {
	return prefix + PrefixSeparator + Generate()
}

// NewWithTime creates a new ULID string with a specific timestamp.
func NewWithTime(t time.Time) string {
	entropyLock.Lock()
	id := ulid.MustNew(ulid.Timestamp(t), entropy)
	entropyLock.Unlock()
	return id.String()
}

// Parse splits a possibly prefixed ULID string and validates the ULID part.
func Parse(id string) (prefix string, raw ulid.ULID, err error) {
	rawID := id
	if idx := strings.LastIndex(id, PrefixSeparator); idx >= 0 {
		prefix = id[:idx]
		rawID = id[idx+1:]
	}

	raw, err = ulid.Parse(rawID)
	if err != nil {
		return "", ulid.ULID{}, fmt.Errorf("parsing ULID %q: %w", id, err)
	}
	return prefix, raw, nil
}

// Validate checks if a string is a valid (optionally prefixed) ULID.
func Validate(id string) bool {
	_, _, err := Parse(id)
	return err == nil
}

// ReviewID generates a new review session ID
func ReviewID() string {
	return GenerateWithPrefix(PrefixReview)
}

// PassID generates a new pass ID
func PassID() string {
	return GenerateWithPrefix(PrefixPass)
}

// FindingID generates a new finding ID
func FindingID() string {
	return GenerateWithPrefix(PrefixFinding)
}

// ReportID generates a new report ID
func ReportID() string {
	return GenerateWithPrefix(PrefixReport)
}
