// Package id generates identifiers for lists and internal handles.
package id

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	listMu     sync.Mutex
	lastListID int64
)

// ListID returns a monotonic-time-derived list identifier.
//
// The id is the unix timestamp in milliseconds as a decimal string, bumped by
// one when two ids are requested within the same millisecond. All ids produced
// this way have the same digit count for the next couple of centuries, so
// lexicographic ordering matches creation order: snapshots sorted by id
// descending put the newest list first.
func ListID() string {
	listMu.Lock()
	defer listMu.Unlock()

	now := time.Now().UnixMilli()
	if now <= lastListID {
		now = lastListID + 1
	}
	lastListID = now
	return strconv.FormatInt(now, 10)
}

// Generate creates a prefixed unique handle using NanoID
// Format: prefix-nanoid (e.g., "sub-V1StGXR8_Z5jdHi6B-myT")
//
// Used for subscription and notification handles, not for list ids; list ids
// must be time-ordered, NanoIDs are not.
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
// Use this only when failure should crash the program (e.g., during initialization).
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}
