// Package ops implements the application operations shared by the CLI,
// HTTP, and MCP surfaces: corpus ingest, entity alignment, annotation
// submission, listing, deletion, and progress reporting.
package ops

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/alignlab/entalign/internal/errors"
)

// NewULID generates a new ULID string.
func NewULID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// requireUser validates the acting user identifier. Every operation that
// reads or writes the ledger is scoped to a user.
func requireUser(user string) (string, error) {
	user = strings.TrimSpace(user)
	if user == "" {
		return "", errors.NewUnauthenticated()
	}
	return user, nil
}

// requireTextID validates a text identifier parameter.
func requireTextID(textID string) (string, error) {
	textID = strings.TrimSpace(textID)
	if textID == "" {
		return "", errors.NewInvalidRequest("text_id is required")
	}
	return textID, nil
}
