// Package reportstore defines the interface for keeping the history of
// recompute reports per document.
//
// The engine produces a Report for every pass and forgets it. The HTTP
// control server saves each one so that clients can inspect the outcome of
// passes they did not trigger. Implementations live in inmemorystore and
// redisstore.
package reportstore

import (
	"context"
	"errors"

	"github.com/specialistvlad/featuregraph/internal/recompute"
)

// ErrNotFound is returned when a document has no saved report.
var ErrNotFound = errors.New("no report found")

// DefaultMaxHistory is the number of reports kept per document when the
// store is not configured otherwise.
const DefaultMaxHistory = 20

// Store keeps the most recent reports of each document.
//
// Implementations MUST be safe for concurrent use. Reports read back from a
// store are copies; Failure.Err is not preserved.
type Store interface {
	// Save records r as the newest report of r.Document, dropping the
	// oldest one beyond the store's history limit.
	Save(ctx context.Context, r *recompute.Report) error
	// Latest returns the newest report of a document, or ErrNotFound.
	Latest(ctx context.Context, document string) (*recompute.Report, error)
	// History returns up to limit reports of a document, newest first. A
	// limit <= 0 returns everything kept.
	History(ctx context.Context, document string, limit int) ([]*recompute.Report, error)
	// Documents returns the names of documents with saved reports, sorted.
	Documents(ctx context.Context) ([]string, error)
}
