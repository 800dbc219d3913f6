// Package deadletter records dispatches that failed, for later inspection.
//
// Recording a failed dispatch never changes how the failure propagates: the
// dispatch future still rejects. The store is an audit trail, not a retry
// mechanism.
package deadletter

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// FailedDispatch describes one rejected dispatch.
type FailedDispatch struct {
	ID       string    `json:"id"`
	Event    string    `json:"event"`
	Runner   string    `json:"runner"`
	Epoch    uint64    `json:"epoch"`
	Position int       `json:"position"` // index of the failing candidate in the snapshot
	Args     []byte    `json:"args"`     // JSON, best effort
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
}

// NewFailedDispatch builds a record with a fresh ID and timestamp.
// Arguments that cannot be encoded as JSON are stored as null.
func NewFailedDispatch(event, runner string, epoch uint64, position int, args []any, err error) *FailedDispatch {
	data, encErr := json.Marshal(args)
	if encErr != nil {
		data = []byte("null")
	}
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &FailedDispatch{
		ID:       uuid.NewString(),
		Event:    event,
		Runner:   runner,
		Epoch:    epoch,
		Position: position,
		Args:     data,
		Error:    msg,
		FailedAt: time.Now().UTC(),
	}
}

// Store persists failed dispatches.
// Implementations must be safe for concurrent use.
type Store interface {
	// Enqueue records a failed dispatch.
	Enqueue(ctx context.Context, failed *FailedDispatch) error

	// List returns up to limit records, oldest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]*FailedDispatch, error)

	// ListByEvent returns up to limit records for one event, oldest first.
	ListByEvent(ctx context.Context, event string, limit int) ([]*FailedDispatch, error)

	// Acknowledge removes a record. Returns ErrNotFound if it doesn't exist.
	Acknowledge(ctx context.Context, id string) error

	// Count returns the number of records.
	Count(ctx context.Context) (int, error)

	// Close releases any resources.
	Close() error
}

// Sentinel errors for dead letter operations.
var (
	// ErrNotFound indicates a record doesn't exist.
	ErrNotFound = errors.New("dead letter not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("dead letter store closed")
)
