package ledger

import "context"

// ProjectRepository provides persistence for projects.
type ProjectRepository interface {
	GetActive(ctx context.Context, userID string) (*Project, error)
	GetOrCreate(ctx context.Context, userID, blueprintID string) (*Project, error)
}

// ProgressRepository provides persistence for segment progress. The Apply
// methods execute the whole mutation, segment rows plus exactly one
// ledger event, inside a single transaction.
type ProgressRepository interface {
	ListSegments(ctx context.Context, projectID string) ([]SegmentProgress, error)
	ApplyAllocation(ctx context.Context, ev *Event) error
	ApplyRepair(ctx context.Context, ev *Event) error
}

// EventRepository provides read access to the append-only event log.
type EventRepository interface {
	List(ctx context.Context, userID string, limit int) ([]Event, error)
	DedupeKeyExists(ctx context.Context, key string) (bool, error)
}
