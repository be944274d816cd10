package audit

import "context"

// Store persists audit records. Append assigns Record.ID. Listings are
// ordered by timestamp, then id, and return the total matching count.
type Store interface {
	Append(ctx context.Context, r *Record) error
	List(ctx context.Context, limit, offset int) ([]*Record, int, error)
	ListByActor(ctx context.Context, actor string, limit, offset int) ([]*Record, int, error)
}
