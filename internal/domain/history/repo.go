package history

import "context"

// Repository persists the patient document. Every call reads or rewrites the
// whole document; nothing is cached between calls.
type Repository interface {
	Load(ctx context.Context) ([]Entry, error)
	Save(ctx context.Context, patients []Entry) error
}
