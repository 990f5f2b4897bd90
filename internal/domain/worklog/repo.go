package worklog

import "context"

type EntryRepository interface {
	Create(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, id int64) (*Entry, error)
	// List returns entries ordered by timestamp descending. A nil userID
	// returns entries for all actors.
	List(ctx context.Context, userID *int64, limit int) ([]*Entry, error)
}
