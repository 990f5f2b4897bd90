package worklog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EntryRepoPG struct {
	pool *pgxpool.Pool
}

func NewEntryRepoPG(pool *pgxpool.Pool) *EntryRepoPG {
	return &EntryRepoPG{pool: pool}
}

const entryCols = `log_id, user_id, action, timestamp`

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	err := row.Scan(&e.LogID, &e.UserID, &e.Action, &e.Timestamp)
	return &e, err
}

func (r *EntryRepoPG) Create(ctx context.Context, e *Entry) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO workflow_logs (user_id, action) VALUES ($1, $2) RETURNING log_id, timestamp`,
		e.UserID, e.Action,
	).Scan(&e.LogID, &e.Timestamp)
}

func (r *EntryRepoPG) GetByID(ctx context.Context, id int64) (*Entry, error) {
	e, err := scanEntry(r.pool.QueryRow(ctx,
		`SELECT `+entryCols+` FROM workflow_logs WHERE log_id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *EntryRepoPG) List(ctx context.Context, userID *int64, limit int) ([]*Entry, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if userID != nil {
		rows, err = r.pool.Query(ctx,
			`SELECT `+entryCols+` FROM workflow_logs WHERE user_id = $1 ORDER BY timestamp DESC LIMIT $2`,
			*userID, limit)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT `+entryCols+` FROM workflow_logs ORDER BY timestamp DESC LIMIT $1`, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
