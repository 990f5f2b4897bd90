package worklog

import "time"

// Entry is one audit record describing a state-mutating action. Entries are
// append-only: they are never updated and never deleted, and they are not
// transactionally linked to the mutation they describe.
type Entry struct {
	LogID     int64     `db:"log_id" json:"log_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Action    string    `db:"action" json:"action"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}
