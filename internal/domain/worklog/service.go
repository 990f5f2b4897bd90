package worklog

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

var (
	ErrNotFound   = errors.New("log entry not found")
	ErrValidation = errors.New("invalid log entry")
)

// DefaultListLimit bounds log listings when the caller does not specify one.
const DefaultListLimit = 100

// Appender records one audit entry for a state-mutating operation.
//
// Contract: Append is best-effort. It is called strictly after the primary
// mutation has committed, never inside the same transaction, and a non-nil
// error MUST NOT fail the invoking mutation — callers log the error on an
// operational channel and proceed as if the append succeeded.
type Appender interface {
	Append(ctx context.Context, actorID int64, action string) error
}

// LogAppendFailure is the one sanctioned way to handle an Appender error:
// record it at warn level and move on.
func LogAppendFailure(logger zerolog.Logger, err error, actorID int64, action string) {
	if err == nil {
		return
	}
	logger.Warn().
		Err(err).
		Int64("actor_id", actorID).
		Str("action", action).
		Msg("work log append failed, continuing")
}

type Service struct {
	repo EntryRepository
}

func NewService(repo EntryRepository) *Service {
	return &Service{repo: repo}
}

// Record writes one entry and returns it with the id and timestamp the
// store assigned.
func (s *Service) Record(ctx context.Context, actorID int64, action string) (*Entry, error) {
	if actorID <= 0 {
		return nil, fmt.Errorf("%w: actor id is required", ErrValidation)
	}
	if action == "" {
		return nil, fmt.Errorf("%w: action is required", ErrValidation)
	}
	e := &Entry{UserID: actorID, Action: action}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Append implements Appender by writing one entry.
func (s *Service) Append(ctx context.Context, actorID int64, action string) error {
	_, err := s.Record(ctx, actorID, action)
	return err
}

func (s *Service) GetLog(ctx context.Context, id int64) (*Entry, error) {
	return s.repo.GetByID(ctx, id)
}

// ListLogs returns entries most recent first, optionally filtered by actor.
func (s *Service) ListLogs(ctx context.Context, userID *int64, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return s.repo.List(ctx, userID, limit)
}
