package worklog

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// -- Mock repository --

type mockEntryRepo struct {
	entries []*Entry
	nextID  int64
	failing bool
}

func newMockEntryRepo() *mockEntryRepo {
	return &mockEntryRepo{nextID: 1}
}

func (m *mockEntryRepo) Create(_ context.Context, e *Entry) error {
	if m.failing {
		return errors.New("log store unavailable")
	}
	e.LogID = m.nextID
	m.nextID++
	e.Timestamp = time.Now().UTC()
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockEntryRepo) GetByID(_ context.Context, id int64) (*Entry, error) {
	for _, e := range m.entries {
		if e.LogID == id {
			return e, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockEntryRepo) List(_ context.Context, userID *int64, limit int) ([]*Entry, error) {
	var result []*Entry
	for _, e := range m.entries {
		if userID == nil || e.UserID == *userID {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// -- Tests --

func TestAppend(t *testing.T) {
	repo := newMockEntryRepo()
	svc := NewService(repo)

	if err := svc.Append(context.Background(), 3, "Generated diagnosis report 1 for patient 5"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	if repo.entries[0].UserID != 3 {
		t.Errorf("expected actor 3, got %d", repo.entries[0].UserID)
	}
}

func TestRecord_ReturnsCreatedEntry(t *testing.T) {
	repo := newMockEntryRepo()
	svc := NewService(repo)

	first, err := svc.Record(context.Background(), 4, "Created billing 1 for patient 4")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	second, err := svc.Record(context.Background(), 4, "Created billing 2 for patient 4")
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	if first.LogID == 0 || first.Timestamp.IsZero() {
		t.Errorf("expected store-assigned id and timestamp, got %+v", first)
	}
	if first.LogID == second.LogID {
		t.Errorf("expected distinct ids for consecutive records, both got %d", first.LogID)
	}

	got, err := svc.GetLog(context.Background(), second.LogID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Action != "Created billing 2 for patient 4" {
		t.Errorf("id %d resolved to wrong entry: %q", second.LogID, got.Action)
	}
}

func TestAppend_Validation(t *testing.T) {
	svc := NewService(newMockEntryRepo())

	if err := svc.Append(context.Background(), 0, "something"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for missing actor, got %v", err)
	}
	if err := svc.Append(context.Background(), 1, ""); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for empty action, got %v", err)
	}
}

func TestListLogs_DescendingAndLimited(t *testing.T) {
	repo := newMockEntryRepo()
	svc := NewService(repo)

	for i := 0; i < 5; i++ {
		repo.entries = append(repo.entries, &Entry{
			LogID:     int64(i + 1),
			UserID:    7,
			Action:    "action",
			Timestamp: time.Now().Add(time.Duration(i) * time.Minute),
		})
	}

	actor := int64(7)
	items, err := svc.ListLogs(context.Background(), &actor, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i].Timestamp.After(items[i-1].Timestamp) {
			t.Error("entries should be ordered most recent first")
		}
	}
}

func TestGetLog_NotFound(t *testing.T) {
	svc := NewService(newMockEntryRepo())
	if _, err := svc.GetLog(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLogAppendFailure_DoesNotPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	repo := newMockEntryRepo()
	repo.failing = true
	svc := NewService(repo)

	err := svc.Append(context.Background(), 4, "Updated appointment 2")
	if err == nil {
		t.Fatal("expected append error from failing repo")
	}
	LogAppendFailure(logger, err, 4, "Updated appointment 2")
	if !strings.Contains(buf.String(), "work log append failed") {
		t.Errorf("expected warning in log output, got %q", buf.String())
	}

	// A nil error is a no-op.
	buf.Reset()
	LogAppendFailure(logger, nil, 4, "Updated appointment 2")
	if buf.Len() != 0 {
		t.Errorf("expected no output for nil error, got %q", buf.String())
	}
}
