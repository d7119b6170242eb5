package diagnostictest

import (
	"context"
	"strconv"
	"time"

	"github.com/diagtrack/diagtrack/internal/platform/db"
)

// Service applies the record lifecycle on top of a Repository. It holds no
// mutable state; all coordination is left to the store.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// clock returns the current time at the precision PostgreSQL keeps, so values
// read back compare equal to the ones written.
func (s *Service) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// ParseID converts a path id to its integer form. Anything that is not a
// positive base-10 integer cannot name a stored record and reports not found.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, db.NotFound("parse diagnostic test id")
	}
	return id, nil
}

// ListAll returns every record in insertion order. No records is an empty,
// non-nil slice.
func (s *Service) ListAll(ctx context.Context) ([]*DiagnosticTest, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*DiagnosticTest{}
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*DiagnosticTest, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*DiagnosticTest, error) {
	now := s.clock()
	t := &DiagnosticTest{
		PatientName: in.PatientName,
		TestType:    in.TestType,
		Result:      in.Result,
		Notes:       normalizeNotes(in.Notes),
		TestDate:    now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// normalizeNotes stores an empty notes string as null.
func normalizeNotes(n *string) *string {
	if n == nil || *n == "" {
		return nil
	}
	return n
}

// Update merges test type, result and notes into an existing record. Patient
// name and id are never touched. An empty notes string clears the notes.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*DiagnosticTest, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	if now.Before(t.CreatedAt) {
		now = t.CreatedAt
	}

	t.TestType = in.TestType
	t.Result = in.Result
	t.Notes = normalizeNotes(in.Notes)
	t.TestDate = now
	t.UpdatedAt = now

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Ping runs the store liveness check.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// Sample returns the oldest record, or a not found error on an empty table.
func (s *Service) Sample(ctx context.Context) (*DiagnosticTest, error) {
	return s.repo.First(ctx)
}
