package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/restlets/hl7-routing-log/internal/domain"
	"github.com/restlets/hl7-routing-log/internal/repository"
)

type stubRoutingLogRepo struct {
	appendFn         func(ctx context.Context, e *domain.RoutingLogEntry) error
	getByMessageIDFn func(ctx context.Context, messageID string) ([]domain.RoutingLogEntry, error)
	listByStatusFn   func(ctx context.Context, status domain.Status, from, to time.Time) ([]domain.RoutingLogEntry, error)
	listByTypeFn     func(ctx context.Context, messageType string, limit int) ([]domain.RoutingLogEntry, error)
	countByStatusFn  func(ctx context.Context) ([]repository.StatusCount, error)
}

func (s *stubRoutingLogRepo) Append(ctx context.Context, e *domain.RoutingLogEntry) error {
	if s.appendFn == nil {
		return errors.New("unexpected Append call")
	}
	return s.appendFn(ctx, e)
}

func (s *stubRoutingLogRepo) GetByMessageID(ctx context.Context, messageID string) ([]domain.RoutingLogEntry, error) {
	if s.getByMessageIDFn == nil {
		return nil, errors.New("unexpected GetByMessageID call")
	}
	return s.getByMessageIDFn(ctx, messageID)
}

func (s *stubRoutingLogRepo) ListByStatus(ctx context.Context, status domain.Status, from, to time.Time) ([]domain.RoutingLogEntry, error) {
	if s.listByStatusFn == nil {
		return nil, errors.New("unexpected ListByStatus call")
	}
	return s.listByStatusFn(ctx, status, from, to)
}

func (s *stubRoutingLogRepo) ListByType(ctx context.Context, messageType string, limit int) ([]domain.RoutingLogEntry, error) {
	if s.listByTypeFn == nil {
		return nil, errors.New("unexpected ListByType call")
	}
	return s.listByTypeFn(ctx, messageType, limit)
}

func (s *stubRoutingLogRepo) CountByStatus(ctx context.Context) ([]repository.StatusCount, error) {
	if s.countByStatusFn == nil {
		return nil, errors.New("unexpected CountByStatus call")
	}
	return s.countByStatusFn(ctx)
}

func newTestService(t *testing.T, repo repository.RoutingLogRepository) *RoutingLogService {
	t.Helper()

	svc, err := NewRoutingLogService(repo, nil, nil)
	if err != nil {
		t.Fatalf("NewRoutingLogService() error = %v", err)
	}
	return svc
}

func validEntry() *domain.RoutingLogEntry {
	sent := time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)
	received := sent.Add(2 * time.Second)
	return &domain.RoutingLogEntry{
		MessageID:    "MSG001",
		Status:       domain.StatusSuccess,
		SentTime:     &sent,
		ReceivedTime: &received,
	}
}

func TestRoutingLogServiceAppend(t *testing.T) {
	t.Parallel()

	repo := &stubRoutingLogRepo{
		appendFn: func(ctx context.Context, e *domain.RoutingLogEntry) error {
			e.ID = 42
			return nil
		},
	}
	svc := newTestService(t, repo)

	entry, err := svc.Append(context.Background(), validEntry(), "http")
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if entry.ID != 42 {
		t.Fatalf("Append() id = %d, want 42", entry.ID)
	}
}

func TestRoutingLogServiceAppendRejectsInvalidEntry(t *testing.T) {
	t.Parallel()

	repoCalled := false
	repo := &stubRoutingLogRepo{
		appendFn: func(ctx context.Context, e *domain.RoutingLogEntry) error {
			repoCalled = true
			return nil
		},
	}
	svc := newTestService(t, repo)

	entry := validEntry()
	entry.Status = domain.StatusFailed // no error message

	_, err := svc.Append(context.Background(), entry, "http")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Append() error = %v, want ErrValidation", err)
	}
	if repoCalled {
		t.Fatal("repository should not be called for invalid entry")
	}

	if _, err := svc.Append(context.Background(), nil, "http"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Append(nil) error = %v, want ErrValidation", err)
	}
}

func TestRoutingLogServiceAppendStorageFailure(t *testing.T) {
	t.Parallel()

	repo := &stubRoutingLogRepo{
		appendFn: func(ctx context.Context, e *domain.RoutingLogEntry) error {
			return domain.ErrStorage
		},
	}
	svc := newTestService(t, repo)

	_, err := svc.Append(context.Background(), validEntry(), "http")
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("Append() error = %v, want ErrStorage", err)
	}
	if errors.Is(err, domain.ErrValidation) {
		t.Fatal("storage failure must not look like a validation failure")
	}
}

func TestRoutingLogServiceGetByMessageID(t *testing.T) {
	t.Parallel()

	repo := &stubRoutingLogRepo{
		getByMessageIDFn: func(ctx context.Context, messageID string) ([]domain.RoutingLogEntry, error) {
			if messageID != "MSG003" {
				t.Fatalf("messageID = %s, want MSG003", messageID)
			}
			return []domain.RoutingLogEntry{{ID: 1}, {ID: 2}}, nil
		},
	}
	svc := newTestService(t, repo)

	entries, err := svc.GetByMessageID(context.Background(), " MSG003 ")
	if err != nil {
		t.Fatalf("GetByMessageID() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("GetByMessageID() returned %d entries, want 2", len(entries))
	}

	if _, err := svc.GetByMessageID(context.Background(), "  "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("GetByMessageID(blank) error = %v, want ErrValidation", err)
	}
}

func TestRoutingLogServiceGetByMessageIDNotFound(t *testing.T) {
	t.Parallel()

	repo := &stubRoutingLogRepo{
		getByMessageIDFn: func(ctx context.Context, messageID string) ([]domain.RoutingLogEntry, error) {
			return nil, nil
		},
	}
	svc := newTestService(t, repo)

	if _, err := svc.GetByMessageID(context.Background(), "MSG999"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByMessageID(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestRoutingLogServiceListByStatus(t *testing.T) {
	t.Parallel()

	from := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	repo := &stubRoutingLogRepo{
		listByStatusFn: func(ctx context.Context, status domain.Status, gotFrom, gotTo time.Time) ([]domain.RoutingLogEntry, error) {
			if status != domain.StatusPending {
				t.Fatalf("status = %s, want PENDING", status)
			}
			if !gotFrom.Equal(from) || !gotTo.Equal(to) {
				t.Fatalf("range = [%v, %v), want [%v, %v)", gotFrom, gotTo, from, to)
			}
			return nil, nil
		},
	}
	svc := newTestService(t, repo)

	if _, err := svc.ListByStatus(context.Background(), domain.StatusPending, from, to); err != nil {
		t.Fatalf("ListByStatus() error = %v", err)
	}

	if _, err := svc.ListByStatus(context.Background(), domain.Status("SENT"), from, to); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("ListByStatus(invalid status) error = %v, want ErrValidation", err)
	}

	if _, err := svc.ListByStatus(context.Background(), domain.StatusPending, to, from); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("ListByStatus(inverted range) error = %v, want ErrValidation", err)
	}
}

func TestRoutingLogServiceListByTypeLimits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		limit     int
		wantLimit int
		wantErr   bool
	}{
		{name: "zero uses default", limit: 0, wantLimit: defaultTypeLimit},
		{name: "explicit limit", limit: 5, wantLimit: 5},
		{name: "capped at max", limit: 500, wantLimit: maxTypeLimit},
		{name: "negative rejected", limit: -1, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := &stubRoutingLogRepo{
				listByTypeFn: func(ctx context.Context, messageType string, limit int) ([]domain.RoutingLogEntry, error) {
					if limit != tt.wantLimit {
						t.Fatalf("limit = %d, want %d", limit, tt.wantLimit)
					}
					return nil, nil
				},
			}
			svc := newTestService(t, repo)

			_, err := svc.ListByType(context.Background(), "ADT^A01", tt.limit)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrValidation) {
					t.Fatalf("ListByType() error = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ListByType() error = %v", err)
			}
		})
	}
}

func TestRoutingLogServiceSummary(t *testing.T) {
	t.Parallel()

	repo := &stubRoutingLogRepo{
		countByStatusFn: func(ctx context.Context) ([]repository.StatusCount, error) {
			return []repository.StatusCount{
				{Status: domain.StatusSuccess, Count: 8},
				{Status: domain.StatusFailed, Count: 2},
				{Status: domain.StatusPending, Count: 3},
			}, nil
		},
	}
	svc := newTestService(t, repo)

	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}

	if summary.Total != 13 {
		t.Errorf("Total = %d, want 13", summary.Total)
	}
	if summary.SuccessRate != 80 {
		t.Errorf("SuccessRate = %v, want 80 (pending excluded)", summary.SuccessRate)
	}
}

func TestRoutingLogServiceSummaryEmpty(t *testing.T) {
	t.Parallel()

	repo := &stubRoutingLogRepo{
		countByStatusFn: func(ctx context.Context) ([]repository.StatusCount, error) {
			return nil, nil
		},
	}
	svc := newTestService(t, repo)

	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if summary.Total != 0 || summary.SuccessRate != 0 {
		t.Fatalf("empty summary = %+v, want zero values", summary)
	}
}
