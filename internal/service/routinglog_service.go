package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/restlets/hl7-routing-log/internal/domain"
	"github.com/restlets/hl7-routing-log/internal/observability"
	"github.com/restlets/hl7-routing-log/internal/repository"
	"go.uber.org/zap"
)

const (
	defaultTypeLimit = 20
	maxTypeLimit     = 100
)

// RoutingLogService is the application boundary of the store: it validates
// entries before they reach storage and serves the four query shapes the
// table is indexed for.
type RoutingLogService struct {
	entries repository.RoutingLogRepository
	metrics *observability.Metrics
	logger  *zap.Logger
}

// Summary aggregates the whole log by status, the shape the original
// verification queries produced.
type Summary struct {
	Total       int64
	Counts      []repository.StatusCount
	SuccessRate float64
}

func NewRoutingLogService(
	entries repository.RoutingLogRepository,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (*RoutingLogService, error) {
	if entries == nil {
		return nil, fmt.Errorf("routing log repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RoutingLogService{
		entries: entries,
		metrics: metrics,
		logger:  logger,
	}, nil
}

// Append validates and persists one delivery attempt. source tags the
// ingress surface for metrics (http or mllp).
func (s *RoutingLogService) Append(ctx context.Context, entry *domain.RoutingLogEntry, source string) (*domain.RoutingLogEntry, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if entry == nil {
		return nil, fmt.Errorf("%w: entry is required", domain.ErrValidation)
	}

	if err := entry.Validate(); err != nil {
		s.metrics.IncAppendRejected("validation")
		return nil, err
	}

	if err := s.entries.Append(ctx, entry); err != nil {
		s.metrics.IncAppendRejected("storage")
		s.logger.Error("failed to append routing log entry",
			zap.String("messageId", entry.MessageID),
			zap.Error(err),
		)
		return nil, err
	}

	s.metrics.IncEntryAppended(entry.Status.String(), source)
	s.logger.Debug("routing log entry appended",
		zap.Int64("id", entry.ID),
		zap.String("messageId", entry.MessageID),
		zap.String("status", entry.Status.String()),
	)

	return entry, nil
}

// GetByMessageID returns every attempt for a message in attempt order.
func (s *RoutingLogService) GetByMessageID(ctx context.Context, messageID string) ([]domain.RoutingLogEntry, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	trimmed := strings.TrimSpace(messageID)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: message id is required", domain.ErrValidation)
	}

	start := time.Now()
	entries, err := s.entries.GetByMessageID(ctx, trimmed)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveQueryDuration("by_message_id", time.Since(start))

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no entries for message %s", domain.ErrNotFound, trimmed)
	}

	return entries, nil
}

// ListByStatus returns entries with the given status whose effective time
// falls in [from, to), most recent first.
func (s *RoutingLogService) ListByStatus(ctx context.Context, status domain.Status, from, to time.Time) ([]domain.RoutingLogEntry, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if !status.IsValid() {
		return nil, fmt.Errorf("%w: invalid status %q", domain.ErrValidation, status)
	}
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: time range start must precede end", domain.ErrValidation)
	}

	start := time.Now()
	entries, err := s.entries.ListByStatus(ctx, status, from, to)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveQueryDuration("by_status", time.Since(start))

	return entries, nil
}

// ListByType returns the most recent entries of a message type.
func (s *RoutingLogService) ListByType(ctx context.Context, messageType string, limit int) ([]domain.RoutingLogEntry, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	trimmed := strings.TrimSpace(messageType)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: message type is required", domain.ErrValidation)
	}
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", domain.ErrValidation)
	}
	if limit == 0 {
		limit = defaultTypeLimit
	}
	if limit > maxTypeLimit {
		limit = maxTypeLimit
	}

	start := time.Now()
	entries, err := s.entries.ListByType(ctx, trimmed, limit)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveQueryDuration("by_type", time.Since(start))

	return entries, nil
}

// Summary aggregates per-status counts. The success rate is computed over
// attempts with a known outcome; pending entries are excluded.
func (s *RoutingLogService) Summary(ctx context.Context) (*Summary, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	counts, err := s.entries.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveQueryDuration("summary", time.Since(start))

	summary := &Summary{Counts: counts}

	var succeeded, failed int64
	for _, c := range counts {
		summary.Total += c.Count
		switch c.Status {
		case domain.StatusSuccess:
			succeeded += c.Count
		case domain.StatusFailed:
			failed += c.Count
		}
	}

	if terminal := succeeded + failed; terminal > 0 {
		summary.SuccessRate = float64(succeeded) / float64(terminal) * 100
	}

	return summary, nil
}
