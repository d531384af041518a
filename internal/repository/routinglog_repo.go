package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/restlets/hl7-routing-log/internal/domain"
	"gorm.io/gorm"
)

// effectiveTimeExpr mirrors domain.RoutingLogEntry.EffectiveTime: pending
// entries have no received_time yet, so range queries fall back to sent_time.
const effectiveTimeExpr = "COALESCE(received_time, sent_time)"

// StatusCount is one row of the per-status summary.
type StatusCount struct {
	Status domain.Status `gorm:"column:status"`
	Count  int64         `gorm:"column:count"`
}

type RoutingLogRepository interface {
	Append(ctx context.Context, e *domain.RoutingLogEntry) error
	GetByMessageID(ctx context.Context, messageID string) ([]domain.RoutingLogEntry, error)
	ListByStatus(ctx context.Context, status domain.Status, from, to time.Time) ([]domain.RoutingLogEntry, error)
	ListByType(ctx context.Context, messageType string, limit int) ([]domain.RoutingLogEntry, error)
	CountByStatus(ctx context.Context) ([]StatusCount, error)
}

type GormRoutingLogRepo struct {
	db *gorm.DB
}

func NewGormRoutingLogRepo(db *gorm.DB) *GormRoutingLogRepo {
	return &GormRoutingLogRepo{db: db}
}

// Append inserts a single entry and assigns its id. Rows are never updated
// afterwards; retries for the same message become new rows.
func (r *GormRoutingLogRepo) Append(ctx context.Context, e *domain.RoutingLogEntry) error {
	model := entryModelFromDomain(e)
	if model == nil {
		return fmt.Errorf("%w: entry is required", domain.ErrValidation)
	}
	model.ID = 0
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("%w: append routing log entry: %v", domain.ErrStorage, err)
	}
	*e = *entryModelToDomain(model)
	return nil
}

func (r *GormRoutingLogRepo) GetByMessageID(ctx context.Context, messageID string) ([]domain.RoutingLogEntry, error) {
	var models []RoutingLogModel
	err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Order("sent_time ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("%w: query by message id: %v", domain.ErrStorage, err)
	}

	return entryModelsToDomain(models), nil
}

func (r *GormRoutingLogRepo) ListByStatus(ctx context.Context, status domain.Status, from, to time.Time) ([]domain.RoutingLogEntry, error) {
	var models []RoutingLogModel
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Where(effectiveTimeExpr+" >= ? AND "+effectiveTimeExpr+" < ?", from, to).
		Order(effectiveTimeExpr + " DESC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("%w: query by status: %v", domain.ErrStorage, err)
	}

	return entryModelsToDomain(models), nil
}

func (r *GormRoutingLogRepo) ListByType(ctx context.Context, messageType string, limit int) ([]domain.RoutingLogEntry, error) {
	var models []RoutingLogModel
	err := r.db.WithContext(ctx).
		Where("message_type = ?", messageType).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("%w: query by message type: %v", domain.ErrStorage, err)
	}

	return entryModelsToDomain(models), nil
}

func (r *GormRoutingLogRepo) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	var counts []StatusCount
	err := r.db.WithContext(ctx).
		Model(&RoutingLogModel{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("%w: count by status: %v", domain.ErrStorage, err)
	}
	return counts, nil
}
