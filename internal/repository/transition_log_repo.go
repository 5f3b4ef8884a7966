package repository

import (
	"context"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransitionLogFilter narrows a transition log listing; zero values match everything.
type TransitionLogFilter struct {
	Family  string
	Action  string
	Outcome string
	UserID  string
	OrderID int64
}

type TransitionLogRepository interface {
	Create(ctx context.Context, entry *model.TransitionLog) error
	List(ctx context.Context, filter TransitionLogFilter, offset, limit int) ([]model.TransitionLog, int64, error)
}

type transitionLogRepository struct {
	db *gorm.DB
}

func NewTransitionLogRepository(db *gorm.DB) TransitionLogRepository {
	return &transitionLogRepository{db: db}
}

func (r *transitionLogRepository) Create(ctx context.Context, entry *model.TransitionLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *transitionLogRepository) List(ctx context.Context, filter TransitionLogFilter, offset, limit int) ([]model.TransitionLog, int64, error) {
	var logs []model.TransitionLog
	var total int64

	q := applyTransitionLogFilter(r.db.WithContext(ctx).Model(&model.TransitionLog{}), filter)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = applyTransitionLogFilter(r.db.WithContext(ctx), filter)
	if err := q.Order("created_at desc").Offset(offset).Limit(limit).Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

func applyTransitionLogFilter(q *gorm.DB, f TransitionLogFilter) *gorm.DB {
	if f.Family != "" {
		q = q.Where("family = ?", f.Family)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.Outcome != "" {
		q = q.Where("outcome = ?", f.Outcome)
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.OrderID > 0 {
		q = q.Where("order_id = ?", f.OrderID)
	}
	return q
}
