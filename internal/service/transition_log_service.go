package service

import (
	"context"
	"time"

	"backoffice/internal/model"
	"backoffice/internal/repository"
)

type TransitionLogResponse struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	Role          string `json:"role"`
	Family        string `json:"family"`
	OrderID       int64  `json:"order_id"`
	NumeroOrden   string `json:"numero_orden"`
	Action        string `json:"action"`
	Outcome       string `json:"outcome"`
	ServerMessage string `json:"server_message"`
	CreatedAt     string `json:"created_at"`
}

type TransitionLogFilter = repository.TransitionLogFilter

type TransitionLogService interface {
	Record(ctx context.Context, entry *model.TransitionLog) error
	List(ctx context.Context, filter TransitionLogFilter, page, limit int) ([]TransitionLogResponse, int64, error)
}

type transitionLogService struct {
	repo repository.TransitionLogRepository
}

func NewTransitionLogService(repo repository.TransitionLogRepository) TransitionLogService {
	return &transitionLogService{repo: repo}
}

func (s *transitionLogService) Record(ctx context.Context, entry *model.TransitionLog) error {
	return s.repo.Create(ctx, entry)
}

// List returns one page of the log, newest first.
func (s *transitionLogService) List(ctx context.Context, filter TransitionLogFilter, page, limit int) ([]TransitionLogResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	logs, total, err := s.repo.List(ctx, filter, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]TransitionLogResponse, 0, len(logs))
	for _, l := range logs {
		res = append(res, TransitionLogResponse{
			ID:            l.ID.String(),
			UserID:        l.UserID,
			Role:          l.Role,
			Family:        l.Family,
			OrderID:       l.OrderID,
			NumeroOrden:   l.NumeroOrden,
			Action:        l.Action,
			Outcome:       l.Outcome,
			ServerMessage: l.ServerMessage,
			CreatedAt:     l.CreatedAt.Format(time.RFC3339),
		})
	}
	return res, total, nil
}
