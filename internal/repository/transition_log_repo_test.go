package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&model.TransitionLog{}))
	return conn
}

func TestCreateAssignsID(t *testing.T) {
	repo := NewTransitionLogRepository(newTestDB(t))
	entry := &model.TransitionLog{
		Role:    "gerencia",
		Family:  "compra",
		OrderID: 10,
		Action:  "approve_admin",
		Outcome: model.OutcomeSucceeded,
	}

	require.NoError(t, repo.Create(context.Background(), entry))
	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestListFiltersAndOrdersNewestFirst(t *testing.T) {
	repo := NewTransitionLogRepository(newTestDB(t))
	ctx := context.Background()
	base := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	entries := []model.TransitionLog{
		{Role: "gerencia", Family: "compra", OrderID: 1, Action: "approve_admin", Outcome: model.OutcomeSucceeded, CreatedAt: base},
		{Role: "contabilidad", Family: "compra", OrderID: 1, Action: "transfer", Outcome: model.OutcomeFailed, CreatedAt: base.Add(time.Minute)},
		{Role: "contabilidad", Family: "servicio", OrderID: 2, Action: "transfer", Outcome: model.OutcomeSucceeded, CreatedAt: base.Add(2 * time.Minute)},
	}
	for i := range entries {
		require.NoError(t, repo.Create(ctx, &entries[i]))
	}

	all, total, err := repo.List(ctx, TransitionLogFilter{}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, all, 3)
	assert.Equal(t, int64(2), all[0].OrderID)

	transfers, total, err := repo.List(ctx, TransitionLogFilter{Action: "transfer", Family: "compra"}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, transfers, 1)
	assert.Equal(t, model.OutcomeFailed, transfers[0].Outcome)

	page, total, err := repo.List(ctx, TransitionLogFilter{}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 1)
	assert.Equal(t, "transfer", page[0].Action)
	assert.Equal(t, "compra", page[0].Family)
}
