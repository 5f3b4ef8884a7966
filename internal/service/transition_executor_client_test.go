package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backoffice/internal/config"
	"backoffice/internal/model"
	"backoffice/internal/orderapi"
	"backoffice/internal/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartialApprovalReplyKeepsCachedRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ordenes-compra/5/aprobar-administracion", r.URL.Path)
		_, _ = io.WriteString(w, `{"message":"Orden aprobada","data":{"id":5,"auto_administrador":true}}`)
	}))
	t.Cleanup(srv.Close)

	client, err := orderapi.NewClient(config.OrderAPIConfig{BaseURL: srv.URL + "/api", Timeout: time.Second}, nil)
	require.NoError(t, err)

	cached := model.Order{
		ID:                5,
		NumeroOrden:       "OC-5",
		NombreProveedor:   "Acme Corp",
		FechaOrden:        model.Date{Year: 2024, Month: time.March, Day: 15},
		AutoAdministrador: model.FlagPending,
		JefeProyecto:      model.FlagApproved,
		AutoContabilidad:  model.FlagApproved,
		ProcedePago:       model.StringPtr(model.ProcedePagoPagar),
	}
	patcher := &recordingPatcher{}
	exec := NewTransitionExecutor(ExecutorDeps{
		Gateway:  client,
		Patcher:  patcher,
		Notifier: &recordingNotifier{},
		Logs:     &memoryLogs{},
	})

	req := request(policy.GerenciaScope, policy.ApproveAdmin)
	req.OrderID = 5
	_, err = exec.Execute(context.Background(), mapCache{5: cached}, req)
	require.NoError(t, err)

	require.Len(t, patcher.patched, 1)
	got := patcher.patched[0]
	assert.Equal(t, "OC-5", got.NumeroOrden)
	assert.Equal(t, "Acme Corp", got.NombreProveedor)
	assert.Equal(t, "15/03/2024", got.FechaOrden.Display())
	assert.Equal(t, model.FlagApproved, got.AutoAdministrador)
	assert.Equal(t, model.FlagApproved, got.JefeProyecto)
	assert.Equal(t, model.FlagApproved, got.AutoContabilidad)
	require.NotNil(t, got.ProcedePago)
	assert.Equal(t, 3, got.ApprovalCount())
	assert.True(t, policy.CanTransition(got, policy.Transfer))
}
