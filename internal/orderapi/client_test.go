package orderapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"backoffice/internal/attachment"
	"backoffice/internal/config"
	"backoffice/internal/model"
	apperr "backoffice/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	operation string
	err       error
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (o *recordingObserver) ObserveCall(operation string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, recordedCall{operation: operation, err: err})
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *recordingObserver) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	obs := &recordingObserver{}
	c, err := NewClient(config.OrderAPIConfig{BaseURL: srv.URL + "/api/", Token: "secret", Timeout: time.Second}, obs)
	require.NoError(t, err)
	return c, obs
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient(config.OrderAPIConfig{BaseURL: "not a url"}, nil)
	require.Error(t, err)
}

func TestListDecodesEnvelopeAndBareList(t *testing.T) {
	for name, body := range map[string]string{
		"envelope": `{"data":[{"id":1,"numero_orden":"OC-1","auto_administrador":true,"jefe_proyecto":null,"auto_contabilidad":false}]}`,
		"bare":     `[{"id":1,"numero_orden":"OC-1","auto_administrador":true,"jefe_proyecto":null,"auto_contabilidad":false}]`,
	} {
		t.Run(name, func(t *testing.T) {
			c, obs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/api/ordenes-compra", r.URL.Path)
				assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
				_, _ = io.WriteString(w, body)
			})

			orders, err := c.List(context.Background(), model.FamilyCompra)
			require.NoError(t, err)
			require.Len(t, orders, 1)
			assert.Equal(t, "OC-1", orders[0].NumeroOrden)
			assert.Equal(t, model.FlagApproved, orders[0].AutoAdministrador)
			assert.Equal(t, model.FlagNotApplicable, orders[0].JefeProyecto)
			assert.Equal(t, model.FlagPending, orders[0].AutoContabilidad)
			require.Len(t, obs.calls, 1)
			assert.Equal(t, "list", obs.calls[0].operation)
		})
	}
}

func TestListRejectsNonList(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"id":3}}`)
	})
	_, err := c.List(context.Background(), model.FamilyServicio)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeDependency))
}

func TestApprovePathsAndOptionalRecord(t *testing.T) {
	var gotPath string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodPost, r.Method)
		if r.URL.Path == "/api/ordenes-servicio/7/aprobar-jefe-proyecto" {
			_, _ = io.WriteString(w, `{"message":"ok"}`)
			return
		}
		_, _ = io.WriteString(w, `{"data":{"orden":{"id":7,"numero_orden":"OS-7","auto_contabilidad":true}}}`)
	})

	order, err := c.Approve(context.Background(), model.FamilyServicio, 7, ApprovalJefeProyecto)
	require.NoError(t, err)
	assert.Nil(t, order)
	assert.Equal(t, "/api/ordenes-servicio/7/aprobar-jefe-proyecto", gotPath)

	order, err = c.Approve(context.Background(), model.FamilyServicio, 7, ApprovalContabilidad)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, model.FlagApproved, order.AutoContabilidad)
	assert.Equal(t, "/api/ordenes-servicio/7/aprobar-contabilidad", gotPath)
}

func TestApprovePartialBodyIsNotARecord(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"message":"Orden aprobada","data":{"id":5,"auto_administrador":true}}`)
	})
	order, err := c.Approve(context.Background(), model.FamilyCompra, 5, ApprovalAdministracion)
	require.NoError(t, err)
	assert.Nil(t, order)
}

func TestTransferDeleteRestorePaths(t *testing.T) {
	var seen []string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})
	ctx := context.Background()

	_, err := c.Transfer(ctx, model.FamilyCompra, 5)
	require.NoError(t, err)
	require.NoError(t, c.Delete(ctx, model.FamilyCompra, 5))
	_, err = c.Restore(ctx, model.FamilyCompra, 5)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"POST /api/ordenes-compra/5/transferir",
		"DELETE /api/ordenes-compra/5",
		"POST /api/ordenes-compra/5/restore",
	}, seen)
}

func TestUploadRetentionReceiptSendsMultipart(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ordenes-compra/9/upload-comprobante-retencion", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "F001-123", r.FormValue("nro_serie"))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "recibo.pdf", hdr.Filename)
		assert.Equal(t, "%PDF-1.4", string(data))
		_, _ = io.WriteString(w, `{"url":"https://files.example/recibo.pdf"}`)
	})

	res, err := c.UploadRetentionReceipt(context.Background(), model.FamilyCompra, 9,
		attachment.File{Name: "recibo.pdf", Data: []byte("%PDF-1.4")}, "F001-123")
	require.NoError(t, err)
	assert.Equal(t, "https://files.example/recibo.pdf", res.URL)
	assert.Nil(t, res.Order)
}

func TestUploadFileReadsURLFromEnvelope(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ordenes-servicio/4/upload-file", r.URL.Path)
		_, _ = io.WriteString(w, `{"data":{"url":"https://files.example/op.pdf"}}`)
	})
	res, err := c.UploadFile(context.Background(), model.FamilyServicio, 4,
		attachment.File{Name: "op.pdf", Data: []byte("%PDF-1.4")})
	require.NoError(t, err)
	assert.Equal(t, "https://files.example/op.pdf", res.URL)
}

func TestErrorStatusCarriesServerMessage(t *testing.T) {
	c, obs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"message":"La orden ya fue transferida"}`)
	})

	_, err := c.Transfer(context.Background(), model.FamilyCompra, 1)
	require.Error(t, err)
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperr.CodeValidation, appErr.Code())
	assert.Equal(t, "La orden ya fue transferida", appErr.Message())
	require.Len(t, obs.calls, 1)
	assert.Error(t, obs.calls[0].err)
}

func TestErrorStatusWithoutBodyFallsBack(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	err := c.Delete(context.Background(), model.FamilyCompra, 1)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeDependency))
	assert.Contains(t, err.Error(), "500")
}

func TestUpstreamAuthFailureIsDependencyError(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = io.WriteString(w, `{"message":"token expired"}`)
		})
		_, err := c.Approve(context.Background(), model.FamilyCompra, 1, ApprovalAdministracion)
		require.Error(t, err)
		assert.True(t, apperr.IsCode(err, apperr.CodeDependency), "status %d", status)
		assert.Equal(t, "token expired", apperr.As(err).Message())
	}
}

func TestGetMissingOrderIsNotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":null}`)
	})
	_, err := c.Get(context.Background(), model.FamilyCompra, 2)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}

func TestPDFURL(t *testing.T) {
	c, err := NewClient(config.OrderAPIConfig{BaseURL: "https://orders.example/api"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://orders.example/api/ordenes-compra/12/pdf", c.PDFURL(model.FamilyCompra, 12))
}
