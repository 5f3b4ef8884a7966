// Package orderapi is the client of the external Order API.
package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"backoffice/internal/attachment"
	"backoffice/internal/config"
	"backoffice/internal/model"
	apperr "backoffice/pkg/errors"
)

// Approval is the path segment of one approval endpoint.
type Approval string

const (
	ApprovalAdministracion Approval = "aprobar-administracion"
	ApprovalJefeProyecto   Approval = "aprobar-jefe-proyecto"
	ApprovalContabilidad   Approval = "aprobar-contabilidad"
)

const maxErrorBody = 64 << 10

// Observer receives the duration and result of every remote call.
type Observer interface {
	ObserveCall(operation string, d time.Duration, err error)
}

// Client talks to the Order API over HTTP. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
	observer   Observer
}

// UploadResult is what an upload endpoint returns: the stored file link and,
// when the server sends it, the updated order.
type UploadResult struct {
	URL   string
	Order *model.Order
}

func NewClient(cfg config.OrderAPIConfig, observer Observer) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid order api base url %q", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    base,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
		observer:   observer,
	}, nil
}

func (c *Client) endpoint(family model.Family, parts ...string) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + family.Resource()
	for _, p := range parts {
		u.Path += "/" + p
	}
	return u.String()
}

func orderPath(id int64, parts ...string) []string {
	return append([]string{strconv.FormatInt(id, 10)}, parts...)
}

// PDFURL is the canonical link to the printable PDF of an order.
func (c *Client) PDFURL(family model.Family, id int64) string {
	return c.endpoint(family, orderPath(id, "pdf")...)
}

func (c *Client) List(ctx context.Context, family model.Family) ([]model.Order, error) {
	body, err := c.do(ctx, "list", http.MethodGet, c.endpoint(family), nil, "")
	if err != nil {
		return nil, err
	}
	orders, err := decodeOrders(body)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeDependency, err, "respuesta inválida del servidor de órdenes")
	}
	return orders, nil
}

func (c *Client) Get(ctx context.Context, family model.Family, id int64) (*model.Order, error) {
	body, err := c.do(ctx, "get", http.MethodGet, c.endpoint(family, orderPath(id)...), nil, "")
	if err != nil {
		return nil, err
	}
	order := decodeOrder(body)
	if order == nil {
		return nil, apperr.New(apperr.CodeNotFound, fmt.Sprintf("orden %d no encontrada", id))
	}
	return order, nil
}

// Approve flips one authorization flag. The returned order is nil when the
// server answers without a record.
func (c *Client) Approve(ctx context.Context, family model.Family, id int64, approval Approval) (*model.Order, error) {
	body, err := c.do(ctx, string(approval), http.MethodPost, c.endpoint(family, orderPath(id, string(approval))...), nil, "")
	if err != nil {
		return nil, err
	}
	return decodeOrder(body), nil
}

func (c *Client) Transfer(ctx context.Context, family model.Family, id int64) (*model.Order, error) {
	body, err := c.do(ctx, "transferir", http.MethodPost, c.endpoint(family, orderPath(id, "transferir")...), nil, "")
	if err != nil {
		return nil, err
	}
	return decodeOrder(body), nil
}

// Delete soft-deletes the order.
func (c *Client) Delete(ctx context.Context, family model.Family, id int64) error {
	_, err := c.do(ctx, "delete", http.MethodDelete, c.endpoint(family, orderPath(id)...), nil, "")
	return err
}

func (c *Client) Restore(ctx context.Context, family model.Family, id int64) (*model.Order, error) {
	body, err := c.do(ctx, "restore", http.MethodPost, c.endpoint(family, orderPath(id, "restore")...), nil, "")
	if err != nil {
		return nil, err
	}
	return decodeOrder(body), nil
}

// UploadFile stores the operation evidence file.
func (c *Client) UploadFile(ctx context.Context, family model.Family, id int64, file attachment.File) (*UploadResult, error) {
	return c.upload(ctx, "upload-file", family, id, file, nil)
}

// UploadRetentionReceipt stores the withholding receipt together with its serial.
func (c *Client) UploadRetentionReceipt(ctx context.Context, family model.Family, id int64, file attachment.File, nroSerie string) (*UploadResult, error) {
	return c.upload(ctx, "upload-comprobante-retencion", family, id, file, map[string]string{"nro_serie": nroSerie})
}

func (c *Client) upload(ctx context.Context, op string, family model.Family, id int64, file attachment.File, fields map[string]string) (*UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("failed to build multipart body: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}

	body, err := c.do(ctx, op, http.MethodPost, c.endpoint(family, orderPath(id, op)...), &buf, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	return decodeUpload(body), nil
}

func (c *Client) do(ctx context.Context, op, method, target string, body io.Reader, contentType string) (raw []byte, err error) {
	start := time.Now()
	defer func() {
		if c.observer != nil {
			c.observer.ObserveCall(op, time.Since(start), err)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeDependency, err, "no se pudo contactar al servidor de órdenes")
	}
	defer resp.Body.Close()

	raw, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeDependency, err, "respuesta incompleta del servidor de órdenes")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(raw) > maxErrorBody {
			raw = raw[:maxErrorBody]
		}
		return nil, apperr.New(upstreamCode(resp.StatusCode), serverMessage(resp.StatusCode, raw)).
			WithDetails(map[string]any{"upstream_status": resp.StatusCode})
	}
	return raw, nil
}

// upstreamCode maps an Order API status onto an error code. Authentication
// failures belong to the gateway's own credentials, not the browser session.
func upstreamCode(status int) apperr.Code {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return apperr.CodeDependency
	}
	return apperr.CodeForStatus(status)
}

// serverMessage extracts the human message of an error body.
func serverMessage(status int, body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return fmt.Sprintf("el servidor de órdenes respondió %d %s", status, http.StatusText(status))
}
