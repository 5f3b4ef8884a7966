package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"backoffice/internal/attachment"
	"backoffice/internal/filter"
	"backoffice/internal/middleware"
	"backoffice/internal/model"
	"backoffice/internal/policy"
	"backoffice/internal/service"
	"backoffice/internal/view"
	apperr "backoffice/pkg/errors"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

// MaxUploadBytes caps a single uploaded file.
const MaxUploadBytes = 20 << 20

// ViewLookup finds the cached list of a role page.
type ViewLookup interface {
	View(role string, family model.Family) (*view.OrderView, bool)
}

// PDFLinker builds the link to an order's printable PDF.
type PDFLinker interface {
	PDFURL(family model.Family, id int64) string
}

type OrderListResponse struct {
	Items    []view.Row `json:"items"`
	Total    int        `json:"total"`
	LoadedAt string     `json:"loaded_at,omitempty"`
}

type OrderDetailResponse struct {
	Order     view.Row          `json:"order"`
	Documents []attachment.Slot `json:"documents"`
}

type ActionRequest struct {
	Confirmed bool `json:"confirmed"`
}

// OrderHandler serves the order pages of one role.
type OrderHandler struct {
	scope    policy.Scope
	views    ViewLookup
	executor service.TransitionExecutor
	links    PDFLinker
	secret   []byte
}

func NewOrderHandler(scope policy.Scope, views ViewLookup, executor service.TransitionExecutor, links PDFLinker, secret []byte) *OrderHandler {
	return &OrderHandler{scope: scope, views: views, executor: executor, links: links, secret: secret}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/" + h.scope.Path)
	group.Use(middleware.RequireRole(h.secret, h.scope.Role))
	{
		group.GET("/ordenes/:family", h.ListOrders)
		group.GET("/ordenes/:family/:id", h.GetOrder)
		group.POST("/ordenes/:family/:id/acciones/:action", h.ExecuteAction)
		group.POST("/ordenes/:family/:id/upload-file", h.UploadOperationFile)
		group.POST("/ordenes/:family/:id/upload-comprobante-retencion", h.UploadRetentionReceipt)
	}
}

func (h *OrderHandler) view(c *gin.Context) (*view.OrderView, bool) {
	family, err := model.ParseFamily(c.Param("family"))
	if err != nil {
		c.JSON(response.FromError(apperr.New(apperr.CodeNotFound, err.Error())))
		return nil, false
	}
	v, ok := h.views.View(h.scope.Role, family)
	if !ok {
		c.JSON(response.FromError(apperr.New(apperr.CodeNotFound, "página no disponible")))
		return nil, false
	}
	return v, true
}

func orderID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(response.FromError(apperr.New(apperr.CodeValidation, "id de orden inválido")))
		return 0, false
	}
	return id, true
}

// ListOrders returns the filtered rows of the page
// @Summary      List orders
// @Description  Returns the cached orders of the family filtered by the page's search controls, each with its enabled actions
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        family      path   string  true   "Order family (compra|servicio)"
// @Param        search      query  string  false  "Substring of numero_orden or nombre_proveedor"
// @Param        estado      query  string  false  "Exact estado, TODOS for all"
// @Param        aprobacion  query  string  false  "APROBADO, PENDIENTE or TODOS"
// @Param        fecha       query  string  false  "Order date yyyy-MM-dd"
// @Param        eliminadas  query  bool    false  "Include soft-deleted orders (management only)"
// @Success      200  {object}  response.Response{data=OrderListResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/{role}/ordenes/{family} [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	v, ok := h.view(c)
	if !ok {
		return
	}

	includeDeleted, _ := strconv.ParseBool(c.DefaultQuery("eliminadas", "false"))
	rows := v.Rows(filter.Criteria{
		SearchQuery:    c.Query("search"),
		Estado:         c.Query("estado"),
		Approval:       c.Query("aprobacion"),
		Date:           c.Query("fecha"),
		IncludeDeleted: includeDeleted,
	})

	res := OrderListResponse{Items: rows, Total: len(rows)}
	if at := v.LoadedAt(); !at.IsZero() {
		res.LoadedAt = at.UTC().Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// GetOrder returns one row with its document slots
// @Summary      Get order
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        family  path  string  true  "Order family (compra|servicio)"
// @Param        id      path  int     true  "Order id"
// @Success      200  {object}  response.Response{data=OrderDetailResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/{role}/ordenes/{family}/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	v, ok := h.view(c)
	if !ok {
		return
	}
	id, ok := orderID(c)
	if !ok {
		return
	}

	o, found := v.Get(id)
	if !found || (o.IsDeleted() && !h.scope.ExposesDeleted()) {
		c.JSON(response.FromError(apperr.New(apperr.CodeNotFound, fmt.Sprintf("orden %d no encontrada", id))))
		return
	}

	pdfURL := ""
	if h.links != nil {
		pdfURL = h.links.PDFURL(v.Family(), id)
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, OrderDetailResponse{
		Order:     view.Row{Order: o, Actions: policy.Available(h.scope, o)},
		Documents: attachment.Slots(v.Family(), o, pdfURL),
	}))
}

// ExecuteAction runs one gated transition
// @Summary      Execute order action
// @Description  Runs approve, transfer, soft delete or restore. Without confirmed=true the call answers 428 with the confirmation prompt.
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        family   path  string         true  "Order family (compra|servicio)"
// @Param        id       path  int            true  "Order id"
// @Param        action   path  string         true  "Action name"
// @Param        payload  body  ActionRequest  false "Confirmation"
// @Success      200  {object}  response.Response{data=service.TransitionResult}
// @Failure      403  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Failure      428  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /api/{role}/ordenes/{family}/{id}/acciones/{action} [post]
func (h *OrderHandler) ExecuteAction(c *gin.Context) {
	v, ok := h.view(c)
	if !ok {
		return
	}
	id, ok := orderID(c)
	if !ok {
		return
	}
	action, err := policy.ParseAction(c.Param("action"))
	if err != nil {
		c.JSON(response.FromError(apperr.New(apperr.CodeNotFound, err.Error())))
		return
	}

	var req ActionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
			return
		}
	}

	h.execute(c, v, service.TransitionRequest{
		Family:    v.Family(),
		OrderID:   id,
		Action:    action,
		Confirmed: req.Confirmed,
	})
}

// UploadOperationFile stores the operation evidence, merging several files into one PDF
// @Summary      Upload operation file
// @Tags         orders
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        family     path      string  true   "Order family (compra|servicio)"
// @Param        id         path      int     true   "Order id"
// @Param        files      formData  file    true   "One to four PDF or image files"
// @Param        confirmed  formData  bool    false  "Confirmation"
// @Success      200  {object}  response.Response{data=service.TransitionResult}
// @Failure      400  {object}  response.Response
// @Failure      428  {object}  response.Response
// @Router       /api/{role}/ordenes/{family}/{id}/upload-file [post]
func (h *OrderHandler) UploadOperationFile(c *gin.Context) {
	v, ok := h.view(c)
	if !ok {
		return
	}
	id, ok := orderID(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(response.FromError(apperr.Wrap(apperr.CodeValidation, err, "formulario de carga inválido")))
		return
	}
	files, err := readFiles(form.File["files"])
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	h.execute(c, v, service.TransitionRequest{
		Family:    v.Family(),
		OrderID:   id,
		Action:    policy.UploadOperationFile,
		Confirmed: formBool(form, "confirmed"),
		Files:     files,
	})
}

// UploadRetentionReceipt stores the withholding receipt with its serial number
// @Summary      Upload retention receipt
// @Tags         orders
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        family     path      string  true   "Order family (compra|servicio)"
// @Param        id         path      int     true   "Order id"
// @Param        file       formData  file    true   "Receipt file"
// @Param        nro_serie  formData  string  true   "Receipt serial number"
// @Param        confirmed  formData  bool    false  "Confirmation"
// @Success      200  {object}  response.Response{data=service.TransitionResult}
// @Failure      400  {object}  response.Response
// @Failure      428  {object}  response.Response
// @Router       /api/{role}/ordenes/{family}/{id}/upload-comprobante-retencion [post]
func (h *OrderHandler) UploadRetentionReceipt(c *gin.Context) {
	v, ok := h.view(c)
	if !ok {
		return
	}
	id, ok := orderID(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(response.FromError(apperr.Wrap(apperr.CodeValidation, err, "formulario de carga inválido")))
		return
	}
	receipt := &attachment.RetentionReceipt{NroSerie: strings.TrimSpace(formValue(form, "nro_serie"))}
	if headers := form.File["file"]; len(headers) > 0 {
		files, err := readFiles(headers[:1])
		if err != nil {
			c.JSON(response.FromError(err))
			return
		}
		receipt.File = &files[0]
	}

	h.execute(c, v, service.TransitionRequest{
		Family:    v.Family(),
		OrderID:   id,
		Action:    policy.UploadRetentionReceipt,
		Confirmed: formBool(form, "confirmed"),
		Receipt:   receipt,
	})
}

func (h *OrderHandler) execute(c *gin.Context, v *view.OrderView, req service.TransitionRequest) {
	userID, role := middleware.Actor(c)
	req.Actor = service.Actor{UserID: userID, Role: role}
	req.Scope = h.scope

	result, err := h.executor.Execute(c.Request.Context(), v, req)
	if err != nil {
		_ = c.Error(err)
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"order":   view.Row{Order: result.Order, Actions: policy.Available(h.scope, result.Order)},
		"message": result.Message,
	}))
}

func readFiles(headers []*multipart.FileHeader) ([]attachment.File, error) {
	files := make([]attachment.File, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > MaxUploadBytes {
			return nil, apperr.New(apperr.CodeValidation,
				fmt.Sprintf("el archivo %q supera el tamaño máximo de %d MB", fh.Filename, MaxUploadBytes>>20))
		}
		f, err := fh.Open()
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeValidation, err, fmt.Sprintf("no se pudo leer el archivo %q", fh.Filename))
		}
		data, err := io.ReadAll(io.LimitReader(f, MaxUploadBytes+1))
		_ = f.Close()
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeValidation, err, fmt.Sprintf("no se pudo leer el archivo %q", fh.Filename))
		}
		files = append(files, attachment.File{Name: fh.Filename, Data: data})
	}
	return files, nil
}

func formValue(form *multipart.Form, key string) string {
	if vs := form.Value[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func formBool(form *multipart.Form, key string) bool {
	b, _ := strconv.ParseBool(formValue(form, key))
	return b
}
