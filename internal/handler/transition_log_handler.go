package handler

import (
	"net/http"
	"strconv"

	"backoffice/internal/middleware"
	"backoffice/internal/service"
	"backoffice/pkg/pagination"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

type TransitionLogHandler struct {
	logService service.TransitionLogService
	secret     []byte
	roles      []string
}

func NewTransitionLogHandler(logService service.TransitionLogService, secret []byte, roles ...string) *TransitionLogHandler {
	return &TransitionLogHandler{logService: logService, secret: secret, roles: roles}
}

func (h *TransitionLogHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/transition-logs")
	group.Use(middleware.RequireRole(h.secret, h.roles...))
	{
		group.GET("", h.ListTransitionLogs)
	}
}

// ListTransitionLogs returns who executed which transition, newest first
// @Summary      List transition logs
// @Tags         transition-logs
// @Security     BearerAuth
// @Produce      json
// @Param        page      query  int     false  "Page number (default 1)"
// @Param        limit     query  int     false  "Number of items per page (default 20)"
// @Param        family    query  string  false  "compra or servicio"
// @Param        action    query  string  false  "Action name"
// @Param        outcome   query  string  false  "SUCCEEDED, FAILED or REJECTED"
// @Param        user_id   query  string  false  "Actor id"
// @Param        order_id  query  int     false  "Order id"
// @Success      200  {object}  response.Response{data=pagination.Page[service.TransitionLogResponse]}
// @Router       /api/transition-logs [get]
func (h *TransitionLogHandler) ListTransitionLogs(c *gin.Context) {
	p := pagination.Parse(c)
	orderID, _ := strconv.ParseInt(c.Query("order_id"), 10, 64)

	filter := service.TransitionLogFilter{
		Family:  c.Query("family"),
		Action:  c.Query("action"),
		Outcome: c.Query("outcome"),
		UserID:  c.Query("user_id"),
		OrderID: orderID,
	}

	logs, total, err := h.logService.List(c.Request.Context(), filter, p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to retrieve transition logs: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.NewPage(logs, total, p)))
}
