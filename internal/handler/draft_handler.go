package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"backoffice/internal/draft"
	"backoffice/internal/middleware"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

type DraftStore interface {
	Save(ctx context.Context, userID, form string, rows json.RawMessage) (draft.Draft, error)
	Load(ctx context.Context, userID, form string) (draft.Draft, error)
	Delete(ctx context.Context, userID, form string) error
}

type SaveDraftRequest struct {
	Rows json.RawMessage `json:"rows" binding:"required" swaggertype:"array,object"`
}

type DraftHandler struct {
	store  DraftStore
	secret []byte
	roles  []string
}

func NewDraftHandler(store DraftStore, secret []byte, roles ...string) *DraftHandler {
	return &DraftHandler{store: store, secret: secret, roles: roles}
}

func (h *DraftHandler) RegisterRoutes(router *gin.RouterGroup) {
	drafts := router.Group("/api/drafts")
	drafts.Use(middleware.RequireRole(h.secret, h.roles...))
	{
		drafts.GET("/:form", h.GetDraft)
		drafts.PUT("/:form", h.SaveDraft)
		drafts.DELETE("/:form", h.DeleteDraft)
	}
}

func (h *DraftHandler) form(c *gin.Context) (string, bool) {
	form := c.Param("form")
	if !draft.ValidForm(form) {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid form name"))
		return "", false
	}
	return form, true
}

// GetDraft returns the unsaved rows of a form
// @Summary      Get draft
// @Tags         drafts
// @Security     BearerAuth
// @Produce      json
// @Param        form  path  string  true  "Form name"
// @Success      200  {object}  response.Response{data=draft.Draft}
// @Failure      404  {object}  response.Response
// @Router       /api/drafts/{form} [get]
func (h *DraftHandler) GetDraft(c *gin.Context) {
	form, ok := h.form(c)
	if !ok {
		return
	}
	userID, _ := middleware.Actor(c)

	d, err := h.store.Load(c.Request.Context(), userID, form)
	if errors.Is(err, draft.ErrNotFound) {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Draft not found"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to load draft: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, d))
}

// SaveDraft stores the unsaved rows of a form
// @Summary      Save draft
// @Tags         drafts
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        form     path  string            true  "Form name"
// @Param        payload  body  SaveDraftRequest  true  "Rows"
// @Success      200  {object}  response.Response{data=draft.Draft}
// @Failure      400  {object}  response.Response
// @Router       /api/drafts/{form} [put]
func (h *DraftHandler) SaveDraft(c *gin.Context) {
	form, ok := h.form(c)
	if !ok {
		return
	}
	var req SaveDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	userID, _ := middleware.Actor(c)

	d, err := h.store.Save(c.Request.Context(), userID, form, req.Rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to save draft: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, d))
}

// DeleteDraft discards the unsaved rows of a form
// @Summary      Delete draft
// @Tags         drafts
// @Security     BearerAuth
// @Param        form  path  string  true  "Form name"
// @Success      204
// @Router       /api/drafts/{form} [delete]
func (h *DraftHandler) DeleteDraft(c *gin.Context) {
	form, ok := h.form(c)
	if !ok {
		return
	}
	userID, _ := middleware.Actor(c)

	if err := h.store.Delete(c.Request.Context(), userID, form); err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to delete draft: "+err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}
