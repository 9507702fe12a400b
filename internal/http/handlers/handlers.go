package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/deskline/backend/internal/db"
	"github.com/deskline/backend/internal/service"
)

type Handler struct {
	Store     *db.Store
	Queue     *service.Queue
	Validator *validator.Validate
	Logger    zerolog.Logger
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Create ticket
// @Description Register a visitor and issue a queue ticket. number, desk,
// @Description status and created_at are assigned by the server.
// @Tags tickets
// @Accept json
// @Produce json
// @Success 201 {object} models.Ticket
// @Failure 400 {object} map[string]any
// @Router /api/tickets [post]
func (h *Handler) TicketCreate(c *gin.Context) {
	var req service.AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	ticket, err := h.Queue.Allocate(c.Request.Context(), req)
	if err != nil {
		h.writeQueueError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

func (h *Handler) TicketsList(c *gin.Context) {
	status := c.Query("status")
	svc := c.Query("service")
	var desk *int
	if v := c.Query("desk"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "desk must be an integer", nil)
			return
		}
		desk = &d
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, err := h.Store.ListTickets(c.Request.Context(), status, svc, desk, limit, offset)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list tickets", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "limit": limit, "offset": offset})
}

func (h *Handler) TicketDetails(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Ticket not found", nil)
		return
	}
	ticket, err := h.Store.GetTicket(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Ticket not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to get ticket", err.Error())
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// TicketsPending lists the waiting queue for a desk, oldest first.
func (h *Handler) TicketsPending(c *gin.Context) {
	deskStr := c.Query("desk")
	if deskStr == "" {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "desk is required", nil)
		return
	}
	desk, err := strconv.Atoi(deskStr)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "desk must be an integer", nil)
		return
	}

	items, err := h.Store.PendingForDesk(c.Request.Context(), desk)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list pending tickets", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Board returns the latest called ticket per desk for the waiting-room
// display.
func (h *Handler) Board(c *gin.Context) {
	board, err := h.Store.Board(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load board", err.Error())
		return
	}
	c.JSON(http.StatusOK, board)
}

// ConfigView exposes feature flags and editable UI texts to the client pages.
func (h *Handler) ConfigView(c *gin.Context) {
	flags, err := h.Store.ListFlags(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load flags", err.Error())
		return
	}
	texts, err := h.Store.ListUITexts(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load ui texts", err.Error())
		return
	}

	flagMap := map[string]bool{}
	for _, f := range flags {
		flagMap[f.Key] = f.Enabled
	}
	ui := map[string]map[string]string{"ru": {}, "kz": {}, "en": {}}
	for _, t := range texts {
		if _, ok := ui[t.Lang]; !ok {
			ui[t.Lang] = map[string]string{}
		}
		ui[t.Lang][t.Key] = t.Text
	}

	c.JSON(http.StatusOK, gin.H{"flags": flagMap, "ui": ui})
}

// writeQueueError maps the queue engine's error taxonomy onto HTTP statuses.
func (h *Handler) writeQueueError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		writeError(c, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error(), nil)
	case errors.Is(err, service.ErrNotFound):
		writeError(c, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, service.ErrConflict):
		writeError(c, http.StatusConflict, "CONFLICT", err.Error(), nil)
	case errors.Is(err, service.ErrForbidden):
		writeError(c, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
	case errors.Is(err, service.ErrTransient):
		writeError(c, http.StatusServiceUnavailable, "TRANSIENT", err.Error(), nil)
	default:
		h.Logger.Error().Err(err).Msg("queue operation failed")
		writeError(c, http.StatusInternalServerError, "INTERNAL", "Internal error", nil)
	}
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
