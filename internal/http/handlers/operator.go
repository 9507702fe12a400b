package handlers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deskline/backend/internal/http/middleware"
	"github.com/deskline/backend/internal/labels"
	"github.com/deskline/backend/internal/models"
	"github.com/deskline/backend/internal/service"
)

func operatorFromContext(c *gin.Context) (string, int) {
	return c.GetString(middleware.CtxOperator), c.GetInt(middleware.CtxDesk)
}

// @Summary Call next ticket
// @Description Promote the oldest pending ticket at the operator's desk.
// @Tags operator
// @Produce json
// @Success 200 {object} models.Ticket
// @Failure 404 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /api/operator/call-next [post]
func (h *Handler) OperatorCallNext(c *gin.Context) {
	actor, desk := operatorFromContext(c)

	ticket, err := h.Queue.CallNext(c.Request.Context(), desk, actor)
	if err != nil {
		h.writeQueueError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "ticket": ticket})
}

func (h *Handler) OperatorSetStatus(c *gin.Context) {
	actor, desk := operatorFromContext(c)
	ticketID := c.Param("id")
	newStatus := c.Param("status")

	ticket, old, err := h.Queue.SetStatus(c.Request.Context(), ticketID, desk, newStatus, actor)
	if err != nil {
		h.writeQueueError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "ticket": ticket.Number, "from": old, "to": ticket.Status})
}

// OperatorQueue is the polling endpoint behind the dashboard autorefresh:
// the currently served ticket plus the waiting queue, with localized labels.
func (h *Handler) OperatorQueue(c *gin.Context) {
	actor, desk := operatorFromContext(c)
	lang := labels.Normalize(c.Query("lang"))

	view, err := h.Queue.QueueView(c.Request.Context(), desk, actor, lang)
	if err != nil {
		h.writeQueueError(c, err)
		return
	}

	pending := make([]gin.H, 0, len(view.Pending))
	for _, t := range view.Pending {
		pending = append(pending, ticketJSON(t, lang))
	}
	var current gin.H
	if view.Current != nil {
		current = ticketJSON(*view.Current, lang)
	}

	c.JSON(http.StatusOK, gin.H{
		"lang":    lang,
		"desk":    desk,
		"current": current,
		"pending": pending,
	})
}

func ticketJSON(t models.Ticket, lang string) gin.H {
	return gin.H{
		"id":             t.ID,
		"number":         t.Number,
		"service":        t.Service,
		"service_label":  labels.Service(t.Service, lang),
		"category":       t.Category,
		"category_label": labels.Category(t.Category, lang),
		"fio":            t.FIO,
		"phone":          t.Phone,
		"status":         t.Status,
		"status_label":   labels.Status(t.Status, lang),
		"desk":           t.Desk,
		"created_at":     t.CreatedAt.Format(time.RFC3339),
	}
}

const operatorLogsCap = 5000

func (h *Handler) OperatorLogsCSV(c *gin.Context) {
	actor, desk := operatorFromContext(c)

	if !h.Queue.Flags.IsEnabled(c.Request.Context(), service.FlagDownloadLogs, true) {
		writeError(c, http.StatusForbidden, "FORBIDDEN", "Log download disabled", nil)
		return
	}

	logs, err := h.Store.ListOperatorLogs(c.Request.Context(), actor, nil, operatorLogsCap)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load logs", err.Error())
		return
	}

	err = h.Store.InsertOperatorLog(c.Request.Context(), models.OperatorLog{
		Operator: actor,
		Desk:     desk,
		Action:   "DOWNLOAD_LOGS",
		Meta:     map[string]any{"scope": "self"},
	})
	if err != nil {
		h.Logger.Error().Err(err).Msg("audit write failed")
	}

	writeLogsCSV(c, logs, fmt.Sprintf("operator_%s_logs.csv", actor))
}

func writeLogsCSV(c *gin.Context, logs []models.OperatorLog, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"created_at", "operator", "desk", "action", "ticket_number", "meta"})
	for _, row := range logs {
		number := ""
		if row.TicketNumber != nil {
			number = *row.TicketNumber
		}
		meta, _ := json.Marshal(row.Meta)
		_ = w.Write([]string{
			row.CreatedAt.Format("2006-01-02 15:04:05"),
			row.Operator,
			fmt.Sprint(row.Desk),
			row.Action,
			number,
			string(meta),
		})
	}
	w.Flush()
}
