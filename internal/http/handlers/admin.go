package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const adminLogsCap = 20000

func (h *Handler) AdminLogsCSV(c *gin.Context) {
	operator := strings.TrimSpace(c.Query("operator"))
	var desk *int
	if v := strings.TrimSpace(c.Query("desk")); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "desk must be an integer", nil)
			return
		}
		desk = &d
	}

	logs, err := h.Store.ListOperatorLogs(c.Request.Context(), operator, desk, adminLogsCap)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load logs", err.Error())
		return
	}
	writeLogsCSV(c, logs, "operators_logs.csv")
}

func (h *Handler) FlagsList(c *gin.Context) {
	flags, err := h.Store.ListFlags(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load flags", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": flags})
}

type FlagSetRequest struct {
	Key     string `json:"key" validate:"required"`
	Enabled bool   `json:"enabled"`
}

func (h *Handler) FlagSet(c *gin.Context) {
	var req FlagSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	if err := h.Store.SetFlag(c.Request.Context(), req.Key, req.Enabled); err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to set flag", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "key": req.Key, "enabled": req.Enabled})
}
