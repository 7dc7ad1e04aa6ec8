package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/courtrss/app/database"
	"github.com/lysyi3m/courtrss/app/tasks"
)

func NewHandler(scheduler tasks.SchedulerInterface, journal database.NotificationRepository, version string) *Handler {
	return &Handler{
		scheduler: scheduler,
		journal:   journal,
		version:   version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	stats := h.scheduler.Stats()

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"state":     stats.State,
		"version":   h.version,
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := h.scheduler.Stats()

	response := gin.H{
		"scheduler": stats,
		"journal": gin.H{
			"enabled": h.journal != nil,
		},
	}

	if h.journal != nil {
		if count, err := h.journal.Count(c.Request.Context()); err == nil {
			response["journal"] = gin.H{"enabled": true, "notifications": count}
		} else {
			slog.Error("Database error", "operation", "count_notifications", "error", err)
		}
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) APIListNotifications(c *gin.Context) {
	if h.journal == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification journal is disabled"})
		return
	}

	limit := database.DefaultListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	records, err := h.journal.List(c.Request.Context(), limit)
	if err != nil {
		slog.Error("Database error", "operation", "list_notifications", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if records == nil {
		records = []database.NotificationRecord{}
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": records,
		"total":         len(records),
	})
}
