package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/JiBrAN123456/Company-subscription-service/internal/models"
	"gorm.io/gorm"
)

// NotificationLogHandler exposes the expiry notification audit trail.
type NotificationLogHandler struct {
	db *gorm.DB // Database handle for notification log records.
}

// NewNotificationLogHandler constructs a notification log handler.
func NewNotificationLogHandler(db *gorm.DB) *NotificationLogHandler {
	return &NotificationLogHandler{db: db}
}

// List returns notification log entries, newest first, optionally filtered by
// company or subscription.
func (h *NotificationLogHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.NotificationLog{})

	if companyQ := strings.TrimSpace(c.Query("company_id")); companyQ != "" {
		companyID, errParse := strconv.ParseUint(companyQ, 10, 64)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company_id"})
			return
		}
		q = q.Where("company_id = ?", companyID)
	}
	if subQ := strings.TrimSpace(c.Query("subscription_id")); subQ != "" {
		subID, errParse := strconv.ParseUint(subQ, 10, 64)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subscription_id"})
			return
		}
		q = q.Where("subscription_id = ?", subID)
	}

	var rows []models.NotificationLog
	if errFind := q.Order("sent_at DESC").Limit(200).Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list notification logs failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, h.formatLog(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"notification_logs": out})
}

// formatLog converts a notification log model into a response payload.
func (h *NotificationLogHandler) formatLog(l *models.NotificationLog) gin.H {
	var channels map[string]bool
	if len(l.Channels) > 0 {
		_ = json.Unmarshal(l.Channels, &channels)
	}
	return gin.H{
		"id":              l.ID,
		"subscription_id": l.SubscriptionID,
		"company_id":      l.CompanyID,
		"sent_at":         l.SentAt,
		"channels":        channels,
		"succeeded":       l.Succeeded,
	}
}
