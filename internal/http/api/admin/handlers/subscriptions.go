package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/JiBrAN123456/Company-subscription-service/internal/lifecycle"
	"github.com/JiBrAN123456/Company-subscription-service/internal/models"
	"gorm.io/gorm"
)

// SubscriptionHandler manages admin endpoints for subscriptions.
type SubscriptionHandler struct {
	db *gorm.DB // Database handle for subscription records.
}

// NewSubscriptionHandler constructs a subscription handler.
func NewSubscriptionHandler(db *gorm.DB) *SubscriptionHandler {
	return &SubscriptionHandler{db: db}
}

// createSubscriptionRequest captures the payload for activating a subscription.
type createSubscriptionRequest struct {
	CompanyID uint64 `json:"company_id"` // Company taking the subscription.
	PlanID    uint64 `json:"plan_id"`    // Plan being purchased.
}

// Create activates a new subscription for a company.
func (h *SubscriptionHandler) Create(c *gin.Context) {
	var body createSubscriptionRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.CompanyID == 0 || body.PlanID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "company_id and plan_id are required"})
		return
	}

	sub, errCreate := lifecycle.Create(c.Request.Context(), h.db, body.CompanyID, body.PlanID, time.Now().UTC())
	if errCreate != nil {
		renderError(c, errCreate)
		return
	}
	c.JSON(http.StatusCreated, h.formatSubscription(sub, time.Now().UTC()))
}

// List returns subscriptions, optionally filtered by company or status.
func (h *SubscriptionHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.Subscription{})

	if companyQ := strings.TrimSpace(c.Query("company_id")); companyQ != "" {
		companyID, errParse := strconv.ParseUint(companyQ, 10, 64)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company_id"})
			return
		}
		q = q.Where("company_id = ?", companyID)
	}
	if statusQ := strings.TrimSpace(c.Query("status")); statusQ != "" {
		q = q.Where("status = ?", statusQ)
	}

	var rows []models.Subscription
	if errFind := q.Order("created_at DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list subscriptions failed"})
		return
	}
	now := time.Now().UTC()
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, h.formatSubscription(&rows[i], now))
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": out})
}

// Get fetches a subscription with its payments.
func (h *SubscriptionHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var sub models.Subscription
	if errFind := h.db.WithContext(c.Request.Context()).
		Preload("Payments").First(&sub, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	now := time.Now().UTC()
	payload := h.formatSubscription(&sub, now)
	payments := make([]gin.H, 0, len(sub.Payments))
	for i := range sub.Payments {
		payments = append(payments, formatPayment(&sub.Payments[i]))
	}
	payload["payments"] = payments
	c.JSON(http.StatusOK, payload)
}

// Suspend pauses a subscription and deactivates the company's users.
func (h *SubscriptionHandler) Suspend(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if errSuspend := lifecycle.Suspend(c.Request.Context(), h.db, id); errSuspend != nil {
		renderError(c, errSuspend)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Expire marks a subscription expired and deactivates the company's users.
func (h *SubscriptionHandler) Expire(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if errExpire := lifecycle.Expire(c.Request.Context(), h.db, id); errExpire != nil {
		renderError(c, errExpire)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Renew retires the company's current subscription and opens a replacement at
// today's plan terms. The response carries the new subscription.
func (h *SubscriptionHandler) Renew(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	renewed, errRenew := lifecycle.Renew(c.Request.Context(), h.db, id, time.Now().UTC())
	if errRenew != nil {
		renderError(c, errRenew)
		return
	}
	c.JSON(http.StatusCreated, h.formatSubscription(renewed, time.Now().UTC()))
}

// formatSubscription converts a subscription model into a response payload.
func (h *SubscriptionHandler) formatSubscription(sub *models.Subscription, now time.Time) gin.H {
	return gin.H{
		"id":             sub.ID,
		"company_id":     sub.CompanyID,
		"plan_id":        sub.PlanID,
		"status":         sub.Status,
		"start_date":     sub.StartDate,
		"end_date":       sub.EndDate,
		"max_users":      sub.MaxUsers,
		"cost_at_signup": sub.CostAtSignup,
		"is_active":      lifecycle.IsActive(sub, now),
		"created_at":     sub.CreatedAt,
		"updated_at":     sub.UpdatedAt,
	}
}
