package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	internaldb "github.com/JiBrAN123456/Company-subscription-service/internal/db"
	"github.com/JiBrAN123456/Company-subscription-service/internal/lifecycle"
	"github.com/JiBrAN123456/Company-subscription-service/internal/models"
	"gorm.io/gorm"
)

// CompanyHandler manages admin CRUD endpoints for companies.
type CompanyHandler struct {
	db *gorm.DB // Database handle for company records.
}

// NewCompanyHandler constructs a company handler.
func NewCompanyHandler(db *gorm.DB) *CompanyHandler {
	return &CompanyHandler{db: db}
}

// createCompanyRequest captures the payload for creating a company.
type createCompanyRequest struct {
	Name                   string `json:"name"`                     // Company name.
	NotificationEmail      string `json:"notification_email"`       // Billing contact email.
	NotifyWebhook          *bool  `json:"notify_webhook"`           // Optional webhook toggle.
	WebhookURL             string `json:"webhook_url"`              // Chat webhook endpoint.
	NotificationDaysBefore *int   `json:"notification_days_before"` // Optional expiry notice window.
}

// Create validates input and inserts a new company.
func (h *CompanyHandler) Create(c *gin.Context) {
	var body createCompanyRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	name := strings.TrimSpace(body.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	company := models.Company{
		Name:              name,
		Status:            models.CompanyStatusActive,
		NotificationEmail: strings.TrimSpace(body.NotificationEmail),
		WebhookURL:        strings.TrimSpace(body.WebhookURL),
	}
	if body.NotifyWebhook != nil {
		company.NotifyWebhook = *body.NotifyWebhook
	}
	company.NotificationDaysBefore = lifecycle.DefaultExpiryWindowDays
	if body.NotificationDaysBefore != nil && *body.NotificationDaysBefore > 0 {
		company.NotificationDaysBefore = *body.NotificationDaysBefore
	}

	if errCreate := h.db.WithContext(c.Request.Context()).Create(&company).Error; errCreate != nil {
		if errors.Is(errCreate, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "company name already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create company failed"})
		return
	}
	c.JSON(http.StatusCreated, h.formatCompany(&company))
}

// List returns companies, optionally filtered by status or name search.
func (h *CompanyHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.Company{})

	if statusQ := strings.TrimSpace(c.Query("status")); statusQ != "" {
		q = q.Where("status = ?", statusQ)
	}
	if search := strings.TrimSpace(c.Query("q")); search != "" {
		q = q.Where(internaldb.CaseInsensitiveLikeExpr(h.db, "name"),
			"%"+internaldb.NormalizeLikePattern(h.db, search)+"%")
	}

	var rows []models.Company
	if errFind := q.Order("created_at DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list companies failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, h.formatCompany(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"companies": out})
}

// Get fetches a company by ID.
func (h *CompanyHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var company models.Company
	if errFind := h.db.WithContext(c.Request.Context()).First(&company, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, h.formatCompany(&company))
}

// updateCompanyRequest captures optional fields for company updates.
type updateCompanyRequest struct {
	Name                   *string `json:"name"`                     // Optional name update.
	NotificationEmail      *string `json:"notification_email"`       // Optional contact email.
	NotifyWebhook          *bool   `json:"notify_webhook"`           // Optional webhook toggle.
	WebhookURL             *string `json:"webhook_url"`              // Optional webhook endpoint.
	NotificationDaysBefore *int    `json:"notification_days_before"` // Optional expiry notice window.
}

// Update validates and applies company field updates. Status changes go
// through the suspend and activate endpoints, never through here.
func (h *CompanyHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var body updateCompanyRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{
		"updated_at": time.Now().UTC(),
	}
	if body.Name != nil {
		n := strings.TrimSpace(*body.Name)
		if n == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name cannot be empty"})
			return
		}
		updates["name"] = n
	}
	if body.NotificationEmail != nil {
		updates["notification_email"] = strings.TrimSpace(*body.NotificationEmail)
	}
	if body.NotifyWebhook != nil {
		updates["notify_webhook"] = *body.NotifyWebhook
	}
	if body.WebhookURL != nil {
		updates["webhook_url"] = strings.TrimSpace(*body.WebhookURL)
	}
	if body.NotificationDaysBefore != nil {
		if *body.NotificationDaysBefore <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "notification_days_before must be positive"})
			return
		}
		updates["notification_days_before"] = *body.NotificationDaysBefore
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.Company{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "company name already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Suspend suspends a company and deactivates all of its users.
func (h *CompanyHandler) Suspend(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if errSuspend := lifecycle.SuspendCompany(c.Request.Context(), h.db, id); errSuspend != nil {
		renderError(c, errSuspend)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Activate restores a company without reactivating its users.
func (h *CompanyHandler) Activate(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if errActivate := lifecycle.ActivateCompany(c.Request.Context(), h.db, id); errActivate != nil {
		renderError(c, errActivate)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// formatCompany converts a company model into a response payload.
func (h *CompanyHandler) formatCompany(company *models.Company) gin.H {
	return gin.H{
		"id":                       company.ID,
		"name":                     company.Name,
		"status":                   company.Status,
		"notification_email":       company.NotificationEmail,
		"notify_webhook":           company.NotifyWebhook,
		"webhook_url":              company.WebhookURL,
		"notification_days_before": company.NotificationDaysBefore,
		"created_at":               company.CreatedAt,
		"updated_at":               company.UpdatedAt,
	}
}
