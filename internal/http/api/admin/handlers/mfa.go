package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/JiBrAN123456/Company-subscription-service/internal/models"
	"github.com/JiBrAN123456/Company-subscription-service/internal/security"
	"gorm.io/gorm"
)

const totpIssuer = "Company Subscription Service"

// MFAHandler manages TOTP enrollment for the authenticated admin.
type MFAHandler struct {
	db *gorm.DB // Database handle for admin records.
}

// NewMFAHandler constructs an MFA handler.
func NewMFAHandler(db *gorm.DB) *MFAHandler {
	return &MFAHandler{db: db}
}

// currentAdmin loads the admin bound to the request by the auth middleware.
func (h *MFAHandler) currentAdmin(c *gin.Context) (*models.Admin, bool) {
	adminID, ok := c.Get("adminID")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return nil, false
	}
	id, ok := adminID.(uint64)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return nil, false
	}
	var admin models.Admin
	if errFind := h.db.WithContext(c.Request.Context()).First(&admin, id).Error; errFind != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "admin not found"})
		return nil, false
	}
	return &admin, true
}

// Status reports whether TOTP is enabled for the current admin.
func (h *MFAHandler) Status(c *gin.Context) {
	admin, ok := h.currentAdmin(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"totp_enabled": admin.TOTPSecret != ""})
}

// PrepareTOTP generates a candidate secret and provisioning URL. The secret is
// not stored until ConfirmTOTP proves the admin enrolled it.
func (h *MFAHandler) PrepareTOTP(c *gin.Context) {
	admin, ok := h.currentAdmin(c)
	if !ok {
		return
	}
	if admin.TOTPSecret != "" {
		c.JSON(http.StatusConflict, gin.H{"error": "totp already enabled"})
		return
	}
	secret, url, errGen := security.GenerateTOTPSecret(totpIssuer, admin.Username)
	if errGen != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "generate secret failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"secret": secret, "url": url})
}

// confirmTOTPRequest carries the candidate secret plus a proving code.
type confirmTOTPRequest struct {
	Secret string `json:"secret"` // Secret returned by PrepareTOTP.
	Code   string `json:"code"`   // Current TOTP code for the secret.
}

// ConfirmTOTP verifies the code against the candidate secret and enables MFA.
func (h *MFAHandler) ConfirmTOTP(c *gin.Context) {
	admin, ok := h.currentAdmin(c)
	if !ok {
		return
	}
	var body confirmTOTPRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	secret := strings.TrimSpace(body.Secret)
	code := strings.TrimSpace(body.Code)
	if secret == "" || code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "secret and code are required"})
		return
	}
	if !security.ValidateTOTP(secret, code) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid totp code"})
		return
	}
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.Admin{}).
		Where("id = ?", admin.ID).
		Updates(map[string]any{"totp_secret": secret, "updated_at": time.Now().UTC()}).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// DisableTOTP turns MFA off for the current admin.
func (h *MFAHandler) DisableTOTP(c *gin.Context) {
	admin, ok := h.currentAdmin(c)
	if !ok {
		return
	}
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.Admin{}).
		Where("id = ?", admin.ID).
		Updates(map[string]any{"totp_secret": "", "updated_at": time.Now().UTC()}).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
