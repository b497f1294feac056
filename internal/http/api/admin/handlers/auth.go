package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/JiBrAN123456/Company-subscription-service/internal/config"
	"github.com/JiBrAN123456/Company-subscription-service/internal/models"
	"github.com/JiBrAN123456/Company-subscription-service/internal/security"
	"gorm.io/gorm"
)

// AuthHandler manages admin login endpoints.
type AuthHandler struct {
	db     *gorm.DB         // Database handle for admin records.
	jwtCfg config.JWTConfig // Token signing configuration.
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(db *gorm.DB, jwtCfg config.JWTConfig) *AuthHandler {
	return &AuthHandler{db: db, jwtCfg: jwtCfg}
}

// loginRequest captures admin credentials.
type loginRequest struct {
	Username string `json:"username"` // Admin login name.
	Password string `json:"password"` // Admin password.
	TOTPCode string `json:"totp_code"` // One-time code, required when MFA is enabled.
}

// Login verifies credentials and issues a JWT. Admins with TOTP enabled get a
// totp_required response until a valid code accompanies the credentials.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	username := strings.TrimSpace(body.Username)
	if username == "" || body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	var admin models.Admin
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("username = ?", username).First(&admin).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if !admin.Active || !security.CheckPassword(admin.Password, body.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if admin.TOTPSecret != "" {
		code := strings.TrimSpace(body.TOTPCode)
		if code == "" {
			c.JSON(http.StatusOK, gin.H{"totp_required": true})
			return
		}
		if !security.ValidateTOTP(admin.TOTPSecret, code) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid totp code"})
			return
		}
	}

	token, errToken := security.MakeAdminToken(h.jwtCfg.Secret, admin.ID, h.jwtCfg.Expiry)
	if errToken != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"username": admin.Username,
	})
}
