package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/JiBrAN123456/Company-subscription-service/internal/models"
	"github.com/JiBrAN123456/Company-subscription-service/internal/seats"
	"github.com/JiBrAN123456/Company-subscription-service/internal/security"
	"gorm.io/gorm"
)

// UserHandler manages admin endpoints for company users.
type UserHandler struct {
	db *gorm.DB // Database handle for user records.
}

// NewUserHandler constructs a user handler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// createUserRequest captures the payload for creating a user.
type createUserRequest struct {
	CompanyID uint64 `json:"company_id"` // Owning company.
	Username  string `json:"username"`   // Unique login name.
	Email     string `json:"email"`      // Email address.
	Password  string `json:"password"`   // Initial password.
	FirstName string `json:"first_name"` // Given name.
	LastName  string `json:"last_name"`  // Family name.
	IsStaff   bool   `json:"is_staff"`   // Whether the user receives expiry notices.
}

// Create admits a new active user, subject to the company's seat limit.
func (h *UserHandler) Create(c *gin.Context) {
	var body createUserRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	username := strings.TrimSpace(body.Username)
	if body.CompanyID == 0 || username == "" || body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "company_id, username, and password are required"})
		return
	}

	var company models.Company
	if errFind := h.db.WithContext(c.Request.Context()).First(&company, body.CompanyID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "company not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	if errSeats := seats.Check(c.Request.Context(), h.db, body.CompanyID); errSeats != nil {
		renderError(c, errSeats)
		return
	}

	hash, errHash := security.HashPassword(body.Password)
	if errHash != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash password failed"})
		return
	}

	user := models.User{
		CompanyID: body.CompanyID,
		Username:  username,
		Email:     strings.TrimSpace(body.Email),
		Password:  hash,
		FirstName: strings.TrimSpace(body.FirstName),
		LastName:  strings.TrimSpace(body.LastName),
		IsActive:  true,
		IsStaff:   body.IsStaff,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&user).Error; errCreate != nil {
		if errors.Is(errCreate, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "username already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create user failed"})
		return
	}
	c.JSON(http.StatusCreated, h.formatUser(&user))
}

// List returns users, optionally filtered by company or active state.
func (h *UserHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.User{})

	if companyQ := strings.TrimSpace(c.Query("company_id")); companyQ != "" {
		companyID, errParse := strconv.ParseUint(companyQ, 10, 64)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company_id"})
			return
		}
		q = q.Where("company_id = ?", companyID)
	}
	if activeQ := strings.TrimSpace(c.Query("is_active")); activeQ != "" {
		q = q.Where("is_active = ?", activeQ == "true" || activeQ == "1")
	}

	var rows []models.User
	if errFind := q.Order("created_at DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list users failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, h.formatUser(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

// Get fetches a user by ID.
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&user, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, h.formatUser(&user))
}

// updateUserRequest captures optional fields for user updates.
type updateUserRequest struct {
	Email     *string `json:"email"`      // Optional email update.
	Password  *string `json:"password"`   // Optional password reset.
	FirstName *string `json:"first_name"` // Optional given name.
	LastName  *string `json:"last_name"`  // Optional family name.
	IsStaff   *bool   `json:"is_staff"`   // Optional staff flag.
}

// Update applies user field updates. Activation state changes go through the
// activate and deactivate endpoints so seat checks always run.
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var body updateUserRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{
		"updated_at": time.Now().UTC(),
	}
	if body.Email != nil {
		updates["email"] = strings.TrimSpace(*body.Email)
	}
	if body.Password != nil {
		if *body.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "password cannot be empty"})
			return
		}
		hash, errHash := security.HashPassword(*body.Password)
		if errHash != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "hash password failed"})
			return
		}
		updates["password"] = hash
	}
	if body.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*body.FirstName)
	}
	if body.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*body.LastName)
	}
	if body.IsStaff != nil {
		updates["is_staff"] = *body.IsStaff
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Activate reactivates a user, re-running the seat check so a reactivation
// cannot slip past the company's limit.
func (h *UserHandler) Activate(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&user, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if user.IsActive {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	if errSeats := seats.Check(c.Request.Context(), h.db, user.CompanyID); errSeats != nil {
		renderError(c, errSeats)
		return
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_active": true, "updated_at": time.Now().UTC()}).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Deactivate frees the user's seat.
func (h *UserHandler) Deactivate(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	res := h.db.WithContext(c.Request.Context()).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_active": false, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// formatUser converts a user model into a response payload.
func (h *UserHandler) formatUser(u *models.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"company_id": u.CompanyID,
		"username":   u.Username,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"is_active":  u.IsActive,
		"is_staff":   u.IsStaff,
		"created_at": u.CreatedAt,
		"updated_at": u.UpdatedAt,
	}
}
