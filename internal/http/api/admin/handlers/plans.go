package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/JiBrAN123456/Company-subscription-service/internal/catalog"
	"github.com/JiBrAN123456/Company-subscription-service/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PlanHandler manages admin endpoints for the plan catalog.
type PlanHandler struct {
	db *gorm.DB // Database handle for plan records.
}

// NewPlanHandler constructs a plan handler.
func NewPlanHandler(db *gorm.DB) *PlanHandler {
	return &PlanHandler{db: db}
}

// createPlanRequest captures the payload for creating a plan.
type createPlanRequest struct {
	Name         string          `json:"name"`          // Plan name.
	BillingCycle string          `json:"billing_cycle"` // monthly, quarterly, or yearly.
	PricingModel string          `json:"pricing_model"` // flat_fee or per_user.
	Cost         decimal.Decimal `json:"cost"`          // Cost per billing cycle.
	UserLimit    *uint           `json:"user_limit"`    // Seat limit, required for per_user.
}

// Create validates input and inserts a new plan.
func (h *PlanHandler) Create(c *gin.Context) {
	var body createPlanRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	plan, errCreate := catalog.Create(c.Request.Context(), h.db, catalog.Definition{
		Name:         body.Name,
		BillingCycle: models.BillingCycle(strings.TrimSpace(body.BillingCycle)),
		PricingModel: models.PricingModel(strings.TrimSpace(body.PricingModel)),
		Cost:         body.Cost,
		UserLimit:    body.UserLimit,
	})
	if errCreate != nil {
		renderError(c, errCreate)
		return
	}
	c.JSON(http.StatusCreated, h.formatPlan(plan))
}

// List returns plans, optionally restricted to active ones.
func (h *PlanHandler) List(c *gin.Context) {
	activeQ := strings.TrimSpace(c.Query("active"))
	activeOnly := activeQ == "true" || activeQ == "1"

	rows, errList := catalog.List(c.Request.Context(), h.db, activeOnly)
	if errList != nil {
		renderError(c, errList)
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, h.formatPlan(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"plans": out})
}

// Get fetches a plan by ID.
func (h *PlanHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	plan, errGet := catalog.Get(c.Request.Context(), h.db, id)
	if errGet != nil {
		renderError(c, errGet)
		return
	}
	c.JSON(http.StatusOK, h.formatPlan(plan))
}

// Deactivate marks a plan as no longer subscribable.
func (h *PlanHandler) Deactivate(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if errDeactivate := catalog.Deactivate(c.Request.Context(), h.db, id); errDeactivate != nil {
		renderError(c, errDeactivate)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// formatPlan converts a plan model into a response payload.
func (h *PlanHandler) formatPlan(p *models.SubscriptionPlan) gin.H {
	return gin.H{
		"id":            p.ID,
		"name":          p.Name,
		"billing_cycle": p.BillingCycle,
		"pricing_model": p.PricingModel,
		"cost":          p.Cost,
		"user_limit":    p.UserLimit,
		"is_active":     p.IsActive,
		"created_at":    p.CreatedAt,
		"updated_at":    p.UpdatedAt,
	}
}
