package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/JiBrAN123456/Company-subscription-service/internal/models"
	"github.com/JiBrAN123456/Company-subscription-service/internal/payments"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentHandler manages admin endpoints for payments.
type PaymentHandler struct {
	db        *gorm.DB            // Database handle for payment records.
	processor *payments.Processor // Gateway-backed payment processor.
}

// NewPaymentHandler constructs a payment handler.
func NewPaymentHandler(db *gorm.DB, processor *payments.Processor) *PaymentHandler {
	return &PaymentHandler{db: db, processor: processor}
}

// createPaymentRequest captures the payload for recording a payment.
type createPaymentRequest struct {
	SubscriptionID uint64          `json:"subscription_id"` // Subscription being paid.
	Amount         decimal.Decimal `json:"amount"`          // Tendered amount.
	Method         string          `json:"method"`          // Payment method.
}

// Create records a pending payment against a subscription.
func (h *PaymentHandler) Create(c *gin.Context) {
	var body createPaymentRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.SubscriptionID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subscription_id is required"})
		return
	}

	method := models.PaymentMethod(strings.TrimSpace(body.Method))
	switch method {
	case models.PaymentMethodCreditCard, models.PaymentMethodBankTransfer,
		models.PaymentMethodCheck, models.PaymentMethodCash, models.PaymentMethodOther:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment method"})
		return
	}

	payment, errCreate := payments.Create(c.Request.Context(), h.db,
		body.SubscriptionID, body.Amount, method, time.Now().UTC())
	if errCreate != nil {
		renderError(c, errCreate)
		return
	}
	c.JSON(http.StatusCreated, formatPayment(payment))
}

// List returns payments, optionally filtered by subscription or status.
func (h *PaymentHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.Payment{})

	if subQ := strings.TrimSpace(c.Query("subscription_id")); subQ != "" {
		subID, errParse := strconv.ParseUint(subQ, 10, 64)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subscription_id"})
			return
		}
		q = q.Where("subscription_id = ?", subID)
	}
	if statusQ := strings.TrimSpace(c.Query("status")); statusQ != "" {
		q = q.Where("status = ?", statusQ)
	}

	var rows []models.Payment
	if errFind := q.Order("created_at DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list payments failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, formatPayment(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"payments": out})
}

// Get fetches a payment by ID.
func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var payment models.Payment
	if errFind := h.db.WithContext(c.Request.Context()).First(&payment, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, formatPayment(&payment))
}

// Process runs a pending payment through validation and the gateway. A
// completed payment extends the subscription by one billing cycle.
func (h *PaymentHandler) Process(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	payment, errProcess := h.processor.Process(c.Request.Context(), h.db, id, time.Now().UTC())
	if errProcess != nil {
		renderError(c, errProcess)
		return
	}
	c.JSON(http.StatusOK, formatPayment(payment))
}

// Refund reverses a completed payment.
func (h *PaymentHandler) Refund(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	payment, errRefund := payments.Refund(c.Request.Context(), h.db, id)
	if errRefund != nil {
		renderError(c, errRefund)
		return
	}
	c.JSON(http.StatusOK, formatPayment(payment))
}

// formatPayment converts a payment model into a response payload.
func formatPayment(p *models.Payment) gin.H {
	return gin.H{
		"id":              p.ID,
		"subscription_id": p.SubscriptionID,
		"amount":          p.Amount,
		"method":          p.Method,
		"status":          p.Status,
		"payment_date":    p.PaymentDate,
		"notes":           p.Notes,
		"created_at":      p.CreatedAt,
		"updated_at":      p.UpdatedAt,
	}
}
