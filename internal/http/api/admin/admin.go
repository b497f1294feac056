package admin

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/JiBrAN123456/Company-subscription-service/internal/config"
	handlers "github.com/JiBrAN123456/Company-subscription-service/internal/http/api/admin/handlers"
	"github.com/JiBrAN123456/Company-subscription-service/internal/models"
	"github.com/JiBrAN123456/Company-subscription-service/internal/payments"
	"github.com/JiBrAN123456/Company-subscription-service/internal/ratelimit"
	"github.com/JiBrAN123456/Company-subscription-service/internal/security"
	"gorm.io/gorm"
)

// RegisterAdminRoutes registers admin routes, middleware, and handlers.
func RegisterAdminRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig, processor *payments.Processor, limiter *ratelimit.Manager) {
	if r == nil || db == nil {
		return
	}

	healthHandler := handlers.NewHealthHandler(db)
	r.GET("/healthz", healthHandler.Healthz)

	adminGroup := r.Group("/v0/admin")

	authHandler := handlers.NewAuthHandler(db, jwtCfg)
	adminGroup.POST("/login", authHandler.Login)

	authed := adminGroup.Group("")
	authed.Use(adminAuthMiddleware(db, jwtCfg))
	authed.Use(adminRateLimitMiddleware(limiter))

	mfaHandler := handlers.NewMFAHandler(db)
	authed.GET("/mfa/status", mfaHandler.Status)
	authed.POST("/mfa/totp/prepare", mfaHandler.PrepareTOTP)
	authed.POST("/mfa/totp/confirm", mfaHandler.ConfirmTOTP)
	authed.POST("/mfa/totp/disable", mfaHandler.DisableTOTP)

	companyHandler := handlers.NewCompanyHandler(db)
	authed.POST("/companies", companyHandler.Create)
	authed.GET("/companies", companyHandler.List)
	authed.GET("/companies/:id", companyHandler.Get)
	authed.PUT("/companies/:id", companyHandler.Update)
	authed.POST("/companies/:id/suspend", companyHandler.Suspend)
	authed.POST("/companies/:id/activate", companyHandler.Activate)

	planHandler := handlers.NewPlanHandler(db)
	authed.POST("/plans", planHandler.Create)
	authed.GET("/plans", planHandler.List)
	authed.GET("/plans/:id", planHandler.Get)
	authed.POST("/plans/:id/deactivate", planHandler.Deactivate)

	subscriptionHandler := handlers.NewSubscriptionHandler(db)
	authed.POST("/subscriptions", subscriptionHandler.Create)
	authed.GET("/subscriptions", subscriptionHandler.List)
	authed.GET("/subscriptions/:id", subscriptionHandler.Get)
	authed.POST("/subscriptions/:id/suspend", subscriptionHandler.Suspend)
	authed.POST("/subscriptions/:id/expire", subscriptionHandler.Expire)
	authed.POST("/subscriptions/:id/renew", subscriptionHandler.Renew)

	paymentHandler := handlers.NewPaymentHandler(db, processor)
	authed.POST("/payments", paymentHandler.Create)
	authed.GET("/payments", paymentHandler.List)
	authed.GET("/payments/:id", paymentHandler.Get)
	authed.POST("/payments/:id/process", paymentHandler.Process)
	authed.POST("/payments/:id/refund", paymentHandler.Refund)

	userHandler := handlers.NewUserHandler(db)
	authed.POST("/users", userHandler.Create)
	authed.GET("/users", userHandler.List)
	authed.GET("/users/:id", userHandler.Get)
	authed.PUT("/users/:id", userHandler.Update)
	authed.POST("/users/:id/activate", userHandler.Activate)
	authed.POST("/users/:id/deactivate", userHandler.Deactivate)

	notificationHandler := handlers.NewNotificationLogHandler(db)
	authed.GET("/notification-logs", notificationHandler.List)

	settingHandler := handlers.NewSettingHandler(db)
	authed.GET("/settings", settingHandler.List)
	authed.GET("/settings/:key", settingHandler.Get)
	authed.PUT("/settings/:key", settingHandler.Update)
	authed.DELETE("/settings/:key", settingHandler.Delete)
}

// adminAuthMiddleware validates admin JWTs and loads admin context.
func adminAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errJWT := security.ParseAdminToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var admin models.Admin
		if errFind := db.WithContext(c.Request.Context()).First(&admin, claims.AdminID).Error; errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin not found"})
			return
		}
		if !admin.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin disabled"})
			return
		}

		c.Set("adminID", admin.ID)
		c.Set("adminUsername", admin.Username)
		c.Next()
	}
}

// adminRateLimitMiddleware throttles authenticated admins per the settings
// limit. A nil limiter disables throttling.
func adminRateLimitMiddleware(limiter *ratelimit.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		adminID, ok := c.Get("adminID")
		if !ok {
			c.Next()
			return
		}
		id, ok := adminID.(uint64)
		if !ok {
			c.Next()
			return
		}
		result, errAllow := limiter.Allow(c.Request.Context(), ratelimit.AdminKey(id))
		if errAllow != nil {
			c.Next()
			return
		}
		if !result.Allowed {
			c.Header("Retry-After", result.Reset.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
