package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JiBrAN123456/Company-subscription-service/internal/lifecycle"
	"github.com/JiBrAN123456/Company-subscription-service/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notifier dispatches expiry notifications for soon-to-expire subscriptions.
type Notifier struct {
	db      *gorm.DB
	email   EmailSender
	webhook WebhookClient
	baseURL string
}

// NewNotifier constructs a Notifier with injected transports.
func NewNotifier(conn *gorm.DB, email EmailSender, webhook WebhookClient, baseURL string) *Notifier {
	return &Notifier{db: conn, email: email, webhook: webhook, baseURL: baseURL}
}

// notificationContext carries the values rendered into notification bodies.
type notificationContext struct {
	CompanyName string
	PlanName    string
	EndDate     time.Time
	DaysLeft    int
	RenewalURL  string
}

// Scan walks active subscriptions and notifies those inside their company's
// expiry window. Per-item failures are logged and never abort the scan; the
// return value counts subscriptions with at least one delivered channel.
func (n *Notifier) Scan(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.AddDate(0, 0, n.maxWindowDays(ctx))
	var subs []models.Subscription
	if errFind := n.db.WithContext(ctx).
		Preload("Company").Preload("Plan").
		Where("status = ? AND end_date > ? AND end_date <= ?",
			models.SubscriptionStatusActive, now, cutoff).
		Find(&subs).Error; errFind != nil {
		return 0, fmt.Errorf("notify: scan subscriptions: %w", errFind)
	}

	sent := 0
	for i := range subs {
		sub := &subs[i]
		if !lifecycle.IsExpiringSoon(sub, now, sub.Company.NotificationDaysBefore) {
			continue
		}
		if n.NotifySubscription(ctx, sub, now) {
			sent++
		}
	}
	return sent, nil
}

// maxWindowDays returns the widest company notification window so the scan
// query selects a bounded slice of the table instead of every active row.
func (n *Notifier) maxWindowDays(ctx context.Context) int {
	var days int64
	if errScan := n.db.WithContext(ctx).Model(&models.Company{}).
		Select("COALESCE(MAX(notification_days_before), 0)").
		Scan(&days).Error; errScan != nil {
		log.WithError(errScan).Error("load notification windows failed")
	}
	if days < int64(lifecycle.DefaultExpiryWindowDays) {
		return lifecycle.DefaultExpiryWindowDays
	}
	return int(days)
}

// NotifySubscription attempts email and, when the company enabled it, a chat
// webhook post. Either channel failing is logged without affecting the other;
// the result is true when at least one channel delivered. Each attempt is
// recorded in the notification log.
func (n *Notifier) NotifySubscription(ctx context.Context, sub *models.Subscription, now time.Time) bool {
	notifCtx := notificationContext{
		CompanyName: sub.Company.Name,
		PlanName:    sub.Plan.Name,
		EndDate:     sub.EndDate,
		DaysLeft:    int(sub.EndDate.Sub(now).Hours() / 24),
		RenewalURL:  fmt.Sprintf("%s/v0/admin/subscriptions/%d/renew", n.baseURL, sub.ID),
	}

	emailOK := n.sendEmail(sub, notifCtx)
	webhookOK := n.sendWebhook(ctx, sub, notifCtx)

	succeeded := emailOK || webhookOK
	n.record(ctx, sub, now, emailOK, webhookOK, succeeded)
	return succeeded
}

// sendEmail delivers to the company's configured address plus active staff.
func (n *Notifier) sendEmail(sub *models.Subscription, notifCtx notificationContext) bool {
	if n.email == nil {
		return false
	}

	recipients := n.recipients(sub)
	if len(recipients) == 0 {
		return false
	}

	subject := fmt.Sprintf("Subscription Expiring Soon - %s", notifCtx.CompanyName)
	textBody := fmt.Sprintf(
		"The %s subscription for %s expires on %s (%d days left).\n\nRenew: %s\n",
		notifCtx.PlanName, notifCtx.CompanyName,
		notifCtx.EndDate.Format("2006-01-02"), notifCtx.DaysLeft, notifCtx.RenewalURL,
	)
	htmlBody := fmt.Sprintf(
		"<p>The <strong>%s</strong> subscription for <strong>%s</strong> expires on %s (%d days left).</p><p><a href=%q>Renew now</a></p>",
		notifCtx.PlanName, notifCtx.CompanyName,
		notifCtx.EndDate.Format("2006-01-02"), notifCtx.DaysLeft, notifCtx.RenewalURL,
	)

	if errSend := n.email.Send(recipients, subject, textBody, htmlBody); errSend != nil {
		log.WithError(errSend).WithField("company", sub.Company.Name).
			Error("expiry notification email failed")
		return false
	}
	log.WithField("company", sub.Company.Name).Info("sent expiry notification email")
	return true
}

// sendWebhook posts a one-line summary when the company enabled the channel.
func (n *Notifier) sendWebhook(ctx context.Context, sub *models.Subscription, notifCtx notificationContext) bool {
	if n.webhook == nil || !sub.Company.NotifyWebhook || sub.Company.WebhookURL == "" {
		return false
	}

	text := fmt.Sprintf(
		"Subscription expiring soon: %s (%s plan) ends %s, %d days left. Renew: %s",
		notifCtx.CompanyName, notifCtx.PlanName,
		notifCtx.EndDate.Format("2006-01-02"), notifCtx.DaysLeft, notifCtx.RenewalURL,
	)
	if errPost := n.webhook.Post(ctx, sub.Company.WebhookURL, text); errPost != nil {
		log.WithError(errPost).WithField("company", sub.Company.Name).
			Error("expiry notification webhook failed")
		return false
	}
	return true
}

// recipients unions the company notification address with active staff emails.
func (n *Notifier) recipients(sub *models.Subscription) []string {
	seen := map[string]bool{}
	var out []string

	if sub.Company.NotificationEmail != "" {
		seen[sub.Company.NotificationEmail] = true
		out = append(out, sub.Company.NotificationEmail)
	}

	var staff []models.User
	if errFind := n.db.Model(&models.User{}).
		Where("company_id = ? AND is_active = ? AND is_staff = ?", sub.CompanyID, true, true).
		Find(&staff).Error; errFind != nil {
		log.WithError(errFind).WithField("company", sub.Company.Name).
			Error("load staff recipients failed")
		return out
	}
	for _, u := range staff {
		if u.Email == "" || seen[u.Email] {
			continue
		}
		seen[u.Email] = true
		out = append(out, u.Email)
	}
	return out
}

// record appends a notification log row; logging failures are non-fatal.
func (n *Notifier) record(ctx context.Context, sub *models.Subscription, now time.Time, emailOK, webhookOK, succeeded bool) {
	channels, _ := json.Marshal(map[string]bool{"email": emailOK, "webhook": webhookOK})
	row := models.NotificationLog{
		SubscriptionID: sub.ID,
		CompanyID:      sub.CompanyID,
		SentAt:         now,
		Channels:       datatypes.JSON(channels),
		Succeeded:      succeeded,
	}
	if errCreate := n.db.WithContext(ctx).Create(&row).Error; errCreate != nil {
		log.WithError(errCreate).Error("write notification log failed")
	}
}
