package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/JiBrAN123456/Company-subscription-service/internal/config"
	"github.com/JiBrAN123456/Company-subscription-service/internal/db"
	adminapi "github.com/JiBrAN123456/Company-subscription-service/internal/http/api/admin"
	"github.com/JiBrAN123456/Company-subscription-service/internal/notify"
	"github.com/JiBrAN123456/Company-subscription-service/internal/payments"
	"github.com/JiBrAN123456/Company-subscription-service/internal/ratelimit"
	internalsettings "github.com/JiBrAN123456/Company-subscription-service/internal/settings"
)

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	conn, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	return db.Migrate(conn)
}

// RunServer boots the billing API server.
func RunServer(ctx context.Context, cfg config.AppConfig, port int) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)

	conn, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	internalsettings.Bind(conn)
	if errBootstrap := bootstrapAdmin(conn); errBootstrap != nil {
		return errBootstrap
	}

	jwtCfg, _ := config.LoadJWTConfig(configPath)
	if strings.TrimSpace(jwtCfg.Secret) == "" {
		return errors.New("jwt secret is not configured")
	}

	stripeCfg, _ := config.LoadStripeConfig(configPath)
	var gateway payments.Gateway
	if strings.TrimSpace(stripeCfg.APIKey) != "" {
		gateway = payments.NewStripeGateway(stripeCfg.APIKey)
	} else {
		log.Warn("stripe api key not configured, card payments will fail")
	}
	processor := payments.NewProcessor(gateway, stripeCfg.Currency)

	limiter := ratelimit.NewManager(nil, nil)

	engine := gin.New()
	engine.Use(gin.Recovery())
	adminapi.RegisterAdminRoutes(engine, conn, jwtCfg, processor, limiter)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	log.Infof("billing server listening on :%d", port)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case errServe := <-errCh:
		if errors.Is(errServe, http.ErrServerClosed) {
			return nil
		}
		return errServe
	}
}

// RunNotifier runs the expiry notification scanner, once or on a cron
// schedule from config.
func RunNotifier(ctx context.Context, cfg config.AppConfig, runOnce bool) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)

	conn, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	internalsettings.Bind(conn)

	notifierCfg, _ := config.LoadNotifierConfig(configPath)
	smtpCfg, _ := config.LoadSMTPConfig(configPath)

	var email notify.EmailSender
	if strings.TrimSpace(smtpCfg.Host) != "" {
		email = notify.NewSMTPSender(smtpCfg)
	} else {
		log.Warn("smtp host not configured, email notifications disabled")
	}

	notifier := notify.NewNotifier(conn, email, notify.NewHTTPWebhookClient(), notifierCfg.BaseURL)

	scan := func() {
		sent, errScan := notifier.Scan(ctx, time.Now().UTC())
		if errScan != nil {
			log.WithError(errScan).Error("expiry scan failed")
			return
		}
		log.WithField("sent", sent).Info("expiry scan completed")
	}

	if runOnce {
		scan()
		return nil
	}

	scheduler := cron.New()
	if _, errAdd := scheduler.AddFunc(notifierCfg.Schedule, scan); errAdd != nil {
		return fmt.Errorf("invalid notifier schedule %q: %w", notifierCfg.Schedule, errAdd)
	}
	scheduler.Start()
	log.Infof("expiry notifier running on schedule %q", notifierCfg.Schedule)

	<-ctx.Done()
	stopCtx := scheduler.Stop()
	<-stopCtx.Done()
	return nil
}

// openDatabase resolves the DSN and opens a connection.
func openDatabase(cfg config.AppConfig) (*gorm.DB, error) {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, errDSN := config.LoadDatabaseDSN(configPath)
	if errDSN != nil {
		return nil, errDSN
	}
	return db.Open(dsn)
}
