package app

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/JiBrAN123456/Company-subscription-service/internal/models"
	"github.com/JiBrAN123456/Company-subscription-service/internal/security"
	internalsettings "github.com/JiBrAN123456/Company-subscription-service/internal/settings"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// HasAdminInitialized reports whether any admin account exists.
func HasAdminInitialized(conn *gorm.DB) (bool, error) {
	var count int64
	if errCount := conn.Model(&models.Admin{}).Count(&count).Error; errCount != nil {
		return false, fmt.Errorf("count admins: %w", errCount)
	}
	return count > 0, nil
}

// CreateAdmin creates an admin account and seeds the site name setting when
// it is still unset.
func CreateAdmin(conn *gorm.DB, username, password string) error {
	if conn == nil {
		return fmt.Errorf("open database: nil connection")
	}

	hashedPassword, errHash := security.HashPassword(password)
	if errHash != nil {
		return fmt.Errorf("hash password: %w", errHash)
	}

	now := time.Now().UTC()
	admin := models.Admin{
		Username:  username,
		Password:  hashedPassword,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errCreate := conn.Create(&admin).Error; errCreate != nil {
		return fmt.Errorf("create admin: %w", errCreate)
	}

	if _, ok := internalsettings.DBConfigValue(internalsettings.SiteNameKey); !ok {
		if errSite := internalsettings.Set(conn, internalsettings.SiteNameKey, internalsettings.DefaultSiteName); errSite != nil {
			return fmt.Errorf("seed site name: %w", errSite)
		}
	}
	return nil
}

// bootstrapAdmin creates a first admin with a generated password when none
// exists yet. The password is printed to the log exactly once.
func bootstrapAdmin(conn *gorm.DB) error {
	initialized, errInit := HasAdminInitialized(conn)
	if errInit != nil {
		return errInit
	}
	if initialized {
		return nil
	}

	buf := make([]byte, 16)
	if _, errRead := rand.Read(buf); errRead != nil {
		return fmt.Errorf("generate admin password: %w", errRead)
	}
	password := hex.EncodeToString(buf)

	if errCreate := CreateAdmin(conn, "admin", password); errCreate != nil {
		return errCreate
	}
	log.Infof("created initial admin account: username=admin password=%s", password)
	return nil
}
