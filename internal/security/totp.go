package security

import (
	"strings"

	"github.com/pquerna/otp/totp"
)

// GenerateTOTPSecret creates a new TOTP secret for an admin account.
func GenerateTOTPSecret(issuer, accountName string) (secret, url string, err error) {
	key, errGenerate := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: accountName,
	})
	if errGenerate != nil {
		return "", "", errGenerate
	}
	return key.Secret(), key.URL(), nil
}

// ValidateTOTP reports whether the code matches the stored secret.
func ValidateTOTP(secret, code string) bool {
	secret = strings.TrimSpace(secret)
	code = strings.TrimSpace(code)
	if secret == "" || code == "" {
		return false
	}
	return totp.Validate(code, secret)
}
