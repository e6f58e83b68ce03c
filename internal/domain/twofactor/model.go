package twofactor

import (
	"fmt"
	"strings"
	"time"
)

type MethodType string

const (
	MethodSMS           MethodType = "sms"
	MethodEmail         MethodType = "email"
	MethodAuthenticator MethodType = "authenticator"
)

func ParseMethodType(s string) (MethodType, error) {
	switch m := MethodType(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodSMS, MethodEmail, MethodAuthenticator:
		return m, nil
	default:
		return "", fmt.Errorf("unknown 2fa method %q", s)
	}
}

// UsesOneTimeCode is true for methods that deliver a code out of band.
func (m MethodType) UsesOneTimeCode() bool {
	return m == MethodSMS || m == MethodEmail
}

// Method is one row of user_two_factor. Exactly one row exists per
// (user, method); requesting a new code overwrites the previous one.
// The credential columns are never read directly, use Credential.
type Method struct {
	ID         uint       `gorm:"primaryKey"`
	UserID     string     `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex:idx_user_two_factor_user_method,priority:1"`
	MethodType MethodType `gorm:"column:method_type;type:varchar(20);not null;uniqueIndex:idx_user_two_factor_user_method,priority:2"`
	Enabled    bool       `gorm:"not null;default:false"`
	Verified   bool       `gorm:"not null;default:false"`

	CodeHash      *string    `gorm:"column:code_hash"`
	CodeExpiresAt *time.Time `gorm:"column:code_expires_at"`
	Attempts      int        `gorm:"column:attempts;not null;default:0"`
	TOTPSecret    *string    `gorm:"column:totp_secret"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Method) TableName() string { return "user_two_factor" }

// Credential is the per-method secret: a OneTimeCode for sms/email or a
// TOTPSecret for authenticator apps.
type Credential interface {
	isCredential()
}

type OneTimeCode struct {
	Hash      string
	ExpiresAt time.Time
	Attempts  int
}

type TOTPSecret struct {
	Secret string
}

func (OneTimeCode) isCredential() {}
func (TOTPSecret) isCredential()  {}

// Expired reports whether the code can no longer be used at now.
func (c OneTimeCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Credential returns the live credential for the row, or nil when nothing is
// pending or stored.
func (m Method) Credential() Credential {
	switch {
	case m.MethodType == MethodAuthenticator:
		if m.TOTPSecret == nil || *m.TOTPSecret == "" {
			return nil
		}
		return TOTPSecret{Secret: *m.TOTPSecret}
	case m.MethodType.UsesOneTimeCode():
		if m.CodeHash == nil || *m.CodeHash == "" || m.CodeExpiresAt == nil {
			return nil
		}
		return OneTimeCode{Hash: *m.CodeHash, ExpiresAt: *m.CodeExpiresAt, Attempts: m.Attempts}
	default:
		return nil
	}
}

// SetCredential stores c in the columns matching its variant and clears the
// others. A nil credential clears everything.
func (m *Method) SetCredential(c Credential) {
	m.CodeHash = nil
	m.CodeExpiresAt = nil
	m.Attempts = 0
	m.TOTPSecret = nil

	switch v := c.(type) {
	case OneTimeCode:
		hash, expires := v.Hash, v.ExpiresAt
		m.CodeHash = &hash
		m.CodeExpiresAt = &expires
		m.Attempts = v.Attempts
	case TOTPSecret:
		secret := v.Secret
		m.TOTPSecret = &secret
	}
}
