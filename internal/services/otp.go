package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/insightdesk/backend/internal/models"
	"github.com/insightdesk/backend/pkg/logger"
	"gorm.io/gorm"
)

const (
	defaultOTPLifetime = 5 * time.Minute
	otpCodeMin         = 100000
	otpCodeSpan        = 900000
)

// OTPService owns the passwordless login flow: it issues single-use numeric
// codes to active admins and redeems them exactly once.
type OTPService struct {
	DB       *gorm.DB
	Notifier *Notifier
	Lifetime time.Duration
}

func NewOTPService(db *gorm.DB, notifier *Notifier, lifetime time.Duration) *OTPService {
	if lifetime <= 0 {
		lifetime = defaultOTPLifetime
	}
	return &OTPService{DB: db, Notifier: notifier, Lifetime: lifetime}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RequestCode validates that the email belongs to an active admin, replaces
// any outstanding challenge for that address with a fresh one, and dispatches
// the code by email. The delete-then-create runs in one transaction so at
// most one live challenge exists per email at any point.
func (s *OTPService) RequestCode(email string) error {
	email = NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return validationError("email", "invalid email address")
	}

	var admin models.Admin
	if err := s.DB.First(&admin, "email = ? AND active = ?", email, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotAuthorized
		}
		return err
	}

	code, err := generateCode()
	if err != nil {
		return err
	}

	challenge := models.OTPChallenge{
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().Add(s.Lifetime),
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", email).Delete(&models.OTPChallenge{}).Error; err != nil {
			return err
		}
		return tx.Create(&challenge).Error
	})
	if err != nil {
		return err
	}

	s.Notifier.SendOTP(email, code)

	logger.Info("otp_issued", map[string]interface{}{
		"email":      email,
		"expires_at": challenge.ExpiresAt.UTC(),
	})

	return nil
}

// Verify redeems a challenge. Wrong code and missing challenge are
// indistinguishable to the caller; an expired challenge fails distinctly and
// is garbage-collected. The challenge is consumed with a conditional delete
// before the admin re-check, so it burns exactly once even when two calls
// race or the admin was deactivated after issuance.
func (s *OTPService) Verify(email, code string) (*models.Admin, error) {
	email = NormalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return nil, ErrInvalidCredentials
	}

	var challenge models.OTPChallenge
	if err := s.DB.First(&challenge, "email = ? AND code = ?", email, code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if time.Now().After(challenge.ExpiresAt) {
		s.DB.Delete(&models.OTPChallenge{}, "id = ?", challenge.ID)
		return nil, ErrCodeExpired
	}

	consumed := s.DB.Delete(&models.OTPChallenge{}, "id = ?", challenge.ID)
	if consumed.Error != nil {
		return nil, consumed.Error
	}
	if consumed.RowsAffected == 0 {
		// A concurrent verify already burned this challenge.
		return nil, ErrInvalidCredentials
	}

	var admin models.Admin
	if err := s.DB.First(&admin, "email = ? AND active = ?", email, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotAuthorized
		}
		return nil, err
	}

	logger.InfoWithAdmin(admin.ID.String(), "otp_verified", map[string]interface{}{
		"email": email,
	})

	return &admin, nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpCodeSpan))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+otpCodeMin), nil
}
