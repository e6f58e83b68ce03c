// Package verification implements two-factor enrollment and verification
// for sms, email and authenticator-app methods.
package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salonbook/internal/domain/twofactor"
	"salonbook/internal/metrics"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultCodeTTL     = 10 * time.Minute
	DefaultMaxAttempts = 5
)

var (
	ErrInvalidCode        = errors.New("invalid verification code")
	ErrCodeExpired        = errors.New("verification code expired")
	ErrTooManyAttempts    = errors.New("too many verification attempts")
	ErrNoPendingCode      = errors.New("no verification code pending")
	ErrNoDestination      = errors.New("no destination to deliver the code to")
	ErrChannelUnavailable = errors.New("delivery channel not configured")
	ErrMethodNotFound     = errors.New("2fa method not found")
)

type Store interface {
	Find(ctx context.Context, userID string, method twofactor.MethodType) (twofactor.Method, bool, error)
	ListByUser(ctx context.Context, userID string) ([]twofactor.Method, error)
	Save(ctx context.Context, row *twofactor.Method) error
	IncrementAttempts(ctx context.Context, userID string, method twofactor.MethodType) error
}

// Sender delivers a one-time code to a phone number or mailbox.
type Sender interface {
	Send(ctx context.Context, destination, code string) error
}

type Options struct {
	CodeTTL     time.Duration
	MaxAttempts int
	// ExposeCode returns generated codes to the caller. Development only.
	ExposeCode bool
	Issuer     string
	Senders    map[twofactor.MethodType]Sender
	Logger     *zap.Logger
}

// Challenge is what the caller learns after requesting a code.
type Challenge struct {
	Method     twofactor.MethodType
	ExpiresAt  *time.Time
	Code       string
	Secret     string
	OTPAuthURL string
}

type Service struct {
	store       Store
	codeTTL     time.Duration
	maxAttempts int
	exposeCode  bool
	issuer      string
	senders     map[twofactor.MethodType]Sender
	log         *zap.Logger
	now         func() time.Time
}

func NewService(store Store, opts Options) *Service {
	s := &Service{
		store:       store,
		codeTTL:     opts.CodeTTL,
		maxAttempts: opts.MaxAttempts,
		exposeCode:  opts.ExposeCode,
		issuer:      opts.Issuer,
		senders:     opts.Senders,
		log:         opts.Logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
	if s.codeTTL <= 0 {
		s.codeTTL = DefaultCodeTTL
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = DefaultMaxAttempts
	}
	if s.issuer == "" {
		s.issuer = "SalonBook"
	}
	if s.senders == nil {
		s.senders = map[twofactor.MethodType]Sender{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

func (s *Service) load(ctx context.Context, userID string, method twofactor.MethodType) (twofactor.Method, error) {
	row, found, err := s.store.Find(ctx, userID, method)
	if err != nil {
		return twofactor.Method{}, fmt.Errorf("load 2fa method: %w", err)
	}
	if !found {
		row = twofactor.Method{UserID: userID, MethodType: method}
	}
	return row, nil
}

// RequestCode starts verification for method. sms and email get a fresh
// one-time code that replaces any earlier one; authenticator gets a new TOTP
// secret to enroll.
func (s *Service) RequestCode(ctx context.Context, userID string, method twofactor.MethodType, destination string) (Challenge, error) {
	if method == twofactor.MethodAuthenticator {
		return s.enrollAuthenticator(ctx, userID, destination)
	}

	sender, hasSender := s.senders[method]
	if !hasSender && !s.exposeCode {
		return Challenge{}, ErrChannelUnavailable
	}
	if hasSender && destination == "" {
		return Challenge{}, ErrNoDestination
	}

	code, err := twofactor.GenerateCode()
	if err != nil {
		return Challenge{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return Challenge{}, fmt.Errorf("hash code: %w", err)
	}

	row, err := s.load(ctx, userID, method)
	if err != nil {
		return Challenge{}, err
	}
	expiresAt := s.now().Add(s.codeTTL)
	row.SetCredential(twofactor.OneTimeCode{Hash: string(hash), ExpiresAt: expiresAt})
	if err := s.store.Save(ctx, &row); err != nil {
		return Challenge{}, fmt.Errorf("store code: %w", err)
	}

	if hasSender {
		if err := sender.Send(ctx, destination, code); err != nil {
			return Challenge{}, fmt.Errorf("deliver code: %w", err)
		}
	} else {
		s.log.Warn("no sender configured, code only returned in-band",
			zap.String("user_id", userID),
			zap.String("method", string(method)),
		)
	}

	ch := Challenge{Method: method, ExpiresAt: &expiresAt}
	if s.exposeCode {
		ch.Code = code
	}
	return ch, nil
}

func (s *Service) enrollAuthenticator(ctx context.Context, userID, account string) (Challenge, error) {
	if account == "" {
		account = userID
	}
	key, err := totp.Generate(totp.GenerateOpts{Issuer: s.issuer, AccountName: account})
	if err != nil {
		return Challenge{}, fmt.Errorf("generate totp secret: %w", err)
	}

	row, err := s.load(ctx, userID, twofactor.MethodAuthenticator)
	if err != nil {
		return Challenge{}, err
	}
	row.Enabled = false
	row.Verified = false
	row.SetCredential(twofactor.TOTPSecret{Secret: key.Secret()})
	if err := s.store.Save(ctx, &row); err != nil {
		return Challenge{}, fmt.Errorf("store totp secret: %w", err)
	}

	return Challenge{
		Method:     twofactor.MethodAuthenticator,
		Secret:     key.Secret(),
		OTPAuthURL: key.URL(),
	}, nil
}

// VerifyCode checks code for method and marks the method enabled and
// verified on success. One-time codes are consumed by a successful check.
// secretKey is only used by authenticator enrollment flows that keep the
// secret client-side until the first code is confirmed.
func (s *Service) VerifyCode(ctx context.Context, userID string, method twofactor.MethodType, code, secretKey string) error {
	err := s.verify(ctx, userID, method, code, secretKey)
	outcome := "ok"
	switch {
	case errors.Is(err, ErrInvalidCode):
		outcome = "invalid"
	case errors.Is(err, ErrCodeExpired):
		outcome = "expired"
	case errors.Is(err, ErrTooManyAttempts):
		outcome = "locked"
	case errors.Is(err, ErrNoPendingCode):
		outcome = "no_code"
	case err != nil:
		outcome = "error"
	}
	metrics.TwoFactorVerificationsTotal.WithLabelValues(string(method), outcome).Inc()
	return err
}

func (s *Service) verify(ctx context.Context, userID string, method twofactor.MethodType, code, secretKey string) error {
	row, err := s.load(ctx, userID, method)
	if err != nil {
		return err
	}

	if method == twofactor.MethodAuthenticator {
		secret := secretKey
		if secret == "" {
			stored, ok := row.Credential().(twofactor.TOTPSecret)
			if !ok {
				return ErrNoPendingCode
			}
			secret = stored.Secret
		}
		valid, err := totp.ValidateCustom(code, secret, s.now(), totp.ValidateOpts{
			Period:    30,
			Skew:      1,
			Digits:    otp.DigitsSix,
			Algorithm: otp.AlgorithmSHA1,
		})
		if err != nil || !valid {
			return ErrInvalidCode
		}
		row.SetCredential(twofactor.TOTPSecret{Secret: secret})
		return s.markVerified(ctx, &row)
	}

	pending, ok := row.Credential().(twofactor.OneTimeCode)
	if !ok {
		return ErrNoPendingCode
	}
	if pending.Attempts >= s.maxAttempts {
		return ErrTooManyAttempts
	}
	if pending.Expired(s.now()) {
		return ErrCodeExpired
	}
	if bcrypt.CompareHashAndPassword([]byte(pending.Hash), []byte(code)) != nil {
		if err := s.store.IncrementAttempts(ctx, userID, method); err != nil {
			s.log.Error("failed to record 2fa attempt", zap.String("user_id", userID), zap.Error(err))
		}
		return ErrInvalidCode
	}

	row.SetCredential(nil)
	return s.markVerified(ctx, &row)
}

func (s *Service) markVerified(ctx context.Context, row *twofactor.Method) error {
	row.Enabled = true
	row.Verified = true
	if err := s.store.Save(ctx, row); err != nil {
		return fmt.Errorf("store verification: %w", err)
	}
	s.log.Info("2fa method verified", zap.String("user_id", row.UserID), zap.String("method", string(row.MethodType)))
	return nil
}

// DisableMethod turns a method off and drops its credential.
func (s *Service) DisableMethod(ctx context.Context, userID string, method twofactor.MethodType) error {
	row, found, err := s.store.Find(ctx, userID, method)
	if err != nil {
		return fmt.Errorf("load 2fa method: %w", err)
	}
	if !found {
		return ErrMethodNotFound
	}
	row.Enabled = false
	row.Verified = false
	row.SetCredential(nil)
	if err := s.store.Save(ctx, &row); err != nil {
		return fmt.Errorf("disable 2fa method: %w", err)
	}
	return nil
}

// MethodStatus is the public view of a method; credentials never leave the
// service.
type MethodStatus struct {
	Method   twofactor.MethodType `json:"methodType"`
	Enabled  bool                 `json:"enabled"`
	Verified bool                 `json:"verified"`
}

func (s *Service) ListMethods(ctx context.Context, userID string) ([]MethodStatus, error) {
	rows, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list 2fa methods: %w", err)
	}
	out := make([]MethodStatus, 0, len(rows))
	for _, row := range rows {
		out = append(out, MethodStatus{Method: row.MethodType, Enabled: row.Enabled, Verified: row.Verified})
	}
	return out, nil
}
