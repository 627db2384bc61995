package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/sheetboard-api/internal/domain"
	"github.com/sheetboard-api/internal/pkg/id"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	otpMin   = 100000
	otpRange = 900000

	resetSubject = "Your OTP for Password Reset"
)

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, email, password string) (token string, u *domain.User, err error)
	RequestReset(ctx context.Context, email string) error
	VerifyReset(ctx context.Context, email, code string) error
	CompleteReset(ctx context.Context, email, code, newPassword string) error
}

type userStore interface {
	Put(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByRole(ctx context.Context, role string) (*domain.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type otpStore interface {
	Put(ctx context.Context, o *domain.OtpRecord) error
	Get(ctx context.Context, email string) (*domain.OtpRecord, error)
	// Consume atomically removes the record only if it matches code and is live at now.
	Consume(ctx context.Context, email, code string, now time.Time) error
}

type mailer interface {
	SendEmail(to, subject, htmlBody string) error
}

type tokenSigner interface {
	Sign(userID, role string) (string, error)
}

type service struct {
	users  userStore
	otps   otpStore
	mailer mailer
	tokens tokenSigner
	log    *zap.Logger
	otpTTL time.Duration
	now    func() time.Time
}

type ServiceDeps struct {
	UserRepo userStore
	OTPRepo  otpStore
	Mailer   mailer
	Tokens   tokenSigner
	Logger   *zap.Logger
	OTPTTL   time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		users:  deps.UserRepo,
		otps:   deps.OTPRepo,
		mailer: deps.Mailer,
		tokens: deps.Tokens,
		log:    deps.Logger,
		otpTTL: deps.OTPTTL,
		now:    deps.Now,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.otpTTL <= 0 {
		s.otpTTL = 5 * time.Minute
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Register creates a user. Only one admin may self-register; the check is a
// point-in-time lookup, so two concurrent admin registrations can both pass.
func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	role := req.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !domain.ValidRole(role) {
		return nil, fmt.Errorf("unknown role %q: %w", role, domain.ErrBadRequest)
	}

	if role == domain.RoleAdmin {
		_, err := s.users.FindByRole(ctx, domain.RoleAdmin)
		if err == nil {
			return nil, fmt.Errorf("only one admin allowed: %w", domain.ErrConflict)
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	_, err := s.users.GetByEmail(ctx, req.Email)
	if err == nil {
		return nil, fmt.Errorf("email already exists: %w", domain.ErrConflict)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Put(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.String("user_id", u.UserID), zap.String("role", u.Role))
	return u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, fmt.Errorf("password mismatch: %w", domain.ErrInvalidCredentials)
	}
	token, err := s.tokens.Sign(u.UserID, u.Role)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// RequestReset issues a fresh code for email, replacing any live one, and mails it.
// A mail failure is returned but the stored code stays valid.
func (s *service) RequestReset(ctx context.Context, email string) error {
	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("email not found: %w", domain.ErrNotFound)
		}
		return err
	}

	code, err := newCode()
	if err != nil {
		return err
	}
	rec := &domain.OtpRecord{
		Email:     email,
		Code:      code,
		ExpiresAt: s.now().UTC().Add(s.otpTTL),
	}
	if err := s.otps.Put(ctx, rec); err != nil {
		return err
	}

	if err := s.mailer.SendEmail(email, resetSubject, resetBody(code, s.otpTTL)); err != nil {
		s.log.Error("otp mail dispatch failed", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("send otp: %w", err)
	}
	return nil
}

func (s *service) VerifyReset(ctx context.Context, email, code string) error {
	_, err := s.checkCode(ctx, email, code)
	return err
}

// CompleteReset re-checks the code, consumes it, then stores the new password
// hash. Only one of several concurrent completions with the same code wins.
func (s *service) CompleteReset(ctx context.Context, email, code, newPassword string) error {
	if _, err := s.checkCode(ctx, email, code); err != nil {
		return err
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := s.otps.Consume(ctx, email, code, s.now()); err != nil {
		if errors.Is(err, domain.ErrInvalidOrExpired) {
			return fmt.Errorf("otp already used: %w", err)
		}
		return fmt.Errorf("consume otp: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, u.UserID, string(hash)); err != nil {
		return err
	}
	s.log.Info("password reset", zap.String("user_id", u.UserID))
	return nil
}

func (s *service) checkCode(ctx context.Context, email, code string) (*domain.OtpRecord, error) {
	rec, err := s.otps.Get(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("no pending otp: %w", domain.ErrInvalidOrExpired)
	}
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(rec.Code), []byte(code)) != 1 {
		return nil, fmt.Errorf("otp mismatch: %w", domain.ErrInvalidOrExpired)
	}
	if rec.Expired(s.now()) {
		return nil, fmt.Errorf("otp expired: %w", domain.ErrInvalidOrExpired)
	}
	return rec, nil
}

// newCode draws a uniform 6-digit code in [100000, 999999].
func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpRange))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+otpMin), nil
}

func resetBody(code string, ttl time.Duration) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; font-size: 16px;">
<p><strong>Your OTP is:</strong> <span style="font-size: 20px; color: #1e40af;">%s</span></p>
<p>This OTP is valid for %d minutes.</p>
</div>`, code, int(ttl.Minutes()))
}
