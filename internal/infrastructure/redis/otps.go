package redisinfra

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sheetboard-api/internal/domain"
)

const otpPrefix = "otp:"

type keyValue interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	GetDel(ctx context.Context, key string) *redis.StringCmd
}

// OTPStore keeps one challenge per email under otp:<email>. SET replaces the
// previous value, and the key expires together with the code.
type OTPStore struct {
	client keyValue
	now    func() time.Time
}

func NewOTPStore(client keyValue) *OTPStore {
	return &OTPStore{client: client, now: time.Now}
}

func otpKey(email string) string { return otpPrefix + email }

func (s *OTPStore) Put(ctx context.Context, o *domain.OtpRecord) error {
	b, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal otp: %w", err)
	}
	ttl := o.ExpiresAt.Sub(s.now())
	if ttl < time.Second {
		ttl = time.Second
	}
	if err := s.client.Set(ctx, otpKey(o.Email), b, ttl).Err(); err != nil {
		return fmt.Errorf("redis set otp: %w", err)
	}
	return nil
}

func (s *OTPStore) Get(ctx context.Context, email string) (*domain.OtpRecord, error) {
	raw, err := s.client.Get(ctx, otpKey(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("otp not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get otp: %w", err)
	}
	var o domain.OtpRecord
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, fmt.Errorf("unmarshal otp: %w", err)
	}
	return &o, nil
}

// Consume takes the record with GETDEL, so at most one caller ever holds it.
// A mismatched or expired record is still removed; the caller must request a new code.
func (s *OTPStore) Consume(ctx context.Context, email, code string, now time.Time) error {
	raw, err := s.client.GetDel(ctx, otpKey(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("otp not redeemable: %w", domain.ErrInvalidOrExpired)
	}
	if err != nil {
		return fmt.Errorf("redis getdel otp: %w", err)
	}
	var o domain.OtpRecord
	if err := json.Unmarshal(raw, &o); err != nil {
		return fmt.Errorf("unmarshal otp: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(o.Code), []byte(code)) != 1 || o.Expired(now) {
		return fmt.Errorf("otp not redeemable: %w", domain.ErrInvalidOrExpired)
	}
	return nil
}
