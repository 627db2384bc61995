package redisinfra

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sheetboard-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memKV struct {
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func newMemKV() *memKV {
	return &memKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memKV) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if m.err != nil {
		return redis.NewStatusResult("", m.err)
	}
	m.data[key] = string(value.([]byte))
	m.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *memKV) Get(_ context.Context, key string) *redis.StringCmd {
	if m.err != nil {
		return redis.NewStringResult("", m.err)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memKV) GetDel(ctx context.Context, key string) *redis.StringCmd {
	cmd := m.Get(ctx, key)
	delete(m.data, key)
	return cmd
}

func TestOTPStore_PutGet_ReplacesAndSetsTTL(t *testing.T) {
	kv := newMemKV()
	s := NewOTPStore(kv)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, &domain.OtpRecord{Email: "ann@x.com", Code: "111111", ExpiresAt: now.Add(5 * time.Minute)}))
	require.NoError(t, s.Put(ctx, &domain.OtpRecord{Email: "ann@x.com", Code: "222222", ExpiresAt: now.Add(5 * time.Minute)}))

	assert.Len(t, kv.data, 1)
	assert.Equal(t, 5*time.Minute, kv.ttls["otp:ann@x.com"])

	got, err := s.Get(ctx, "ann@x.com")
	require.NoError(t, err)
	assert.Equal(t, "222222", got.Code)
	assert.True(t, now.Add(5*time.Minute).Equal(got.ExpiresAt))
}

func TestOTPStore_Put_PastExpiryUsesMinimumTTL(t *testing.T) {
	kv := newMemKV()
	s := NewOTPStore(kv)
	require.NoError(t, s.Put(context.Background(), &domain.OtpRecord{Email: "a@x.com", ExpiresAt: time.Now().Add(-time.Minute)}))
	assert.Equal(t, time.Second, kv.ttls["otp:a@x.com"])
}

func TestOTPStore_Get_Missing(t *testing.T) {
	_, err := NewOTPStore(newMemKV()).Get(context.Background(), "nobody@x.com")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestOTPStore_Get_BackendError(t *testing.T) {
	kv := newMemKV()
	kv.err = errors.New("conn reset")
	_, err := NewOTPStore(kv).Get(context.Background(), "a@x.com")
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}

func TestOTPStore_ConsumeOnce(t *testing.T) {
	kv := newMemKV()
	s := NewOTPStore(kv)
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, s.Put(ctx, &domain.OtpRecord{Email: "a@x.com", Code: "123456", ExpiresAt: now.Add(time.Minute)}))

	require.NoError(t, s.Consume(ctx, "a@x.com", "123456", now))
	assert.Empty(t, kv.data)

	err := s.Consume(ctx, "a@x.com", "123456", now)
	assert.True(t, errors.Is(err, domain.ErrInvalidOrExpired))
}

func TestOTPStore_Consume_RejectsWrongOrExpiredCode(t *testing.T) {
	s := NewOTPStore(newMemKV())
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.Put(ctx, &domain.OtpRecord{Email: "a@x.com", Code: "123456", ExpiresAt: now.Add(time.Minute)}))
	assert.True(t, errors.Is(s.Consume(ctx, "a@x.com", "000000", now), domain.ErrInvalidOrExpired))

	require.NoError(t, s.Put(ctx, &domain.OtpRecord{Email: "a@x.com", Code: "123456", ExpiresAt: now.Add(time.Minute)}))
	assert.True(t, errors.Is(s.Consume(ctx, "a@x.com", "123456", now.Add(2*time.Minute)), domain.ErrInvalidOrExpired))
}

func TestOTPStore_Consume_BackendError(t *testing.T) {
	kv := newMemKV()
	kv.err = errors.New("conn reset")
	err := NewOTPStore(kv).Consume(context.Background(), "a@x.com", "123456", time.Now())
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrInvalidOrExpired))
}
