package http

import (
	"context"
	"io"
	"time"

	"github.com/sheetboard-api/internal/domain"
	jwtinfra "github.com/sheetboard-api/internal/infrastructure/jwt"
)

// UserRepository is the minimal interface the router requires from a user store.
type UserRepository interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByRole returns any one user holding role, or domain.ErrNotFound.
	FindByRole(ctx context.Context, role string) (*domain.User, error)
	ScanAll(ctx context.Context) ([]domain.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	SetRole(ctx context.Context, userID, role string) (*domain.User, error)
}

// OTPRepository holds at most one live challenge per email. Put replaces.
type OTPRepository interface {
	Put(ctx context.Context, o *domain.OtpRecord) error
	Get(ctx context.Context, email string) (*domain.OtpRecord, error)
	Consume(ctx context.Context, email, code string, now time.Time) error
}

// FileRepository is the minimal interface the router requires from a file metadata store.
type FileRepository interface {
	Put(ctx context.Context, f *domain.UploadedFile) error
	Get(ctx context.Context, fileID string) (*domain.UploadedFile, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.UploadedFile, error)
	ScanAll(ctx context.Context) ([]domain.UploadedFile, error)
}

// ObjectStore is the minimal interface the router requires from an upload storage backend.
type ObjectStore interface {
	Save(ctx context.Context, key string, r io.Reader, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

// SheetReader turns stored workbook bytes into rows.
type SheetReader interface {
	ReadFirstSheet(r io.Reader) (*domain.Sheet, error)
}

// Mailer delivers HTML mail.
type Mailer interface {
	SendEmail(to, subject, htmlBody string) error
}

// TokenProvider signs and verifies bearer tokens.
type TokenProvider interface {
	Sign(userID, role string) (string, error)
	Verify(tokenStr string) (*jwtinfra.Claims, error)
}
