package admin

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sheetboard-api/internal/domain"
	"go.uber.org/zap"
)

type Service interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	Promote(ctx context.Context, userID string) (*domain.User, error)
	ListFiles(ctx context.Context) ([]domain.AdminFile, error)
}

type userStore interface {
	ScanAll(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	SetRole(ctx context.Context, userID, role string) (*domain.User, error)
}

type fileStore interface {
	ScanAll(ctx context.Context) ([]domain.UploadedFile, error)
}

type service struct {
	users userStore
	files fileStore
	log   *zap.Logger
}

type ServiceDeps struct {
	UserRepo userStore
	FileRepo fileStore
	Logger   *zap.Logger
}

func NewService(deps ServiceDeps) Service {
	s := &service{users: deps.UserRepo, files: deps.FileRepo, log: deps.Logger}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// ListUsers returns every account, newest first.
func (s *service) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.ScanAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.After(users[j].CreatedAt)
		}
		return users[i].UserID > users[j].UserID
	})
	return users, nil
}

func (s *service) Promote(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id required: %w", domain.ErrBadRequest)
	}
	u, err := s.users.SetRole(ctx, userID, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	s.log.Info("user promoted", zap.String("user_id", userID))
	return u, nil
}

// ListFiles returns every file record with its owner joined in, newest first.
// Owners that no longer resolve are left nil.
func (s *service) ListFiles(ctx context.Context) ([]domain.AdminFile, error) {
	files, err := s.files.ScanAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].UploadedAt.Equal(files[j].UploadedAt) {
			return files[i].UploadedAt.After(files[j].UploadedAt)
		}
		return files[i].FileID > files[j].FileID
	})

	owners := make(map[string]*domain.FileOwner)
	out := make([]domain.AdminFile, 0, len(files))
	for _, f := range files {
		owner, seen := owners[f.OwnerID]
		if !seen {
			owner, err = s.owner(ctx, f.OwnerID)
			if err != nil {
				return nil, err
			}
			owners[f.OwnerID] = owner
		}
		out = append(out, domain.AdminFile{
			FileID:       f.FileID,
			Owner:        owner,
			StoredName:   f.StoredName,
			OriginalName: f.OriginalName,
			Size:         f.Size,
			UploadedAt:   f.UploadedAt,
		})
	}
	return out, nil
}

func (s *service) owner(ctx context.Context, userID string) (*domain.FileOwner, error) {
	u, err := s.users.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		s.log.Warn("file owner missing", zap.String("user_id", userID))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &domain.FileOwner{UserID: u.UserID, Name: u.Name, Email: u.Email}, nil
}
