package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sheetboard-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) ScanAll(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]domain.User)
	return users, args.Error(1)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) SetRole(ctx context.Context, userID, role string) (*domain.User, error) {
	args := m.Called(ctx, userID, role)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockFileStore struct{ mock.Mock }

func (m *mockFileStore) ScanAll(ctx context.Context) ([]domain.UploadedFile, error) {
	args := m.Called(ctx)
	files, _ := args.Get(0).([]domain.UploadedFile)
	return files, args.Error(1)
}

func newService(us *mockUserStore, fs *mockFileStore) Service {
	return NewService(ServiceDeps{UserRepo: us, FileRepo: fs})
}

var t0 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// --- ListUsers ---

func TestListUsers_NewestFirst(t *testing.T) {
	us := &mockUserStore{}
	us.On("ScanAll", mock.Anything).Return([]domain.User{
		{UserID: "old", CreatedAt: t0},
		{UserID: "new", CreatedAt: t0.Add(2 * time.Hour)},
		{UserID: "mid", CreatedAt: t0.Add(time.Hour)},
	}, nil)

	users, err := newService(us, nil).ListUsers(context.Background())

	require.NoError(t, err)
	ids := []string{users[0].UserID, users[1].UserID, users[2].UserID}
	assert.Equal(t, []string{"new", "mid", "old"}, ids)
}

func TestListUsers_StoreError(t *testing.T) {
	us := &mockUserStore{}
	us.On("ScanAll", mock.Anything).Return(nil, errors.New("boom"))

	_, err := newService(us, nil).ListUsers(context.Background())
	assert.Error(t, err)
}

// --- Promote ---

func TestPromote_SetsAdminRole(t *testing.T) {
	us := &mockUserStore{}
	us.On("SetRole", mock.Anything, "u2", domain.RoleAdmin).Return(&domain.User{UserID: "u2", Role: domain.RoleAdmin}, nil)

	u, err := newService(us, nil).Promote(context.Background(), "u2")

	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, u.Role)
	us.AssertExpectations(t)
}

func TestPromote_UnknownUser(t *testing.T) {
	us := &mockUserStore{}
	us.On("SetRole", mock.Anything, "ghost", domain.RoleAdmin).Return(nil, domain.ErrNotFound)

	_, err := newService(us, nil).Promote(context.Background(), "ghost")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestPromote_EmptyID(t *testing.T) {
	_, err := newService(&mockUserStore{}, nil).Promote(context.Background(), "")
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

// --- ListFiles ---

func TestListFiles_DenormalizesOwners(t *testing.T) {
	us := &mockUserStore{}
	fs := &mockFileStore{}
	fs.On("ScanAll", mock.Anything).Return([]domain.UploadedFile{
		{FileID: "f1", OwnerID: "u1", OriginalName: "a.xlsx", UploadedAt: t0},
		{FileID: "f2", OwnerID: "u1", OriginalName: "b.xlsx", UploadedAt: t0.Add(time.Hour)},
		{FileID: "f3", OwnerID: "gone", OriginalName: "c.xlsx", UploadedAt: t0.Add(30 * time.Minute)},
	}, nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Name: "Ann", Email: "ann@x.com"}, nil).Once()
	us.On("Get", mock.Anything, "gone").Return(nil, domain.ErrNotFound).Once()

	files, err := newService(us, fs).ListFiles(context.Background())

	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "f2", files[0].FileID)
	assert.Equal(t, "f3", files[1].FileID)
	assert.Equal(t, "f1", files[2].FileID)
	assert.Equal(t, &domain.FileOwner{UserID: "u1", Name: "Ann", Email: "ann@x.com"}, files[0].Owner)
	assert.Nil(t, files[1].Owner)
	assert.Same(t, files[0].Owner, files[2].Owner)
	us.AssertExpectations(t)
}

func TestListFiles_OwnerLookupError(t *testing.T) {
	us := &mockUserStore{}
	fs := &mockFileStore{}
	fs.On("ScanAll", mock.Anything).Return([]domain.UploadedFile{{FileID: "f1", OwnerID: "u1"}}, nil)
	us.On("Get", mock.Anything, "u1").Return(nil, errors.New("throttled"))

	_, err := newService(us, fs).ListFiles(context.Background())
	assert.Error(t, err)
}

func TestListFiles_Empty(t *testing.T) {
	fs := &mockFileStore{}
	fs.On("ScanAll", mock.Anything).Return([]domain.UploadedFile{}, nil)

	files, err := newService(&mockUserStore{}, fs).ListFiles(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, files)
	assert.Empty(t, files)
}
