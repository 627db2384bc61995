package localfs

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sheetboard-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveOpen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s, err := NewStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "abc.xlsx", strings.NewReader("payload"), "application/octet-stream"))

	rc, err := s.Open(ctx, "abc.xlsx")
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(b))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestStore_Open_Missing(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	_, err = s.Open(context.Background(), "nope.xlsx")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestStore_RejectsTraversal(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	for _, key := range []string{"../evil", "a/b.xlsx", "", ".."} {
		err := s.Save(context.Background(), key, strings.NewReader("x"), "")
		assert.True(t, errors.Is(err, domain.ErrBadRequest), key)
	}
}

func TestStore_Remove(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "abc.xlsx", strings.NewReader("payload"), ""))

	require.NoError(t, s.Remove(ctx, "abc.xlsx"))
	_, err = s.Open(ctx, "abc.xlsx")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	assert.NoError(t, s.Remove(ctx, "abc.xlsx"), "removing a missing object is not an error")
	assert.True(t, errors.Is(s.Remove(ctx, "../evil"), domain.ErrBadRequest))
}
