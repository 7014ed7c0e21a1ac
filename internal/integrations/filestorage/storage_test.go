package filestorage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
)

func TestSave(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, "/uploads/", 1024)
	require.NoError(t, err)

	url, err := s.Save(context.Background(), "чек.PNG", bytes.NewReader([]byte("png-bytes")))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestSave_Rejects(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, "/uploads", 4)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Save(ctx, "script.sh", bytes.NewReader([]byte("x")))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = s.Save(ctx, "big.pdf", bytes.NewReader([]byte("12345")))
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.Save(ctx, "empty.pdf", bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrEmpty)

	url, err := s.Save(ctx, "exact.pdf", bytes.NewReader([]byte("1234")))
	require.NoError(t, err)
	assert.NotEmpty(t, url)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "отклонённые файлы удаляются")
}
