package filestorage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// allowedExt форматы подтверждений оплаты: скриншоты и выписки
var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".heic": true,
	".pdf":  true,
}

// Storage хранит загруженные файлы в локальной директории
type Storage struct {
	dir           string
	publicBaseURL string
	maxSize       int64
}

// New создает хранилище, директория создается при необходимости
func New(dir, publicBaseURL string, maxSize int64) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create dir %s: %v", ErrInternal, dir, err)
	}
	return &Storage{
		dir:           dir,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		maxSize:       maxSize,
	}, nil
}

// Dir директория с файлами (для раздачи статикой)
func (s *Storage) Dir() string {
	return s.dir
}

// Save сохраняет файл под случайным именем и возвращает его публичный URL
func (s *Storage) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExt[ext] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("%w: create %s: %v", ErrInternal, name, err)
	}

	// читаем на байт больше лимита, чтобы отличить "ровно лимит" от "больше"
	n, err := io.Copy(f, io.LimitReader(r, s.maxSize+1))
	closeErr := f.Close()

	switch {
	case err != nil:
		_ = os.Remove(path)
		return "", fmt.Errorf("%w: write %s: %v", ErrInternal, name, err)
	case closeErr != nil:
		_ = os.Remove(path)
		return "", fmt.Errorf("%w: close %s: %v", ErrInternal, name, closeErr)
	case n == 0:
		_ = os.Remove(path)
		return "", ErrEmpty
	case n > s.maxSize:
		_ = os.Remove(path)
		return "", fmt.Errorf("%w: limit %d bytes", ErrTooLarge, s.maxSize)
	}

	if err := ctx.Err(); err != nil {
		_ = os.Remove(path)
		return "", err
	}

	return s.publicBaseURL + "/" + name, nil
}
