package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/m04kA/GlampingBackoffice/pkg/dbmetrics"
)

//go:embed *.sql
var files embed.FS

// Apply выполняет все SQL файлы по порядку имён
// Скрипты идемпотентны (IF NOT EXISTS), повторный запуск безопасен
func Apply(ctx context.Context, db dbmetrics.DBExecutor) ([]string, error) {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("migrations: list files: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		body, err := files.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("migrations: read %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, string(body)); err != nil {
			return nil, fmt.Errorf("migrations: apply %s: %w", name, err)
		}
	}
	return names, nil
}
