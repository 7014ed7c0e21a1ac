package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/m04kA/GlampingBackoffice/internal/api/handlers"
)

// AdminIDHeader заголовок с идентификатором администратора
const AdminIDHeader = "X-Admin-ID"

const msgMissingAdminID = "отсутствует ID администратора"

type adminIDKey struct{}

// Auth требует заголовок X-Admin-ID и кладет его в контекст
// Аутентификация выполняется на reverse proxy, сервис доверяет заголовку
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		adminID := strings.TrimSpace(r.Header.Get(AdminIDHeader))
		if adminID == "" {
			handlers.RespondUnauthorized(w, msgMissingAdminID)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithAdminID(r.Context(), adminID)))
	})
}

// WithAdminID кладет идентификатор администратора в контекст
func WithAdminID(ctx context.Context, adminID string) context.Context {
	return context.WithValue(ctx, adminIDKey{}, adminID)
}

// GetAdminID достает идентификатор администратора из контекста
func GetAdminID(ctx context.Context) (string, bool) {
	adminID, ok := ctx.Value(adminIDKey{}).(string)
	return adminID, ok && adminID != ""
}
