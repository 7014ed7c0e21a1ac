package list_sessions

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/m04kA/GlampingBackoffice/internal/api/handlers"
	"github.com/m04kA/GlampingBackoffice/internal/service/sessions/models"
)

// ToServiceRequest собирает фильтр из query параметров
// stage, blocked, limit, offset (все опциональны)
func ToServiceRequest(r *http.Request) (*models.ListSessionsRequest, error) {
	q := r.URL.Query()
	req := &models.ListSessionsRequest{}

	if v := q.Get("stage"); v != "" {
		req.Stage = &v
	}
	if v := q.Get("blocked"); v != "" {
		blocked, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid blocked %q", v)
		}
		req.Blocked = &blocked
	}

	limit, offset, err := handlers.Pagination(r)
	if err != nil {
		return nil, err
	}
	req.Limit, req.Offset = limit, offset

	return req, nil
}
