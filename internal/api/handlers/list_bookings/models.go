package list_bookings

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/m04kA/GlampingBackoffice/internal/api/handlers"
	"github.com/m04kA/GlampingBackoffice/internal/service/bookings/models"
)

// ToServiceRequest собирает фильтр из query параметров
func ToServiceRequest(r *http.Request) (*models.ListBookingsRequest, error) {
	q := r.URL.Query()
	req := &models.ListBookingsRequest{}

	if v := q.Get("clientId"); v != "" {
		clientID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid clientId %q", v)
		}
		req.ClientID = &clientID
	}
	if v := q.Get("status"); v != "" {
		req.Status = &v
	}
	if v := q.Get("from"); v != "" {
		req.From = &v
	}
	if v := q.Get("to"); v != "" {
		req.To = &v
	}

	limit, offset, err := handlers.Pagination(r)
	if err != nil {
		return nil, err
	}
	req.Limit, req.Offset = limit, offset

	return req, nil
}
