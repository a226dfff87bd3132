package handlers

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings/models"
)

// ParseListQuery разбирает общие query параметры списков бронирований:
// from, to (RFC3339), status, include_inactive
func ParseListQuery(q url.Values) (*models.ListBookingsRequest, error) {
	req := &models.ListBookingsRequest{}

	if v := q.Get("from"); v != "" {
		from, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, fmt.Errorf("invalid from: %w", err)
		}
		req.From = &from
	}

	if v := q.Get("to"); v != "" {
		to, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, fmt.Errorf("invalid to: %w", err)
		}
		req.To = &to
	}

	if v := q.Get("status"); v != "" {
		req.Status = &v
	}

	if v := q.Get("include_inactive"); v != "" {
		includeInactive, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid include_inactive value: %w", err)
		}
		req.IncludeInactive = includeInactive
	}

	return req, nil
}
