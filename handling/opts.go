package handling

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"tableside_server/structs"
	"tableside_server/structs/tables"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ParseOrderListOptions parses HTTP query parameters into OrderListOptions
func ParseOrderListOptions(r *http.Request) (*structs.OrderListOptions, error) {
	query := r.URL.Query()

	// Early return if no query params
	if len(query) == 0 {
		return &structs.OrderListOptions{}, nil
	}

	opts := &structs.OrderListOptions{}
	var err error

	if opts.Page, opts.PageSize, err = parsePaging(query.Get("page"), query.Get("page_size")); err != nil {
		return nil, err
	}

	if statuses := query.Get("status"); statuses != "" {
		for _, s := range splitAndTrim(statuses) {
			status := tables.OrderStatus(strings.ToLower(s))
			if !status.IsValid() {
				return nil, fmt.Errorf("unknown order status %q", s)
			}
			opts.Statuses = append(opts.Statuses, status)
		}
	}

	if tableId := query.Get("table_id"); tableId != "" {
		id, err := uuid.Parse(tableId)
		if err != nil {
			return nil, fmt.Errorf("invalid table_id: %w", err)
		}
		opts.TableId = &id
	}

	if active := query.Get("active"); active != "" {
		if opts.ActiveOnly, err = strconv.ParseBool(active); err != nil {
			return nil, err
		}
	}

	return opts, nil
}

// ParseMenuListOptions parses HTTP query parameters into MenuListOptions
func ParseMenuListOptions(r *http.Request) (*structs.MenuListOptions, error) {
	query := r.URL.Query()
	opts := &structs.MenuListOptions{}

	if category := query.Get("category_id"); category != "" {
		id, err := uuid.Parse(category)
		if err != nil {
			return nil, fmt.Errorf("invalid category_id: %w", err)
		}
		opts.CategoryId = &id
	}

	if available := query.Get("available"); available != "" {
		val, err := strconv.ParseBool(available)
		if err != nil {
			return nil, err
		}
		opts.AvailableOnly = val
	}

	opts.Search = strings.TrimSpace(query.Get("search"))

	return opts, nil
}

// ParseCustomerListOptions parses HTTP query parameters into CustomerListOptions
func ParseCustomerListOptions(r *http.Request) (*structs.CustomerListOptions, error) {
	query := r.URL.Query()
	opts := &structs.CustomerListOptions{Search: strings.TrimSpace(query.Get("search"))}

	var err error
	if opts.Page, opts.PageSize, err = parsePaging(query.Get("page"), query.Get("page_size")); err != nil {
		return nil, err
	}
	return opts, nil
}

// ParseUUIDParam reads a chi URL parameter as a non-nil UUID.
func ParseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s %q", name, raw)
	}
	if id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%s is required", name)
	}
	return id, nil
}

// ParseLimit reads an optional positive limit query parameter.
func ParseLimit(r *http.Request, fallback int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, fmt.Errorf("invalid limit %q", raw)
	}
	return limit, nil
}

func parsePaging(page, pageSize string) (int, int, error) {
	var p, ps int
	var err error
	if page != "" {
		if p, err = strconv.Atoi(page); err != nil {
			return 0, 0, err
		}
	}
	if pageSize != "" {
		if ps, err = strconv.Atoi(pageSize); err != nil {
			return 0, 0, err
		}
	}
	return p, ps, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace
func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
