package dto

import (
	"hotel/shared/constant"
	"net/http"
	"strconv"
	"strings"
)

const (
	SortDirAsc  = "ASC"
	SortDirDesc = "DESC"
)

type QueryParams struct {
	Page    int    `json:"page"    validate:"omitempty"`
	Limit   int    `json:"limit"   validate:"omitempty"`
	SortBy  string `json:"sortBy"  validate:"omitempty"`
	SortDir string `json:"sortDir" validate:"omitempty,oneof=ASC DESC"`
}

// FromRequest populates QueryParams from the HTTP request.
// With defaultRequest set, missing page and limit fall back to the package defaults.
func (q *QueryParams) FromRequest(r *http.Request, defaultRequest bool) {
	queryParams := r.URL.Query()

	if page := queryParams.Get(constant.RequestParamPage); page != "" {
		if pageInt, err := strconv.Atoi(page); err == nil && pageInt > 0 {
			q.Page = pageInt
		}
	}

	if limit := queryParams.Get(constant.RequestParamLimit); limit != "" {
		if limitInt, err := strconv.Atoi(limit); err == nil && limitInt > 0 {
			q.Limit = limitInt
		}
	}

	if sortBy := queryParams.Get(constant.RequestParamSortBy); sortBy != "" {
		q.SortBy = sortBy
	}

	if sortDir := strings.ToUpper(queryParams.Get(constant.RequestParamSortDir)); sortDir == SortDirAsc || sortDir == SortDirDesc {
		q.SortDir = sortDir
	}

	if defaultRequest {
		if q.Page == 0 {
			q.Page = constant.DefaultValuePage
		}

		if q.Limit == 0 {
			q.Limit = constant.DefaultValueLimit
		}
	}
}

// Sanitize maps the requested sort key onto a whitelisted column. Unknown keys fall back to the defaults.
// Keys of allowed are the public names, values the qualified columns used in ORDER BY.
func (q *QueryParams) Sanitize(allowed map[string]string, defaultSortBy, defaultSortDir string) {
	column, ok := allowed[q.SortBy]
	if !ok {
		q.SortBy = defaultSortBy
		q.SortDir = defaultSortDir

		return
	}

	q.SortBy = column
	if q.SortDir == "" {
		q.SortDir = defaultSortDir
	}
}

func (q *QueryParams) Offset() int {
	if q.Page <= 0 || q.Limit <= 0 {
		return 0
	}

	return (q.Page - 1) * q.Limit
}
