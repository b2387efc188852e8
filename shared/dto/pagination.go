package dto

import "math"

// Pagination is the page block returned next to list payloads.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

func NewPagination(params QueryParams, total int) Pagination {
	return Pagination{
		Page:  params.Page,
		Limit: params.Limit,
		Total: total,
		Pages: CalculateTotalPage(total, params.Limit),
	}
}

func CalculateTotalPage(total, limit int) (res int) {
	if total == 0 || limit <= 0 {
		res = 1
	} else {
		res = int(math.Ceil(float64(total) / float64(limit)))
	}

	return res
}
