package service

import "coachapp/coaching-app/internal/repository"

// ListResult is one page of a tenant-scoped listing plus the
// filter-independent stats summary, ready for the response envelope.
type ListResult[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Pages    int `json:"pages"`
	Stats    any `json:"stats"`
}

func listResult[T any](page repository.Page[T], pageNum, pageSize int, stats any) *ListResult[T] {
	return &ListResult[T]{
		Items:    page.Items,
		Total:    page.Total,
		Page:     pageNum,
		PageSize: pageSize,
		Pages:    page.Pages,
		Stats:    stats,
	}
}
