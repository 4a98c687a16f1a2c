package models

import "storeapi/pkg/pagination"

// PaginationQuery is bound from the limit and offset query parameters.
type PaginationQuery struct {
	Limit  int `query:"limit" validate:"gte=1,lte=100"`
	Offset int `query:"offset" validate:"gte=0"`
}

// DefaultPaginationQuery returns the page used when the client sends none.
func DefaultPaginationQuery() PaginationQuery {
	return PaginationQuery{Limit: pagination.DefaultLimit}
}

// PaginatedResult wraps one page of records with its metadata.
type PaginatedResult[T any] struct {
	Records    []T             `json:"records"`
	Pagination pagination.Meta `json:"pagination"`
}
