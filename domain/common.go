package domain

import (
	"errors"
)

const (
	RoleUser = "user"
)

var (
	MessageUserNotAllowed       = "user not allowed"
	MessageFailedBodyRequest    = "failed to parse request body"
	MessageFailedProcessRequest = "failed to process request"
	MessageFailedGetToken       = "failed to get token"
	MessageFailedTokenInvalid   = "invalid or expired token"
	MessageNoTokenProvided      = "no token provided"
	MessageInternalServerError  = "internal server error"
	MessageResourceExists       = "resource already exists"
	MessageReferencedNotFound   = "referenced resource not found"
	MessageAccessDenied         = "access denied"
	MessageFileTooLarge         = "file too large"
	MessageRouteNotFound        = "route not found"

	ErrParseUUID      = errors.New("failed to parse UUID")
	ErrUserNotAllowed = errors.New("user not allowed")
	ErrTokenNotFound  = errors.New("no token provided")
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
)

type (
	Pagination struct {
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		Total      int64 `json:"total"`
		TotalPages int64 `json:"totalPages"`
	}

	BulkError struct {
		Item  any    `json:"item"`
		Error string `json:"error"`
	}

	// BulkResult reports per-item outcomes of a bulk create instead of
	// failing the whole batch.
	BulkResult[T any] struct {
		Created  []T         `json:"created"`
		Existing []T         `json:"existing"`
		Errors   []BulkError `json:"errors"`
	}
)

func NewPagination(page, limit int, total int64) Pagination {
	var pages int64
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: pages,
	}
}

func NewBulkResult[T any]() BulkResult[T] {
	return BulkResult[T]{
		Created:  []T{},
		Existing: []T{},
		Errors:   []BulkError{},
	}
}
