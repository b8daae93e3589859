package utils

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-service/internal/constants"
	apierrors "github.com/yukikurage/task-service/internal/errors"
)

var (
	ErrInvalidPage     = apierrors.New(apierrors.KindValidation, "page must be a non-negative integer")
	ErrInvalidPageSize = apierrors.New(apierrors.KindValidation,
		fmt.Sprintf("size must be an integer between %d and %d", constants.MinPageSize, constants.MaxPageSize))
)

// PaginationParams holds zero-based pagination parameters
type PaginationParams struct {
	Page int
	Size int
}

// Offset returns the number of rows preceding the page.
func (p PaginationParams) Offset() int {
	return p.Page * p.Size
}

// Validate checks the page bounds.
func (p PaginationParams) Validate() error {
	if p.Page < 0 {
		return ErrInvalidPage
	}
	if p.Size < constants.MinPageSize || p.Size > constants.MaxPageSize {
		return ErrInvalidPageSize
	}
	return nil
}

// SliceResponse represents the slice metadata in API responses.
// No total is computed; HasNext tells whether another page exists.
type SliceResponse struct {
	Page    int  `json:"page"`
	Size    int  `json:"size"`
	HasNext bool `json:"has_next"`
}

// GetPaginationParams extracts and validates pagination parameters from the request
func GetPaginationParams(c *gin.Context) (PaginationParams, error) {
	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(constants.DefaultPage)))
	if err != nil {
		return PaginationParams{}, ErrInvalidPage
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(constants.DefaultPageSize)))
	if err != nil {
		return PaginationParams{}, ErrInvalidPageSize
	}

	params := PaginationParams{Page: page, Size: size}
	if err := params.Validate(); err != nil {
		return PaginationParams{}, err
	}
	return params, nil
}

// TrimPage cuts a result fetched with one look-ahead row down to the page size
// and reports whether the look-ahead row existed.
func TrimPage[T any](items []T, size int) ([]T, bool) {
	if len(items) > size {
		return items[:size], true
	}
	return items, false
}
