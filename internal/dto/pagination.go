package dto

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PaginationParams is a page request over an in-memory list such as the
// ledger. Page is 1-based.
type PaginationParams struct {
	Page     int
	PageSize int
	Offset   int
}

// ParsePagination reads page and page_size from the query string. Values
// that do not parse or are out of range fall back to the defaults, and
// page_size is capped at MaxPageSize.
func ParsePagination(c *gin.Context) PaginationParams {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.Query("page_size"))
	if err != nil || size < 1 {
		size = DefaultPageSize
	}
	size = min(size, MaxPageSize)
	return PaginationParams{Page: page, PageSize: size, Offset: (page - 1) * size}
}

// Window is the [start, end) slice bounds of this page within total items.
// A page past the end yields an empty window at total.
func (p PaginationParams) Window(total int) (start, end int) {
	start = min(max(p.Offset, 0), total)
	end = min(start+p.PageSize, total)
	return start, end
}

func NewPagination(page, pageSize, totalItems int) Pagination {
	pages := 0
	if totalItems > 0 && pageSize > 0 {
		pages = int(math.Ceil(float64(totalItems) / float64(pageSize)))
	}
	return Pagination{Page: page, PageSize: pageSize, TotalItems: totalItems, TotalPages: pages}
}
