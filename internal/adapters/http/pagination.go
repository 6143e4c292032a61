package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// PaginatedResponse wraps list results with pagination metadata.
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// Pagination contains offset-based pagination info.
type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
}

// NewPagination clamps the requested window to [0, total] with a limit of
// at most maxLimit. A non-positive limit means maxLimit.
func NewPagination(offset, limit, total, maxLimit int) Pagination {
	if limit <= 0 || limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Pagination{Offset: offset, Limit: limit, Total: total}
}

// Bounds returns the slice indexes of the page within total items.
func (p Pagination) Bounds() (start, end int) {
	if p.Offset >= p.Total {
		return p.Total, p.Total
	}
	end = p.Offset + p.Limit
	if end > p.Total {
		end = p.Total
	}
	return p.Offset, end
}

// lastOffset is the start of the final full-width page, aligned to Limit.
func (p Pagination) lastOffset() int {
	if p.Total == 0 || p.Limit <= 0 {
		return 0
	}
	return (p.Total - 1) / p.Limit * p.Limit
}

// SetLinkHeaders adds RFC 8288 Link headers (first, prev, next, last) for
// the current request path.
func SetLinkHeaders(c *fiber.Ctx, p Pagination) {
	base := c.Path()
	link := func(offset int, rel string) string {
		return fmt.Sprintf(`<%s?offset=%d&limit=%d>; rel="%s"`, base, offset, p.Limit, rel)
	}

	links := []string{link(0, "first")}
	if p.Offset > 0 {
		prev := p.Offset - p.Limit
		if prev < 0 {
			prev = 0
		}
		links = append(links, link(prev, "prev"))
	}
	if p.Offset+p.Limit < p.Total {
		links = append(links, link(p.Offset+p.Limit, "next"))
	}
	links = append(links, link(p.lastOffset(), "last"))

	c.Set("Link", strings.Join(links, ", "))
}
