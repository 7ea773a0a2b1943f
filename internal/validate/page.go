package validate

import (
	"net/url"
	"strconv"

	"github.com/suteetoe/grantdesk/internal/model"
)

// Page is a validated pagination request.
type Page struct {
	Page  int
	Limit int
}

// Offset is the number of rows skipped before this page.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PastEnd reports whether the page starts beyond the last of total rows.
// It avoids Offset, which overflows for very large page numbers.
func (p Page) PastEnd(total int64) bool {
	if p.Limit < 1 {
		return true
	}
	pages := (total + int64(p.Limit) - 1) / int64(p.Limit)
	return int64(p.Page-1) >= pages
}

// ParsePage coerces the page and limit query parameters, applying the
// defaults and clamping limit to the maximum.
func ParsePage(q url.Values) (Page, error) {
	p := Page{Page: model.Defaults.Page, Limit: model.Defaults.Limit}

	var errs Errors
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			errs.Add("page", "page must be a positive integer")
		} else {
			p.Page = n
		}
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			errs.Add("limit", "limit must be a positive integer")
		} else {
			p.Limit = min(n, model.Defaults.MaxLimit)
		}
	}

	if len(errs) > 0 {
		return Page{}, errs
	}
	return p, nil
}
