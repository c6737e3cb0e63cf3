package file

import (
	"math"
	"strconv"
	"strings"
	"time"

	"file-storage-api/internal/domain/apperr"
	"file-storage-api/internal/domain/user"
)

type (
	ScopeKind int
	Scope     struct {
		Kind    ScopeKind
		OwnerID user.ID
	}

	SortField string
	SortDir   string
	Sort      struct {
		Field SortField
		Dir   SortDir
	}

	Filters struct {
		Search string
		// Username is honoured in ScopeAll only.
		Username string
		SizeFrom *uint64
		SizeTo   *uint64
		DateFrom *time.Time
		DateTo   *time.Time
	}

	Page struct {
		Number int
		Size   int
	}

	Query struct {
		Scope   Scope
		Filters Filters
		Sort    Sort
		Page    Page
	}

	// Options is the raw listing option bag as received from a caller.
	Options struct {
		Search     string
		UserFilter string
		SizeFrom   string
		SizeTo     string
		DateFrom   string
		DateTo     string
		SortBy     string
		SortOrder  string
		Page       string
		Limit      string
	}

	PageLimits struct {
		Default int
		Max     int
	}

	Summary struct {
		CurrentPage int `json:"current_page"`
		PerPage     int `json:"per_page"`
		Total       int `json:"total"`
		TotalPages  int `json:"total_pages"`
	}
)

const (
	ScopeOwned ScopeKind = iota
	ScopeAll
)

const (
	SortID           SortField = "id"
	SortOriginalName SortField = "original_name"
	SortFileSize     SortField = "file_size"
	SortCreatedAt    SortField = "created_at"
	SortUsername     SortField = "username"

	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

var DefaultSort = Sort{Field: SortCreatedAt, Dir: SortDesc}

var DefaultPageLimits = PageLimits{Default: 10, Max: 100}

const dateLayout = "2006-01-02"

func Owned(ownerID user.ID) Scope { return Scope{Kind: ScopeOwned, OwnerID: ownerID} }

func All() Scope { return Scope{Kind: ScopeAll} }

// maxOffset bounds the row offset a parsed page can reach.
const maxOffset = math.MaxInt32

// Offset saturates at math.MaxInt instead of overflowing.
func (p Page) Offset() int {
	if p.Number < 1 || p.Size < 1 {
		return 0
	}
	if p.Number-1 > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Size
}

// NewSummary builds the pagination block for a page given the total row count.
func NewSummary(p Page, total int) Summary {
	pages := 0
	if p.Size > 0 {
		pages = (total + p.Size - 1) / p.Size
	}
	return Summary{
		CurrentPage: p.Number,
		PerPage:     p.Size,
		Total:       total,
		TotalPages:  pages,
	}
}

// ParseSort never fails: anything outside the allow-list for the scope
// yields DefaultSort.
func ParseSort(field, dir string, scope Scope) Sort {
	f := SortField(strings.ToLower(strings.TrimSpace(field)))
	d := SortDir(strings.ToLower(strings.TrimSpace(dir)))

	switch f {
	case SortID, SortOriginalName, SortFileSize, SortCreatedAt:
	case SortUsername:
		if scope.Kind != ScopeAll {
			return DefaultSort
		}
	default:
		return DefaultSort
	}
	if d != SortAsc && d != SortDesc {
		return DefaultSort
	}

	return Sort{Field: f, Dir: d}
}

// ParsePage falls back to page 1 and the default size on missing or malformed
// values, clamps the size to the maximum and caps the page number so the
// offset stays within maxOffset.
func ParsePage(page, limit string, limits PageLimits) Page {
	p := Page{Number: 1, Size: limits.Default}
	if n, err := strconv.Atoi(strings.TrimSpace(page)); err == nil && n > 0 {
		p.Number = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(limit)); err == nil && n > 0 {
		p.Size = n
	}
	if limits.Max > 0 && p.Size > limits.Max {
		p.Size = limits.Max
	}
	if p.Size <= 0 {
		p.Size = DefaultPageLimits.Default
	}
	if last := maxOffset/p.Size + 1; p.Number > last {
		p.Number = last
	}
	return p
}

// ParseOptions turns the option bag into a Query. Malformed filter values are a
// validation error; sort and paging never are.
func ParseOptions(scope Scope, o Options, limits PageLimits) (Query, error) {
	q := Query{
		Scope: scope,
		Sort:  ParseSort(o.SortBy, o.SortOrder, scope),
		Page:  ParsePage(o.Page, o.Limit, limits),
	}

	errs := make(map[string]string)

	q.Filters.Search = strings.TrimSpace(o.Search)
	if scope.Kind == ScopeAll {
		q.Filters.Username = strings.TrimSpace(o.UserFilter)
	}

	var err error
	if q.Filters.SizeFrom, err = parseSize(o.SizeFrom); err != nil {
		errs["size_from"] = "must be a non-negative integer"
	}
	if q.Filters.SizeTo, err = parseSize(o.SizeTo); err != nil {
		errs["size_to"] = "must be a non-negative integer"
	}
	if q.Filters.DateFrom, err = parseDate(o.DateFrom, false); err != nil {
		errs["date_from"] = "must be YYYY-MM-DD or RFC3339"
	}
	if q.Filters.DateTo, err = parseDate(o.DateTo, true); err != nil {
		errs["date_to"] = "must be YYYY-MM-DD or RFC3339"
	}

	if len(errs) > 0 {
		return Query{}, &apperr.ValidationError{Fields: errs}
	}

	return q, nil
}

func parseSize(s string) (*uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// parseDate accepts a calendar date or an RFC3339 instant. A bare date used as
// an upper bound covers the whole day.
func parseDate(s string, upper bool) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	if upper {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
