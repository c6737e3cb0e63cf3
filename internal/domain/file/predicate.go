package file

import (
	"strings"
	"time"

	"file-storage-api/internal/domain/user"
)

type (
	Column string
	Op     string

	// Predicate is one bound condition of a listing filter. Storage adapters
	// translate predicates into their own query language; values are never
	// spliced into query text.
	Predicate struct {
		Column Column
		Op     Op
		Value  any
	}
)

const (
	ColID           Column = "id"
	ColOwnerID      Column = "owner_id"
	ColOriginalName Column = "original_name"
	ColUsername     Column = "username"
	ColFileSize     Column = "file_size"
	ColCreatedAt    Column = "created_at"

	OpEq Op = "eq"
	// OpContains is a case-insensitive substring match on a string value.
	OpContains Op = "contains"
	OpGte      Op = "gte"
	OpLte      Op = "lte"
)

// Predicates expands the query scope and filters into an AND-ed list.
// Omitted filters contribute nothing.
func (q Query) Predicates() []Predicate {
	var ps []Predicate

	if q.Scope.Kind == ScopeOwned {
		ps = append(ps, Predicate{Column: ColOwnerID, Op: OpEq, Value: q.Scope.OwnerID})
	}

	f := q.Filters
	if f.Search != "" {
		ps = append(ps, Predicate{Column: ColOriginalName, Op: OpContains, Value: f.Search})
	}
	if f.Username != "" && q.Scope.Kind == ScopeAll {
		ps = append(ps, Predicate{Column: ColUsername, Op: OpContains, Value: f.Username})
	}
	if f.SizeFrom != nil {
		ps = append(ps, Predicate{Column: ColFileSize, Op: OpGte, Value: *f.SizeFrom})
	}
	if f.SizeTo != nil {
		ps = append(ps, Predicate{Column: ColFileSize, Op: OpLte, Value: *f.SizeTo})
	}
	if f.DateFrom != nil {
		ps = append(ps, Predicate{Column: ColCreatedAt, Op: OpGte, Value: *f.DateFrom})
	}
	if f.DateTo != nil {
		ps = append(ps, Predicate{Column: ColCreatedAt, Op: OpLte, Value: *f.DateTo})
	}

	return ps
}

// Matches evaluates the predicate against an in-memory row.
func (p Predicate) Matches(f *File) bool {
	switch p.Column {
	case ColOwnerID:
		id, ok := p.Value.(user.ID)
		return ok && p.Op == OpEq && f.OwnerID == id
	case ColOriginalName:
		return matchString(p, f.OriginalName)
	case ColUsername:
		return matchString(p, f.OwnerUsername)
	case ColFileSize:
		v, ok := p.Value.(uint64)
		if !ok {
			return false
		}
		switch p.Op {
		case OpGte:
			return f.Size >= v
		case OpLte:
			return f.Size <= v
		case OpEq:
			return f.Size == v
		}
	case ColCreatedAt:
		v, ok := p.Value.(time.Time)
		if !ok {
			return false
		}
		switch p.Op {
		case OpGte:
			return !f.CreatedAt.Before(v)
		case OpLte:
			return !f.CreatedAt.After(v)
		case OpEq:
			return f.CreatedAt.Equal(v)
		}
	case ColID:
		v, ok := p.Value.(ID)
		return ok && p.Op == OpEq && f.ID == v
	}
	return false
}

func matchString(p Predicate, s string) bool {
	v, ok := p.Value.(string)
	if !ok {
		return false
	}
	switch p.Op {
	case OpContains:
		return strings.Contains(strings.ToLower(s), strings.ToLower(v))
	case OpEq:
		return s == v
	}
	return false
}

// MatchesAll reports whether f satisfies every predicate.
func MatchesAll(ps []Predicate, f *File) bool {
	for _, p := range ps {
		if !p.Matches(f) {
			return false
		}
	}
	return true
}

// Less orders two rows by the sort key, breaking ties by ascending id.
func (s Sort) Less(a, b *File) bool {
	c := s.compare(a, b)
	if c == 0 {
		return a.ID < b.ID
	}
	if s.Dir == SortDesc {
		return c > 0
	}
	return c < 0
}

func (s Sort) compare(a, b *File) int {
	switch s.Field {
	case SortID:
		return cmpOrdered(a.ID, b.ID)
	case SortOriginalName:
		return strings.Compare(a.OriginalName, b.OriginalName)
	case SortFileSize:
		return cmpOrdered(a.Size, b.Size)
	case SortUsername:
		return strings.Compare(a.OwnerUsername, b.OwnerUsername)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func cmpOrdered[T ~int64 | ~uint64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
