package file

import (
	"fmt"
	"math"
	"strings"

	domain "file-storage-api/internal/domain/file"
	"file-storage-api/internal/domain/user"
)

var columns = map[domain.Column]string{
	domain.ColID:           "f.id",
	domain.ColOwnerID:      "f.user_id",
	domain.ColOriginalName: "f.original_name",
	domain.ColUsername:     "u.username",
	domain.ColFileSize:     "f.file_size",
	domain.ColCreatedAt:    "f.created_at",
}

var sortColumns = map[domain.SortField]string{
	domain.SortID:           "f.id",
	domain.SortOriginalName: "f.original_name",
	domain.SortFileSize:     "f.file_size",
	domain.SortCreatedAt:    "f.created_at",
	domain.SortUsername:     "u.username",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// where renders predicates as a WHERE clause with positional arguments.
// Column names come from a fixed map; values are always bound.
func where(ps []domain.Predicate) (string, []any, error) {
	if len(ps) == 0 {
		return "", nil, nil
	}

	conds := make([]string, 0, len(ps))
	args := make([]any, 0, len(ps))

	for _, p := range ps {
		col, ok := columns[p.Column]
		if !ok {
			return "", nil, fmt.Errorf("unsupported filter column %q", p.Column)
		}

		v := bindValue(p.Value)
		n := len(args) + 1

		switch p.Op {
		case domain.OpEq:
			conds = append(conds, fmt.Sprintf("%s = $%d", col, n))
		case domain.OpContains:
			s, ok := v.(string)
			if !ok {
				return "", nil, fmt.Errorf("contains needs a string value for %q", p.Column)
			}
			v = "%" + likeEscaper.Replace(s) + "%"
			conds = append(conds, fmt.Sprintf(`%s ILIKE $%d ESCAPE '\'`, col, n))
		case domain.OpGte:
			conds = append(conds, fmt.Sprintf("%s >= $%d", col, n))
		case domain.OpLte:
			conds = append(conds, fmt.Sprintf("%s <= $%d", col, n))
		default:
			return "", nil, fmt.Errorf("unsupported filter op %q", p.Op)
		}

		args = append(args, v)
	}

	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func bindValue(v any) any {
	switch t := v.(type) {
	case uint64:
		if t > math.MaxInt64 {
			return int64(math.MaxInt64)
		}
		return int64(t)
	case user.ID:
		return int64(t)
	case domain.ID:
		return int64(t)
	}
	return v
}

func orderBy(s domain.Sort) string {
	col, ok := sortColumns[s.Field]
	if !ok {
		col = sortColumns[domain.DefaultSort.Field]
	}
	dir := "DESC"
	if s.Dir == domain.SortAsc {
		dir = "ASC"
	}
	if col == "f.id" {
		return fmt.Sprintf(" ORDER BY f.id %s", dir)
	}
	return fmt.Sprintf(" ORDER BY %s %s, f.id ASC", col, dir)
}

func listQuery(q domain.Query) (string, []any, error) {
	w, args, err := where(q.Predicates())
	if err != nil {
		return "", nil, err
	}
	n := len(args)
	sql := selectColumns + w + orderBy(q.Sort) + fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2)
	args = append(args, q.Page.Size, q.Page.Offset())

	return sql, args, nil
}

func countQuery(q domain.Query) (string, []any, error) {
	w, args, err := where(q.Predicates())
	if err != nil {
		return "", nil, err
	}
	return countMatching + w, args, nil
}
