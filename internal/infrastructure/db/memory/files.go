package memory

import (
	"context"
	"sort"
	"time"

	"file-storage-api/internal/domain/apperr"
	"file-storage-api/internal/domain/file"
	"file-storage-api/internal/domain/user"
)

type fileRepo struct {
	a access
}

func withOwner(st *state, f file.File) *file.File {
	f.OwnerUsername = st.users[f.OwnerID].Username
	return &f
}

func (r *fileRepo) CountByOwner(_ context.Context, ownerID user.ID) (int, error) {
	var n int
	err := r.a.read(func(st *state) error {
		for _, f := range st.files {
			if f.OwnerID == ownerID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *fileRepo) CreateFile(_ context.Context, req file.File) (*file.File, error) {
	var out *file.File
	err := r.a.write(func(st *state) error {
		if _, ok := st.users[req.OwnerID]; !ok {
			return apperr.ErrNotFound
		}
		st.nextFile++
		req.ID = st.nextFile
		req.DownloadCount = 0
		req.CreatedAt = time.Now().UTC()
		st.files[req.ID] = req
		out = withOwner(st, req)
		return nil
	})
	return out, err
}

func (r *fileRepo) FetchFileByID(_ context.Context, id file.ID) (*file.File, error) {
	var out *file.File
	err := r.a.read(func(st *state) error {
		f, ok := st.files[id]
		if !ok {
			return apperr.ErrNotFound
		}
		out = withOwner(st, f)
		return nil
	})
	return out, err
}

func (r *fileRepo) FetchAccessibleFile(_ context.Context, id file.ID, requesterID user.ID) (*file.File, error) {
	var out *file.File
	err := r.a.read(func(st *state) error {
		f, ok := st.files[id]
		if !ok || (f.OwnerID != requesterID && !f.IsPublic) {
			return apperr.ErrNotFound
		}
		out = withOwner(st, f)
		return nil
	})
	return out, err
}

func (r *fileRepo) FetchOwnerFiles(_ context.Context, ownerID user.ID) (file.Files, error) {
	var out file.Files
	err := r.a.read(func(st *state) error {
		for _, f := range st.files {
			if f.OwnerID == ownerID {
				out = append(out, withOwner(st, f))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *fileRepo) IncrementDownloadCount(_ context.Context, id file.ID) error {
	return r.a.write(func(st *state) error {
		f, ok := st.files[id]
		if !ok {
			return apperr.ErrNotFound
		}
		f.DownloadCount++
		st.files[id] = f
		return nil
	})
}

func (r *fileRepo) DeleteFile(_ context.Context, id file.ID) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.files[id]; !ok {
			return apperr.ErrNotFound
		}
		delete(st.files, id)
		return nil
	})
}

func (r *fileRepo) matching(st *state, q file.Query) file.Files {
	ps := q.Predicates()
	var out file.Files
	for _, f := range st.files {
		row := withOwner(st, f)
		if file.MatchesAll(ps, row) {
			out = append(out, row)
		}
	}
	return out
}

func (r *fileRepo) ListFiles(_ context.Context, q file.Query) (file.Files, error) {
	var out file.Files
	err := r.a.read(func(st *state) error {
		rows := r.matching(st, q)
		sort.Slice(rows, func(i, j int) bool { return q.Sort.Less(rows[i], rows[j]) })

		from := q.Page.Offset()
		if from < 0 || from >= len(rows) {
			return nil
		}
		to := from + q.Page.Size
		if to < from || to > len(rows) {
			to = len(rows)
		}
		out = rows[from:to]
		return nil
	})
	return out, err
}

func (r *fileRepo) CountMatching(_ context.Context, q file.Query) (int, error) {
	var n int
	err := r.a.read(func(st *state) error {
		n = len(r.matching(st, q))
		return nil
	})
	return n, err
}
