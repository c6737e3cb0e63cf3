package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"file-storage-api/internal/domain/apperr"
	"file-storage-api/internal/domain/user"
)

type userRepo struct {
	a access
}

func (r *userRepo) FetchUserByID(_ context.Context, id user.ID) (*user.User, error) {
	var out *user.User
	err := r.a.read(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return apperr.ErrNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r *userRepo) FetchUserByUsername(_ context.Context, username string) (*user.User, error) {
	var out *user.User
	err := r.a.read(func(st *state) error {
		for _, u := range st.users {
			if u.Username == username {
				u := u
				out = &u
				return nil
			}
		}
		return apperr.ErrNotFound
	})
	return out, err
}

func (r *userRepo) FetchUsers(_ context.Context) (user.Users, error) {
	var out user.Users
	err := r.a.read(func(st *state) error {
		for _, u := range st.users {
			u := u
			out = append(out, &u)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r *userRepo) CreateUser(_ context.Context, req user.User) (*user.User, error) {
	var out *user.User
	err := r.a.write(func(st *state) error {
		for _, u := range st.users {
			if u.Username == req.Username || strings.EqualFold(u.Email, req.Email) {
				return apperr.ErrConflict
			}
		}
		st.nextUser++
		req.ID = st.nextUser
		req.CreatedAt = time.Now().UTC()
		st.users[req.ID] = req
		u := req
		out = &u
		return nil
	})
	return out, err
}

func (r *userRepo) UpdateRole(_ context.Context, id user.ID, role user.Role) (*user.User, error) {
	var out *user.User
	err := r.a.write(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return apperr.ErrNotFound
		}
		u.Role = role
		st.users[id] = u
		out = &u
		return nil
	})
	return out, err
}

func (r *userRepo) DeleteUser(_ context.Context, id user.ID) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.users[id]; !ok {
			return apperr.ErrNotFound
		}
		for _, f := range st.files {
			if f.OwnerID == id {
				return apperr.ErrConflict
			}
		}
		delete(st.users, id)
		return nil
	})
}

// LockUser only checks existence: transactions are already serialised.
func (r *userRepo) LockUser(_ context.Context, id user.ID) error {
	return r.a.read(func(st *state) error {
		if _, ok := st.users[id]; !ok {
			return apperr.ErrNotFound
		}
		return nil
	})
}
