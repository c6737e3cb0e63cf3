package user

import (
	"file-storage-api/internal/domain/user"
)

func ToResponseUser(u user.User) User {
	return User{
		ID:        int64(u.ID),
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role.String(),
		CreatedAt: u.CreatedAt,
	}
}

func ToResponseUsers(us user.Users) Users {
	out := make(Users, len(us))
	for idx, u := range us {
		out[idx] = ToResponseUser(*u)
	}

	return out
}
