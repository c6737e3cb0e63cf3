package user

import (
	"time"
)

type (
	User struct {
		ID        int64     `json:"id"`
		Username  string    `json:"username"`
		Email     string    `json:"email"`
		Role      string    `json:"role"`
		CreatedAt time.Time `json:"created_at"`
	}
	Users []User

	RoleRequest struct {
		Role string `json:"role"`
	}

	UserData struct {
		User User `json:"user"`
	}
	UsersData struct {
		Users Users `json:"users"`
	}
)
