package user

import (
	"time"
)

type (
	User struct {
		ID           int64
		Username     string
		Email        string
		PasswordHash string
		Role         string

		CreatedAt time.Time
	}
	Users []*User
)
