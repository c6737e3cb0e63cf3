package user

import (
	"time"
)

type (
	ID   int64
	Role string
	User struct {
		ID           ID
		Username     string
		Email        string
		PasswordHash string
		Role         Role

		CreatedAt time.Time
	}
	Users []*User
)

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

func (r Role) String() string { return string(r) }
