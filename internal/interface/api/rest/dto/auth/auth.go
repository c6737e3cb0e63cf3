package auth

import (
	"file-storage-api/internal/interface/api/rest/dto/user"
)

type (
	LoginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	RegisterRequest struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	TokenData struct {
		Token     string     `json:"token"`
		TokenType string     `json:"token_type"`
		User      *user.User `json:"user,omitempty"`
	}
)
