package user

const (
	SelectUsers = `
		SELECT id, username, email, password_hash, role, created_at
		FROM users
		ORDER BY created_at DESC, id ASC
	`
	SelectUserByID = `
		SELECT id, username, email, password_hash, role, created_at
		FROM users
		WHERE id = $1
	`
	SelectUserByUsername = `
		SELECT id, username, email, password_hash, role, created_at
		FROM users
		WHERE username = $1
	`
	InsertUser = `
		INSERT INTO users (username, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, username, email, password_hash, role, created_at
	`
	UpdateUserRole = `
		UPDATE users
		SET role = $1
		WHERE id = $2
		RETURNING id, username, email, password_hash, role, created_at
	`
	DeleteUserByID = `DELETE FROM users WHERE id = $1`
	LockUserByID   = `SELECT id FROM users WHERE id = $1 FOR UPDATE`
)
