package entity

import "time"

// User is a stored account. PasswordHash is a bcrypt hash and is never
// serialized.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// Credentials is the login request body as it travels over the wire.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is the login response body. Token is a bearer token for the
// protected endpoints; Message carries the failure reason when Success is
// false.
type LoginResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token,omitempty"`
}
