package model

import "time"

// Role identifiers stored in users.role_id and carried in the JWT "role"
// claim.
const (
	RoleAdmin uint8 = 1
	RoleUser  uint8 = 2
)

// User represents an application user record as stored in the `users`
// table.  PasswordHash never leaves the server.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name, Phone  – profile details editable by the user.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hashed password.
//  RoleID       – 1 for admins, 2 for customers.
//  IsActive     – inactive accounts cannot log in.
type User struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	RoleID       uint8     `json:"role_id"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RefreshToken models an entry in the `refresh_tokens` table.  The plain
// token is not stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
