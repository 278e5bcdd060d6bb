package models

import "time"

// Role is the account role stored in the users table and embedded in
// session claims.
type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User represents a row in the users table.
type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Password    string    `json:"-"` // never serialize
	Role        Role      `json:"role"`
	PhoneNumber *string   `json:"phone_number,omitempty"`
	ProfilePic  *string   `json:"profile_pic,omitempty"`
	City        *string   `json:"city,omitempty"`
	Region      *string   `json:"region,omitempty"`
	ZipCode     *string   `json:"zip_code,omitempty"`
	Score       int       `json:"score"`
	LevelID     *string   `json:"level_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RegisterRequest is the JSON body for POST /auth/register and /auth/init.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the JSON body for POST /auth/login. Credential matches
// either a username or an email.
type LoginRequest struct {
	Credential string `json:"credential"`
	Password   string `json:"password"`
}

// UserUpdate carries the optional fields of a profile update. Nil means
// "leave unchanged".
type UserUpdate struct {
	Username    *string
	Email       *string
	Password    *string // already hashed by the caller
	Role        *Role
	PhoneNumber *string
	ProfilePic  *string
	City        *string
	Region      *string
	ZipCode     *string
	Score       *int
}

// LeaderboardEntry is one row of the score leaderboard.
type LeaderboardEntry struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
}
