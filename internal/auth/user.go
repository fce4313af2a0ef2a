package auth

import "time"

// User is a registered account without its password hash.
type User struct {
	ID        int32      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FullName  string     `json:"fullName"`
	Role      string     `json:"role"`
	CreatedAt time.Time  `json:"createdAt"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

// StoredUser is a User with its bcrypt hash, as the repository returns it.
type StoredUser struct {
	User
	PasswordHash string
}

// NewUser is a registration request.
type NewUser struct {
	FullName        string `json:"fullName" validate:"notblank,max=100"`
	Username        string `json:"username" validate:"notblank,max=50"`
	Email           string `json:"email" validate:"required,email,max=100"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
}

// Credentials is a login request.
type Credentials struct {
	Username string `json:"username" validate:"notblank"`
	Password string `json:"password" validate:"required"`
}

// Session is returned by a successful login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}
