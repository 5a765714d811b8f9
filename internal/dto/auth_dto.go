package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RegisterRequest struct {
	FullName string `json:"full_name" validate:"required,min=2,max=100"`
	Username string `json:"username"  validate:"required,min=1,max=150"`
	Email    string `json:"email"     validate:"required,email"`
	Password string `json:"password"  validate:"required,min=8"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1"`
	Password string `json:"password" validate:"required,min=4"`
}

// CreateUserRequest is the admin-only variant of registration: roles come
// from the caller instead of defaulting to USER.
type CreateUserRequest struct {
	FullName string   `json:"full_name" validate:"required,min=2,max=100"`
	Username string   `json:"username"  validate:"required,min=1,max=150"`
	Email    string   `json:"email"     validate:"required,email"`
	Password string   `json:"password"  validate:"required,min=8"`
	Roles    []string `json:"roles"     validate:"required,min=1,dive,required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type AuthResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	FullName     string   `json:"full_name"`
	Roles        []string `json:"roles"`
	TokenType    string   `json:"token_type"` // always "Bearer"
}

type UserResponse struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Roles    []string `json:"roles"`
}
