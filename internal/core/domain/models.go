package domain

import "errors"

// ErrDuplicate is returned by repositories when a unique constraint rejects a write.
var ErrDuplicate = errors.New("duplicate key")

// LoginRequest is the sign-in form.
type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// ChangePasswordRequest is the password change form.
type ChangePasswordRequest struct {
	CurrentPassword      string `form:"current-password" json:"current_password"`
	NewPassword          string `form:"new-password" json:"new_password"`
	NewPasswordConfirmed string `form:"new-password-confirmation" json:"new_password_confirmation"`
}

// IdentityResponse describes the caller to the client.
type IdentityResponse struct {
	User   User `json:"user"`
	IsDemo bool `json:"is_demo"`
}

// ExternalProvidersResponse lists the provider catalog with the caller's values.
type ExternalProvidersResponse struct {
	Names    []string          `json:"names"`
	Settings map[string]string `json:"settings"`
}

// Notice is the JSON replacement for a flashed message.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}
