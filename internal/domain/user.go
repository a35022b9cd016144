package domain

import (
	"time"
)

// User is the identity store record. PasswordHash and Token are secret and
// never serialized; use ToResponse at every outward boundary.
type User struct {
	ID           string    `json:"-"`
	Email        string    `json:"-"`
	ScreenName   string    `json:"-"`
	PasswordHash string    `json:"-"`
	Token        string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// ToPrincipal projects the user onto the request identity.
func (u *User) ToPrincipal() *Principal {
	return &Principal{ID: u.ID, ScreenName: u.ScreenName}
}

// ToResponse builds the public projection of the user.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		ScreenName: u.ScreenName,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	ScreenName string    `json:"screen_name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SignUpRequest is the body of POST /sign-up.
type SignUpRequest struct {
	Credentials struct {
		Email                string `json:"email"`
		ScreenName           string `json:"screen_name"`
		Password             string `json:"password"`
		PasswordConfirmation string `json:"password_confirmation"`
	} `json:"credentials"`
}

// SignInRequest is the body of POST /sign-in.
type SignInRequest struct {
	Credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	} `json:"credentials"`
}

// ChangePasswordRequest is the body of PATCH /change-password.
type ChangePasswordRequest struct {
	Passwords struct {
		Old string `json:"old"`
		New string `json:"new"`
	} `json:"passwords"`
}

// SignInResponse carries the freshly issued token next to the public user.
type SignInResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}
