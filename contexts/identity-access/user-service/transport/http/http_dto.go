package httptransport

import "time"

type RegisterRequest struct {
	Firstname string `json:"firstname" validate:"required"`
	Lastname  string `json:"lastname" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Username  string `json:"username" validate:"required,max=50"`
	Password  string `json:"password" validate:"required,min=8"`
}

type AuthenticateRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Firstname *string `json:"firstname,omitempty" validate:"omitempty,min=1,max=100"`
	Lastname  *string `json:"lastname,omitempty" validate:"omitempty,min=1,max=100"`
}

type UserResponse struct {
	ID          int64  `json:"id"`
	Firstname   string `json:"firstname"`
	Lastname    string `json:"lastname"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	AvatarColor string `json:"avatarColor"`
}

// AuthenticationResponse mirrors the token placed in the access cookie.
type AuthenticationResponse struct {
	AccessToken string       `json:"accessToken"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	User        UserResponse `json:"user"`
}

type SearchUsersResponse struct {
	Users []UserResponse `json:"users"`
}
