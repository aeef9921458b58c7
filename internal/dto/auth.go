package dto

// RegisterRequest holds the registration payload.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	NIM      string `json:"nim" validate:"required"`
	DOB      string `json:"dob" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
