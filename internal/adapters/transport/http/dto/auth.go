package dto

type SignupDTO struct {
	Username             string `json:"username" validate:"required,max=100"`
	Email                string `json:"email" validate:"required,email,max=100"`
	Telephone            string `json:"telephone" validate:"required,max=100"`
	Address              string `json:"address" validate:"max=300"`
	Password             string `json:"password" validate:"required"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required"`
}

type LoginDTO struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshDTO struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LogoutDTO carries the access token taken from the Authorization header
// and an optional refresh token from the body.
type LogoutDTO struct {
	AccessToken  string `json:"-" validate:"required"`
	RefreshToken string `json:"refresh_token"`
}

// UpdateProfileDTO only touches fields that are present in the request.
type UpdateProfileDTO struct {
	Username  *string `json:"username" validate:"omitempty,max=100"`
	Email     *string `json:"email" validate:"omitempty,email,max=100"`
	Telephone *string `json:"telephone" validate:"omitempty,max=100"`
	Address   *string `json:"address" validate:"omitempty,max=300"`
}

type ChangePasswordDTO struct {
	OldPassword          string `json:"old_password" validate:"required"`
	NewPassword          string `json:"new_password" validate:"required"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required"`
}

type ForgotPasswordDTO struct {
	Email string `json:"email" validate:"required"`
}

type ResetPasswordDTO struct {
	Password             string `json:"password" validate:"required"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required"`
}
