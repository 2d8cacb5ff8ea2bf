package models

// LoginRequest holds the credentials posted to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// RegisterRequest is sent upstream as multipart with an optional avatar.
type RegisterRequest struct {
	FullName string      `form:"fullName" validate:"required"`
	Username string      `form:"username" validate:"required"`
	Email    string      `form:"email" validate:"required,email"`
	Password string      `form:"password" validate:"required"`
	Avatar   *FileUpload `form:"-"`
}

// ChangePasswordRequest payload for updating password.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// UpdateAccountRequest carries the editable account fields.
type UpdateAccountRequest struct {
	FullName string `json:"fullName,omitempty" validate:"omitempty,min=1"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
}

// LoginResult is the upstream login payload.
type LoginResult struct {
	User        User   `json:"user"`
	AccessToken string `json:"accessToken"`
}

// LoginOutcome is what the gateway returns after a successful login.
type LoginOutcome struct {
	User     User   `json:"user"`
	Redirect string `json:"redirect"`
}

// FileUpload is an in-memory file destined for a multipart request.
type FileUpload struct {
	Name        string
	ContentType string
	Content     []byte
}
