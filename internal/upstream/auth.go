package upstream

import (
	"context"
	"net/http"

	"github.com/noah-isme/newsroom-console/internal/models"
	"github.com/noah-isme/newsroom-console/pkg/transport"
)

// AuthAPI wraps the /users endpoints.
type AuthAPI struct {
	doer transport.Doer
}

// Register creates an account. It never opens a session.
func (a *AuthAPI) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	form := &transport.Form{Fields: map[string]string{
		"fullName": req.FullName,
		"username": req.Username,
		"email":    req.Email,
		"password": req.Password,
	}}
	if req.Avatar != nil {
		form.Files = append(form.Files, fileField("avatar", req.Avatar))
	}
	var user models.User
	err := a.doer.Do(ctx, transport.Request{
		Method:   http.MethodPost,
		Path:     "/users/register",
		Form:     form,
		Fallback: "Registration failed",
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a user summary and an access token.
func (a *AuthAPI) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error) {
	var result models.LoginResult
	err := a.doer.Do(ctx, transport.Request{
		Method:   http.MethodPost,
		Path:     "/users/login",
		Body:     req,
		Fallback: "Login failed",
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Logout ends the upstream session.
func (a *AuthAPI) Logout(ctx context.Context) error {
	return a.doer.Do(ctx, transport.Request{Method: http.MethodPost, Path: "/users/logout", Fallback: "Logout failed"}, nil)
}

// CurrentUser returns the identity behind the stored access token.
func (a *AuthAPI) CurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := a.doer.Do(ctx, transport.Request{Method: http.MethodGet, Path: "/users/current-user"}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword updates the password of the current user.
func (a *AuthAPI) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error {
	return a.doer.Do(ctx, transport.Request{
		Method:   http.MethodPost,
		Path:     "/users/change-password",
		Body:     req,
		Fallback: "Password change failed",
	}, nil)
}

// UpdateAccount patches account fields and returns the updated user.
func (a *AuthAPI) UpdateAccount(ctx context.Context, req models.UpdateAccountRequest) (*models.User, error) {
	var user models.User
	err := a.doer.Do(ctx, transport.Request{
		Method:   http.MethodPatch,
		Path:     "/users/update-account",
		Body:     req,
		Fallback: "Update failed",
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateAvatar uploads a new avatar image.
func (a *AuthAPI) UpdateAvatar(ctx context.Context, file models.FileUpload) (*models.User, error) {
	return a.uploadImage(ctx, "/users/avatar", "avatar", file, "Avatar update failed")
}

// UpdateCoverImage uploads a new cover image.
func (a *AuthAPI) UpdateCoverImage(ctx context.Context, file models.FileUpload) (*models.User, error) {
	return a.uploadImage(ctx, "/users/cover-image", "coverImage", file, "Cover image update failed")
}

func (a *AuthAPI) uploadImage(ctx context.Context, path, field string, file models.FileUpload, fallback string) (*models.User, error) {
	var user models.User
	err := a.doer.Do(ctx, transport.Request{
		Method:   http.MethodPatch,
		Path:     path,
		Form:     &transport.Form{Files: []transport.File{fileField(field, &file)}},
		Fallback: fallback,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func fileField(field string, file *models.FileUpload) transport.File {
	return transport.File{Field: field, Name: file.Name, ContentType: file.ContentType, Content: file.Content}
}
