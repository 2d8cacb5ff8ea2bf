package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/newsroom-console/internal/models"
	appErrors "github.com/noah-isme/newsroom-console/pkg/errors"
)

// AuthHandler exposes the session store of the calling browser.
type AuthHandler struct{}

// NewAuthHandler creates a new handler.
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// Session godoc
// @Summary Current session
// @Description Returns the session of the calling browser; loading is true while restoration runs
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	b, ok := browserFromContext(c)
	if !ok {
		return
	}
	respond(c, http.StatusOK, b.Session.State())
}

// Login godoc
// @Summary Log in
// @Description Authenticates against the news API and opens the session of this browser
// @Tags Authentication
// @Accept json
// @Produce json
// @Param from query string false "View to return to"
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	b, ok := browserFromContext(c)
	if !ok {
		return
	}
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Please fill in all fields"))
		return
	}
	outcome, err := b.Session.Login(c.Request.Context(), req, c.Query("from"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, outcome)
}

// Register godoc
// @Summary Register
// @Description Creates an account; the caller must log in afterwards
// @Tags Authentication
// @Accept multipart/form-data
// @Produce json
// @Param fullName formData string true "Full name"
// @Param username formData string true "Username"
// @Param email formData string true "Email"
// @Param password formData string true "Password"
// @Param avatar formData file false "Avatar image"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	b, ok := browserFromContext(c)
	if !ok {
		return
	}
	var req models.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Please fill in all fields"))
		return
	}
	avatar, err := readUpload(c, "avatar", false, 0)
	if err != nil {
		fail(c, err)
		return
	}
	if avatar != nil {
		req.Avatar = &models.FileUpload{Name: avatar.Name, ContentType: avatar.ContentType, Content: avatar.Content}
	}
	user, err := b.Session.Register(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"user": user, "redirect": "/login"})
}

// Logout godoc
// @Summary Log out
// @Description Ends the session of this browser even when the news API cannot be reached
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	b, ok := browserFromContext(c)
	if !ok {
		return
	}
	b.Session.Logout(c.Request.Context())
	respond(c, http.StatusOK, gin.H{"redirect": "/"})
}

// UpdateAccount godoc
// @Summary Update account details
// @Tags Account
// @Accept json
// @Produce json
// @Param payload body models.UpdateAccountRequest true "Account fields"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /account [patch]
func (h *AuthHandler) UpdateAccount(c *gin.Context) {
	b, ok := browserFromContext(c)
	if !ok {
		return
	}
	var req models.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid account payload"))
		return
	}
	user, err := b.Session.UpdateAccount(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

// ChangePassword godoc
// @Summary Change password
// @Tags Account
// @Accept json
// @Produce json
// @Param payload body models.ChangePasswordRequest true "Passwords"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /account/password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	b, ok := browserFromContext(c)
	if !ok {
		return
	}
	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Both fields required"))
		return
	}
	if err := b.Session.ChangePassword(c.Request.Context(), req); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"changed": true})
}

// UpdateAvatar godoc
// @Summary Replace avatar
// @Tags Account
// @Accept multipart/form-data
// @Produce json
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} response.Envelope
// @Router /account/avatar [patch]
func (h *AuthHandler) UpdateAvatar(c *gin.Context) {
	h.updateImage(c, "avatar")
}

// UpdateCoverImage godoc
// @Summary Replace cover image
// @Tags Account
// @Accept multipart/form-data
// @Produce json
// @Param coverImage formData file true "Cover image"
// @Success 200 {object} response.Envelope
// @Router /account/cover-image [patch]
func (h *AuthHandler) UpdateCoverImage(c *gin.Context) {
	h.updateImage(c, "coverImage")
}

func (h *AuthHandler) updateImage(c *gin.Context, field string) {
	b, ok := browserFromContext(c)
	if !ok {
		return
	}
	upload, err := readUpload(c, field, true, 0)
	if err != nil {
		fail(c, err)
		return
	}
	file := models.FileUpload{Name: upload.Name, ContentType: upload.ContentType, Content: upload.Content}

	var user *models.User
	if field == "avatar" {
		user, err = b.Session.UpdateAvatar(c.Request.Context(), file)
	} else {
		user, err = b.Session.UpdateCoverImage(c.Request.Context(), file)
	}
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}
