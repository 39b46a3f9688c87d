package handlers

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/playtube/playtube-api/internal/application"
	"github.com/playtube/playtube-api/internal/interface/middleware"
	"github.com/playtube/playtube-api/pkg/apperr"
	"github.com/playtube/playtube-api/pkg/helpers"
	"github.com/playtube/playtube-api/pkg/response"
	"github.com/playtube/playtube-api/pkg/validation"
)

type UserHandler struct {
	Svc     *userapp.Service
	Logger  *logrus.Logger
	Cookies *helpers.CookieManager
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

// respondErr maps a tagged domain error onto the response envelope. The
// application layer never writes responses itself.
func (h *UserHandler) respondErr(c *gin.Context, err error) {
	e := apperr.From(err)
	if e.Status == http.StatusInternalServerError {
		h.Logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	response.Error[any](c, e.Status, e.Message, nil)
}

// formUpload stages a multipart file for the media store. The returned
// closer is a no-op when the field is absent.
func formUpload(c *gin.Context, field string) (*userapp.Upload, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, func() {}, err
	}
	return openUpload(fh)
}

func openUpload(fh *multipart.FileHeader) (*userapp.Upload, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	up := &userapp.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Reader:      f,
	}
	return up, func() { _ = f.Close() }, nil
}

type registerRequest struct {
	FullName string `form:"full_name" binding:"required"`
	Email    string `form:"email" binding:"required,email"`
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// Register POST /api/users/register (multipart: fields + avatar, optional cover_image)
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	avatar, closeAvatar, err := formUpload(c, "avatar")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "avatar file is required", nil)
		return
	}
	defer closeAvatar()

	var cover *userapp.Upload
	if coverUp, closeCover, cErr := formUpload(c, "cover_image"); cErr == nil {
		cover = coverUp
		defer closeCover()
	}

	u, err := h.Svc.Register(c.Request.Context(), userapp.RegisterInput{
		FullName:   req.FullName,
		Email:      req.Email,
		Username:   req.Username,
		Password:   req.Password,
		Avatar:     avatar,
		CoverImage: cover,
	})
	if err != nil {
		h.respondErr(c, err)
		return
	}
	response.Success(c, http.StatusCreated, u, "user registered successfully")
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

// Login POST /api/users/login
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, pair, err := h.Svc.Login(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{
		"user":          u,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}, "user logged in successfully")
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh POST /api/users/refresh-token (token from cookie or body)
func (h *UserHandler) Refresh(c *gin.Context) {
	token, _ := c.Cookie("refresh_token")
	if token == "" {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			token = req.RefreshToken
		}
	}
	if token == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}

	pair, err := h.Svc.Refresh(c.Request.Context(), token)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}, "access token refreshed successfully")
}

// Logout POST /api/users/logout (auth)
func (h *UserHandler) Logout(c *gin.Context) {
	h.Svc.Logout(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, nil, "user logged out")
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePassword POST /api/users/change-password (auth)
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ChangePassword(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), req.OldPassword, req.NewPassword); err != nil {
		h.respondErr(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "password changed successfully")
}

// CurrentUser GET /api/users/current-user (auth)
func (h *UserHandler) CurrentUser(c *gin.Context) {
	u, err := h.Svc.CurrentUser(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		h.respondErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "user fetched successfully")
}

type updateAccountRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email" binding:"omitempty,email"`
}

// UpdateAccount PATCH /api/users/update-account (auth)
func (h *UserHandler) UpdateAccount(c *gin.Context) {
	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.UpdateAccount(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), req.FullName, req.Email)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "account details updated successfully")
}

// UpdateAvatar PATCH /api/users/avatar (auth, multipart)
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	up, closeUp, err := formUpload(c, "avatar")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "avatar file is required", nil)
		return
	}
	defer closeUp()

	u, err := h.Svc.UpdateAvatar(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), up)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "avatar image updated successfully")
}

// UpdateCoverImage PATCH /api/users/cover-image (auth, multipart)
func (h *UserHandler) UpdateCoverImage(c *gin.Context) {
	up, closeUp, err := formUpload(c, "cover_image")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "cover image file is required", nil)
		return
	}
	defer closeUp()

	u, err := h.Svc.UpdateCoverImage(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), up)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "cover image updated successfully")
}

// ChannelProfile GET /api/users/c/:username (optional auth)
func (h *UserHandler) ChannelProfile(c *gin.Context) {
	p, err := h.Svc.ChannelProfile(c.Request.Context(), c.Param("username"), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		h.respondErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, "user channel fetched successfully")
}
