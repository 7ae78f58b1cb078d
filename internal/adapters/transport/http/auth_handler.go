package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mohamedaliSwe/mimi-style/internal/adapters/transport/http/dto"
	"github.com/mohamedaliSwe/mimi-style/internal/adapters/transport/http/middleware"
	authsvc "github.com/mohamedaliSwe/mimi-style/internal/app/auth/service"
	customErrors "github.com/mohamedaliSwe/mimi-style/internal/domain/store/errors"
	lg "github.com/mohamedaliSwe/mimi-style/internal/infra/log"
	"go.uber.org/zap"
)

var errNoSession = customErrors.NewUnauthorized("Missing access token")

type AuthHandler struct {
	svc authsvc.Service
	log *zap.Logger
}

func NewAuthHandler(svc authsvc.Service, log *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: log}
}

func (h *AuthHandler) register(public, private *gin.RouterGroup) {
	public.POST("/signup", h.signup)
	public.GET("/verify/:token", h.verify)
	public.POST("/login", h.login)
	public.POST("/refresh", h.refresh)
	public.POST("/password/forget", h.forgotPassword)
	public.POST("/password/reset/:token", h.resetPassword)

	private.POST("/logout", h.logout)
	private.GET("/profile", h.profile)
	private.PUT("/profile", h.updateProfile)
	private.DELETE("/profile", h.deleteProfile)
	private.PUT("/password/change", h.changePassword)
}

func (h *AuthHandler) signup(c *gin.Context) {
	var body dto.SignupDTO
	if !bindJSON(c, h.log, &body, false) {
		return
	}
	h.log.Info("/signup", lg.Email(body.Email))

	user, err := h.svc.Signup(c.Request.Context(), body)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully. Check your email to verify your account.",
		"user":    dto.NewUserResponse(user),
	})
}

func (h *AuthHandler) verify(c *gin.Context) {
	if _, err := h.svc.Verify(c.Request.Context(), c.Param("token")); err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email verified successfully"})
}

func (h *AuthHandler) login(c *gin.Context) {
	var body dto.LoginDTO
	if !bindJSON(c, h.log, &body, false) {
		return
	}
	h.log.Info("/login", lg.Email(body.Email))

	pair, err := h.svc.Login(c.Request.Context(), body)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTokenResponse(pair))
}

func (h *AuthHandler) refresh(c *gin.Context) {
	var body dto.RefreshDTO
	if !bindJSON(c, h.log, &body, true) {
		return
	}
	if body.RefreshToken == "" {
		body.RefreshToken = middleware.BearerToken(c)
	}

	pair, err := h.svc.Refresh(c.Request.Context(), body)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTokenResponse(pair))
}

func (h *AuthHandler) logout(c *gin.Context) {
	var body dto.LogoutDTO
	if !bindJSON(c, h.log, &body, true) {
		return
	}
	body.AccessToken = middleware.AccessToken(c)

	if err := h.svc.Logout(c.Request.Context(), body); err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// caller resolves the user id of the authenticated request.
func (h *AuthHandler) caller(c *gin.Context) (uuid.UUID, bool) {
	claims, ok := middleware.Claims(c)
	if !ok {
		handleError(c, h.log, errNoSession)
		return uuid.Nil, false
	}
	id, err := claims.Identity()
	if err != nil {
		handleError(c, h.log, errNoSession)
		return uuid.Nil, false
	}
	return id.UserID, true
}

func (h *AuthHandler) profile(c *gin.Context) {
	uid, ok := h.caller(c)
	if !ok {
		return
	}
	user, err := h.svc.GetProfile(c.Request.Context(), uid)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

func (h *AuthHandler) updateProfile(c *gin.Context) {
	uid, ok := h.caller(c)
	if !ok {
		return
	}
	var body dto.UpdateProfileDTO
	if !bindJSON(c, h.log, &body, false) {
		return
	}

	user, err := h.svc.UpdateProfile(c.Request.Context(), uid, body)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    dto.NewUserResponse(user),
	})
}

func (h *AuthHandler) deleteProfile(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		handleError(c, h.log, errNoSession)
		return
	}
	if err := h.svc.DeleteProfile(c.Request.Context(), claims); err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}

func (h *AuthHandler) changePassword(c *gin.Context) {
	uid, ok := h.caller(c)
	if !ok {
		return
	}
	var body dto.ChangePasswordDTO
	if !bindJSON(c, h.log, &body, false) {
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), uid, body); err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

func (h *AuthHandler) forgotPassword(c *gin.Context) {
	var body dto.ForgotPasswordDTO
	if !bindJSON(c, h.log, &body, false) {
		return
	}
	h.log.Info("/password/forget", lg.Email(body.Email))

	if err := h.svc.ForgotPassword(c.Request.Context(), body); err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "If the email is registered, a password reset link has been sent"})
}

func (h *AuthHandler) resetPassword(c *gin.Context) {
	var body dto.ResetPasswordDTO
	if !bindJSON(c, h.log, &body, true) {
		return
	}

	if err := h.svc.ResetPassword(c.Request.Context(), c.Param("token"), body); err != nil {
		// unlike verification, an unknown reset link is reported as missing
		if customErrors.IsInvalidToken(err) {
			c.JSON(http.StatusNotFound, gin.H{"message": customErrors.Message(err)})
			return
		}
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}
