package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"pureplay/pkg/account"
	"pureplay/pkg/auth"
	"pureplay/pkg/response"
)

type AuthHandler struct {
	accounts *account.Service
	issuer   *auth.Issuer
}

func NewAuthHandler(accounts *account.Service, issuer *auth.Issuer) *AuthHandler {
	return &AuthHandler{accounts: accounts, issuer: issuer}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

type checkPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

type resetPasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrInvalidEmail),
			errors.Is(err, account.ErrInvalidPassword),
			errors.Is(err, account.ErrDuplicateEmail):
			response.Fail(c, http.StatusBadRequest, err.Error())
		default:
			slog.Error("register failed", "email", req.Email, "err", err)
			response.Fail(c, http.StatusInternalServerError, "failed to create account")
		}
		return
	}

	token, err := h.issuer.IssueToken(user.Email, user.RoleList())
	if err != nil {
		slog.Error("token issue failed", "email", user.Email, "err", err)
		response.Fail(c, http.StatusInternalServerError, "failed to issue token")
		return
	}

	slog.Info("user registered", "email", user.Email)
	response.OK(c, authResponse{Email: user.Email, Token: token})
}

func (h *AuthHandler) LoginEmail(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrInvalidEmail),
			errors.Is(err, account.ErrUserNotFound),
			errors.Is(err, account.ErrInvalidCredentials):
			response.Fail(c, http.StatusBadRequest, err.Error())
		default:
			slog.Error("login failed", "email", req.Email, "err", err)
			response.Fail(c, http.StatusInternalServerError, "failed to log in")
		}
		return
	}

	token, err := h.issuer.IssueToken(user.Email, user.RoleList())
	if err != nil {
		slog.Error("token issue failed", "email", user.Email, "err", err)
		response.Fail(c, http.StatusInternalServerError, "failed to issue token")
		return
	}

	response.OK(c, authResponse{Email: user.Email, Token: token})
}

// CheckPassword re-verifies the caller's password and returns a short-lived
// re-auth token for sensitive flows like the settings screen.
func (h *AuthHandler) CheckPassword(c *gin.Context) {
	caller, ok := auth.FromGin(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "missing auth context")
		return
	}

	var req checkPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "password is required")
		return
	}

	if err := h.accounts.CheckPassword(c.Request.Context(), caller.Email, req.Password); err != nil {
		switch {
		case errors.Is(err, account.ErrUserNotFound):
			response.Fail(c, http.StatusNotFound, err.Error())
		case errors.Is(err, account.ErrInvalidCredentials):
			response.Fail(c, http.StatusBadRequest, "password incorrect")
		default:
			slog.Error("check password failed", "email", caller.Email, "err", err)
			response.Fail(c, http.StatusInternalServerError, "failed to check password")
		}
		return
	}

	reauth, err := h.issuer.IssueReauthToken(caller.Email)
	if err != nil {
		slog.Error("reauth token issue failed", "email", caller.Email, "err", err)
		response.Fail(c, http.StatusInternalServerError, "failed to issue token")
		return
	}
	response.OK(c, gin.H{"reauthToken": reauth})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	caller, ok := auth.FromGin(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "missing auth context")
		return
	}

	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "current and new passwords are required")
		return
	}

	err := h.accounts.ResetPassword(c.Request.Context(), caller.Email, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrUserNotFound):
			response.Fail(c, http.StatusNotFound, err.Error())
		case errors.Is(err, account.ErrInvalidCredentials),
			errors.Is(err, account.ErrInvalidPassword):
			response.Fail(c, http.StatusBadRequest, err.Error())
		default:
			slog.Error("reset password failed", "email", caller.Email, "err", err)
			response.Fail(c, http.StatusInternalServerError, "failed to reset password")
		}
		return
	}

	slog.Info("password reset", "email", caller.Email)
	response.OK(c, "password changed successfully")
}
