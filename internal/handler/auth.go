package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/sports-complex/internal/middleware"
	"github.com/iliyamo/sports-complex/internal/service"
)

// dbTimeout bounds the store work of one request.
const dbTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// AuthHandler serves the /auth endpoints.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(a *service.AuthService) *AuthHandler { return &AuthHandler{Auth: a} }

// ----- DTOs -----

type registerReq struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type forgotPasswordReq struct {
	Email string `json:"email"`
}

type resetPasswordReq struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// Register: create a PLAYER account and sign it in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	sess, err := h.Auth.Register(ctx, service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, sess)
}

// Login: verify credentials and issue an access token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	sess, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, sess)
}

// Me returns the account attached by the JWT middleware.
func (h *AuthHandler) Me(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required"})
	}
	return c.JSON(http.StatusOK, u)
}

// ChangePassword rotates the caller's password.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required"})
	}
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Auth.ChangePassword(ctx, u, req.CurrentPassword, req.NewPassword); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password changed"})
}

// ForgotPassword always answers with the same message so callers cannot
// probe which emails have accounts.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordReq
	_ = c.Bind(&req)
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Auth.ForgotPassword(ctx, req.Email); err != nil && service.KindOf(err) != service.KindValidation {
		c.Logger().Errorf("forgot-password: %v", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": service.MsgForgotPasswordGeneric})
}

// ResetPassword redeems a reset token.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Auth.ResetPassword(ctx, req.Token, req.NewPassword); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password has been reset"})
}
