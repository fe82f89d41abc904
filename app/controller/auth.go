package controller

import (
	"errors"
	"net/http"

	dto "github.com/vibast-solutions/ms-go-webauth/app/dto/http"
	"github.com/vibast-solutions/ms-go-webauth/app/service"
	"github.com/vibast-solutions/ms-go-webauth/app/session"
	"github.com/vibast-solutions/ms-go-webauth/app/view"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Flash messages shown to the user.
const (
	MsgInvalidCredentials = "Invalid email or password."
	MsgEmailExists        = "Email already exists."
	MsgUnknownEmail       = "No account with that email found."
	MsgInvalidResetLink   = "Password reset link is invalid or has expired."
	MsgResetEmailSent     = "Check your inbox, a password reset link is on its way."
	MsgPasswordUpdated    = "Your password has been updated. You can log in now."
	MsgSignupSucceeded    = "Your account has been created. You can log in now."
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

func (c *AuthController) Home(ctx echo.Context) error {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return err
	}

	page := newPage(sess, "/", "Home")
	page.Info = sess.Flash(session.FlashInfo)
	return ctx.Render(http.StatusOK, view.Home, page)
}

func (c *AuthController) GetLogin(ctx echo.Context) error {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return err
	}

	page := newPage(sess, "/login", "Login")
	page.Error = sess.Flash(session.FlashError)
	page.Info = sess.Flash(session.FlashInfo)
	page.Old = map[string]string{"email": sess.Flash(session.FlashEmail)}
	return ctx.Render(http.StatusOK, view.Login, page)
}

func (c *AuthController) PostLogin(ctx echo.Context) error {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return err
	}

	var req dto.LoginRequest
	if err = ctx.Bind(&req); err != nil {
		logrus.WithError(err).Debug("Failed to bind login request")
		return echo.NewHTTPError(http.StatusBadRequest).SetInternal(err)
	}
	if err = ctx.Validate(&req); err != nil {
		logrus.WithField("email", req.Email).Debug("Login validation failed")
		return renderInvalid(ctx, err, view.Login, newPage(sess, "/login", "Login"), req.Old())
	}

	logrus.WithField("email", req.Email).Info("Login request received")
	user, err := c.authService.Login(ctx.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			logrus.WithField("email", req.Email).Warn("Login failed: invalid credentials")
			sess.AddFlash(session.FlashError, MsgInvalidCredentials)
			sess.AddFlash(session.FlashEmail, req.Email)
			return redirect(ctx, "/login")
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Login failed")
		return internalError(err)
	}

	sess.SetUser(user.SessionCopy())
	logrus.WithField("user_id", user.ID).Info("User logged in")
	return redirect(ctx, "/")
}

func (c *AuthController) GetSignup(ctx echo.Context) error {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return err
	}

	page := newPage(sess, "/signup", "Signup")
	page.Error = sess.Flash(session.FlashError)
	page.Old = map[string]string{"email": sess.Flash(session.FlashEmail)}
	return ctx.Render(http.StatusOK, view.Signup, page)
}

func (c *AuthController) PostSignup(ctx echo.Context) error {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return err
	}

	var req dto.SignupRequest
	if err = ctx.Bind(&req); err != nil {
		logrus.WithError(err).Debug("Failed to bind signup request")
		return echo.NewHTTPError(http.StatusBadRequest).SetInternal(err)
	}
	if err = ctx.Validate(&req); err != nil {
		logrus.WithField("email", req.Email).Debug("Signup validation failed")
		return renderInvalid(ctx, err, view.Signup, newPage(sess, "/signup", "Signup"), req.Old())
	}

	logrus.WithField("email", req.Email).Info("Signup request received")
	user, err := c.authService.Signup(ctx.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			logrus.WithField("email", req.Email).Warn("Signup failed: user already exists")
			sess.AddFlash(session.FlashError, MsgEmailExists)
			sess.AddFlash(session.FlashEmail, req.Email)
			return redirect(ctx, "/signup")
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Signup failed")
		return internalError(err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("User registered")

	sess.AddFlash(session.FlashInfo, MsgSignupSucceeded)
	return redirect(ctx, "/login")
}

// Logout always ends the session, whether or not a user was logged in.
func (c *AuthController) Logout(ctx echo.Context) error {
	sess, err := session.FromContext(ctx)
	if err != nil {
		logrus.WithError(err).Error("Logout without session")
		return redirect(ctx, "/")
	}

	if user, ok := sess.User(); ok {
		logrus.WithField("user_id", user.ID).Info("User logged out")
	}
	sess.Destroy()
	return redirect(ctx, "/")
}

func (c *AuthController) GetReset(ctx echo.Context) error {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return err
	}

	page := newPage(sess, "/reset", "Reset Password")
	page.Error = sess.Flash(session.FlashError)
	return ctx.Render(http.StatusOK, view.Reset, page)
}

func (c *AuthController) PostReset(ctx echo.Context) error {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return err
	}

	var req dto.ResetRequest
	if err = ctx.Bind(&req); err != nil {
		logrus.WithError(err).Debug("Failed to bind reset request")
		return echo.NewHTTPError(http.StatusBadRequest).SetInternal(err)
	}
	if err = ctx.Validate(&req); err != nil {
		logrus.WithField("email", req.Email).Debug("Reset request validation failed")
		return renderInvalid(ctx, err, view.Reset, newPage(sess, "/reset", "Reset Password"), req.Old())
	}

	logrus.WithField("email", req.Email).Info("Password reset requested")
	err = c.authService.RequestPasswordReset(ctx.Request().Context(), req.Email)
	switch {
	case err == nil, errors.Is(err, service.ErrResetConflict):
		sess.AddFlash(session.FlashInfo, MsgResetEmailSent)
		return redirect(ctx, "/")
	case errors.Is(err, service.ErrUserNotFound):
		logrus.WithField("email", req.Email).Warn("Password reset failed: user not found")
		sess.AddFlash(session.FlashError, MsgUnknownEmail)
		return redirect(ctx, "/reset")
	default:
		logrus.WithError(err).WithField("email", req.Email).Error("Password reset request failed")
		return internalError(err)
	}
}

func (c *AuthController) GetNewPassword(ctx echo.Context) error {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return err
	}

	token := ctx.Param("token")
	user, err := c.authService.ValidateResetToken(ctx.Request().Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			logrus.Debug("Reset link is invalid or expired")
			sess.AddFlash(session.FlashError, MsgInvalidResetLink)
			return redirect(ctx, "/reset")
		}
		logrus.WithError(err).Error("Failed to validate reset token")
		return internalError(err)
	}

	page := newPage(sess, "/new-password", "New Password")
	page.Error = sess.Flash(session.FlashError)
	page.Old = (&dto.NewPasswordRequest{UserID: formatID(user.ID), Token: token}).Old()
	return ctx.Render(http.StatusOK, view.NewPassword, page)
}

func (c *AuthController) PostNewPassword(ctx echo.Context) error {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return err
	}

	var req dto.NewPasswordRequest
	if err = ctx.Bind(&req); err != nil {
		logrus.WithError(err).Debug("Failed to bind new password request")
		return echo.NewHTTPError(http.StatusBadRequest).SetInternal(err)
	}
	if err = ctx.Validate(&req); err != nil {
		logrus.WithField("user_id", req.UserID).Debug("New password validation failed")
		return renderInvalid(ctx, err, view.NewPassword, newPage(sess, "/new-password", "New Password"), req.Old())
	}

	userID := req.ParsedUserID()
	err = c.authService.ResetPassword(ctx.Request().Context(), userID, req.Token, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			logrus.WithField("user_id", userID).Warn("Password reset failed: invalid or expired token")
			sess.AddFlash(session.FlashError, MsgInvalidResetLink)
			return redirect(ctx, "/reset")
		}
		logrus.WithError(err).WithField("user_id", userID).Error("Password reset failed")
		return internalError(err)
	}

	logrus.WithField("user_id", userID).Info("Password reset completed")
	sess.AddFlash(session.FlashInfo, MsgPasswordUpdated)
	return redirect(ctx, "/login")
}
