package http

import (
	"strconv"
	"strings"
)

type LoginRequest struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

func (r *LoginRequest) Old() map[string]string {
	return map[string]string{"email": r.Email}
}

type SignupRequest struct {
	Email           string `form:"email" validate:"required,email"`
	Password        string `form:"password" validate:"required,password"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
}

func (r *SignupRequest) Old() map[string]string {
	return map[string]string{"email": r.Email}
}

type ResetRequest struct {
	Email string `form:"email" validate:"required,email"`
}

func (r *ResetRequest) Old() map[string]string {
	return map[string]string{"email": r.Email}
}

type NewPasswordRequest struct {
	UserID   string `form:"user_id" validate:"required,userid"`
	Token    string `form:"token" validate:"required"`
	Password string `form:"password" validate:"required,password"`
}

func (r *NewPasswordRequest) Old() map[string]string {
	return map[string]string{"user_id": r.UserID, "token": r.Token}
}

// ParsedUserID is only meaningful after validation succeeded.
func (r *NewPasswordRequest) ParsedUserID() uint64 {
	id, _ := strconv.ParseUint(strings.TrimSpace(r.UserID), 10, 64)
	return id
}
