package domain

import (
	"errors"
	"time"
)

var (
	MessageSuccessRegister        = "Registration successful"
	MessageSuccessRegisterPending = "Registration successful, please verify your email"
	MessageSuccessLogin           = "Login successful"
	MessageSuccessLogout          = "Logout successful"
	MessageSuccessGetProfile      = "success get profile"
	MessageSuccessUpdateProfile   = "Profile updated successfully"
	MessageSuccessRefreshToken    = "Token refreshed successfully"
	MessageSuccessVerifyEmail     = "Email verified successfully"
	MessageSuccessResetPassword   = "Password reset email sent"
	MessageSuccessUpdatePassword  = "Password updated successfully"

	MessageFailedRegister       = "failed to register"
	MessageFailedLogin          = "Invalid credentials"
	MessageFailedGetProfile     = "Profile not found"
	MessageFailedUpdateProfile  = "failed to update profile"
	MessageFailedRefreshToken   = "Invalid refresh token"
	MessageFailedVerifyEmail    = "failed to verify email"
	MessageFailedResetPassword  = "failed to send password reset email"
	MessageFailedUpdatePassword = "failed to update password"

	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrUserNotFound       = errors.New("user not found")
)

type (
	RegisterRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"fullName"`
	}

	LoginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	UpdateProfileRequest struct {
		FullName       *string `json:"fullName"`
		AvatarURL      *string `json:"avatarUrl"`
		ShowAuthorName *bool   `json:"showAuthorName"`
	}

	RefreshTokenRequest struct {
		RefreshToken string `json:"refreshToken" validate:"required"`
	}

	ResetPasswordRequest struct {
		Email string `json:"email"`
	}

	// UpdatePasswordRequest is sent either with a bearer token or with the
	// reset token mailed by the password reset flow.
	UpdatePasswordRequest struct {
		Password string `json:"password"`
		Token    string `json:"token"`
	}

	UserResponse struct {
		ID             string    `json:"id"`
		Email          string    `json:"email"`
		FullName       string    `json:"fullName"`
		AvatarURL      *string   `json:"avatarUrl"`
		ShowAuthorName bool      `json:"showAuthorName"`
		CreatedAt      time.Time `json:"createdAt"`
		UpdatedAt      time.Time `json:"updatedAt"`
	}

	Session struct {
		AccessToken  string    `json:"accessToken"`
		RefreshToken string    `json:"refreshToken"`
		TokenType    string    `json:"tokenType"`
		ExpiresIn    int64     `json:"expiresIn"`
		ExpiresAt    time.Time `json:"expiresAt"`
	}

	// AuthResponse carries a nil Session while email verification is pending.
	AuthResponse struct {
		User    UserResponse `json:"user"`
		Session *Session     `json:"session"`
	}

	ProfileResponse struct {
		User UserResponse `json:"user"`
	}

	SessionResponse struct {
		Session Session `json:"session"`
	}
)
