package dto

import (
	"hotel/infras/jwt"
	userModel "hotel/internal/domains/user/model"
	userDto "hotel/internal/domains/user/model/dto"
	"hotel/shared/constant"
	"hotel/shared/failure"
	gModel "hotel/shared/model"
	"hotel/shared/validator"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MessageRegisterRequired = "Username and password are required"
	MessageLoginRequired    = "Username and password required"
	MessageInvalidLogin     = "Invalid credentials"
	MessageInvalidRefresh   = "Invalid refresh token"
	MessageWrongPassword    = "Current password is incorrect"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

func (r *RegisterRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	r.Password = strings.TrimSpace(r.Password)

	if r.Username == constant.Empty || r.Password == constant.Empty {
		return failure.BadRequestFromString(MessageRegisterRequired)
	}

	return validator.ValidateStruct(r) //nolint:wrapcheck
}

// ToModel builds an active admin account. Registration is open the way the house API has it.
func (r *RegisterRequest) ToModel(hashedPassword string, at time.Time) userModel.User {
	return userModel.User{
		ID:       uuid.NewString(),
		Username: r.Username,
		Password: hashedPassword,
		Role:     constant.RoleAdmin,
		Active:   true,
		Metadata: gModel.NewMetadata(at, r.Username),
	}
}

type RegisterResponse struct {
	User  userDto.UserResponse `json:"user"`
	Token string               `json:"token"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate answers 401 on missing credentials, matching the login contract.
func (l *LoginRequest) Validate() error {
	l.Username = strings.TrimSpace(l.Username)
	l.Password = strings.TrimSpace(l.Password)

	if l.Username == constant.Empty || l.Password == constant.Empty {
		return failure.Unauthorized(MessageLoginRequired)
	}

	return nil
}

type UpdateLastLoginRequest struct {
	LastLogin time.Time `db:"last_login"`
}

type UpdatePasswordRequest struct {
	Password string `db:"password"`
}

type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}

func (l *LoginResponse) FromTokenPair(tokenPair *jwt.TokenPair) {
	l.Token = tokenPair.AccessToken
	l.RefreshToken = tokenPair.RefreshToken
	l.TokenType = tokenPair.TokenType
	l.ExpiresIn = tokenPair.ExpiresIn
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

func (r *RefreshTokenRequest) Validate() error {
	r.RefreshToken = strings.TrimSpace(r.RefreshToken)

	return validator.ValidateStruct(r) //nolint:wrapcheck
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=6,max=72"`
}

func (c *ChangePasswordRequest) Validate() error {
	return validator.ValidateStruct(c) //nolint:wrapcheck
}
