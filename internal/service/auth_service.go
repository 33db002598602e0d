package service

import (
	"errors"
	"fmt"
	"time"

	"hospital-resource-booking/internal/models"
	"hospital-resource-booking/internal/repository"
	"hospital-resource-booking/pkg/apperrors"
	"hospital-resource-booking/pkg/utils"
)

type AuthService struct {
	userRepo         *repository.UserRepository
	userHospitalRepo *repository.UserHospitalRepository
}

func NewAuthService(userRepo *repository.UserRepository, userHospitalRepo *repository.UserHospitalRepository) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		userHospitalRepo: userHospitalRepo,
	}
}

// LoginResponse represents the response structure for login
type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(username, password string) (*LoginResponse, error) {
	// Find user by username
	user, err := s.userRepo.FindUserByUsername(username)
	if err != nil {
		return nil, errors.New("invalid credentials")
	}

	// Compare password
	if !utils.ComparePassword(user.PasswordHash, password) {
		return nil, errors.New("invalid credentials")
	}

	return s.issueTokens(user)
}

// Register creates a new user account. Only user and authority roles may
// self-register; admins are provisioned out of band.
func (s *AuthService) Register(username, password, role string) (*LoginResponse, error) {
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && role != models.RoleAuthority {
		return nil, fmt.Errorf("%w: role must be user or authority", apperrors.ErrValidation)
	}

	// Check if username already exists
	existingUser, err := s.userRepo.FindUserByUsername(username)
	if err == nil && existingUser != nil {
		return nil, errors.New("username already exists")
	}

	if err := utils.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	// Hash the password
	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
	}
	if err := s.userRepo.CreateUser(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueTokens(user)
}

// RefreshAccessToken generates a new access token from a refresh token
func (s *AuthService) RefreshAccessToken(refreshToken string) (string, error) {
	// Hash the refresh token
	tokenHash := utils.HashRefreshToken(refreshToken)

	// Find refresh token in database
	token, err := s.userRepo.FindRefreshTokenByHash(tokenHash)
	if err != nil {
		return "", errors.New("invalid or revoked refresh token")
	}

	// Check if token is expired
	if time.Now().After(token.ExpiresAt) {
		return "", errors.New("refresh token expired")
	}

	// Generate new access token with a fresh hospital scope
	scope, err := s.hospitalScope(&token.User)
	if err != nil {
		return "", err
	}
	accessToken, err := utils.GenerateAccessToken(token.User.ID, token.User.Role, scope)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}

	return accessToken, nil
}

// hospitalScope resolves the hospital IDs embedded in authority tokens.
// Users and admins carry no scope: users never pass hospital-gated routes
// and admins bypass them.
func (s *AuthService) hospitalScope(user *models.User) ([]uint, error) {
	if user.Role != models.RoleAuthority {
		return nil, nil
	}
	ids, err := s.userHospitalRepo.GetUserHospitals(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load hospital assignments: %w", err)
	}
	return ids, nil
}

// Logout revokes a refresh token
func (s *AuthService) Logout(refreshToken string) error {
	// Hash the refresh token
	tokenHash := utils.HashRefreshToken(refreshToken)

	// Revoke the token
	if err := s.userRepo.RevokeRefreshTokenByHash(tokenHash); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	return nil
}

func (s *AuthService) issueTokens(user *models.User) (*LoginResponse, error) {
	scope, err := s.hospitalScope(user)
	if err != nil {
		return nil, err
	}

	// Generate access token
	accessToken, err := utils.GenerateAccessToken(user.ID, user.Role, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	// Generate refresh token
	refreshToken, err := utils.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	// Hash and store refresh token
	tokenHash := utils.HashRefreshToken(refreshToken)
	refreshTokenModel := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: tokenHash,
		ExpiresAt: time.Now().Add(utils.GetRefreshTokenExpiry()),
	}
	if err := s.userRepo.CreateRefreshToken(refreshTokenModel); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: UserResponse{
			ID:       user.ID,
			Username: user.Username,
			Role:     user.Role,
		},
	}, nil
}
