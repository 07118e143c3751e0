package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"shorturl-api/internal/apperrors"
	"shorturl-api/internal/entities"
	"shorturl-api/internal/jwt"
	"shorturl-api/internal/models"
)

const invalidCredentialsMessage = "Incorrect email or password."

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	SignIn(ctx context.Context, req *models.SignInRequest) (*models.AuthResponse, error)
}

type authService struct {
	users      UserService
	jwtService *jwt.JWTService
}

// NewAuthService creates a new auth service
func NewAuthService(users UserService, jwtService *jwt.JWTService) AuthService {
	return &authService{
		users:      users,
		jwtService: jwtService,
	}
}

// Register creates a USER account and signs it in
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	user, err := s.users.Create(ctx, req.Email, req.Password, entities.RoleUser)
	if err != nil {
		return nil, err
	}

	return s.issue(user)
}

// SignIn authenticates a user and returns user info with JWT token
func (s *authService) SignIn(ctx context.Context, req *models.SignInRequest) (*models.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.New(apperrors.ErrInvalidCredentials, invalidCredentialsMessage)
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.New(apperrors.ErrInvalidCredentials, invalidCredentialsMessage)
	}

	return s.issue(user)
}

func (s *authService) issue(user *entities.User) (*models.AuthResponse, error) {
	token, err := s.jwtService.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &models.AuthResponse{
		User:  models.NewUserResponse(user),
		Token: token,
	}, nil
}
