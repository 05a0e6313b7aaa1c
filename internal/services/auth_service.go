package services

import (
	"context"
	"fmt"
	"time"

	"furnitureshop/internal/apperr"
	"furnitureshop/internal/models"
	"furnitureshop/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// AuthService registers users and issues and verifies bearer tokens.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
	timeout    time.Duration
}

// NewAuthService creates a new AuthService. A non-positive tokenTTL falls
// back to one hour. timeout bounds each storage call.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL, timeout time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: tokenTTL,
		timeout:    timeout,
	}
}

// RegisterUser hashes the user's password and saves the user.
func (s *AuthService) RegisterUser(ctx context.Context, user *models.User) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if existing, err := s.userRepo.GetByUsername(ctx, user.Username); err == nil && existing != nil {
		return apperr.Conflict(nil, "username '%s' already taken", user.Username)
	} else if err != nil && !apperr.IsKind(err, apperr.KindNotFound) {
		return err
	}
	if existing, err := s.userRepo.GetByEmail(ctx, user.Email); err == nil && existing != nil {
		return apperr.Conflict(nil, "email '%s' already registered", user.Email)
	} else if err != nil && !apperr.IsKind(err, apperr.KindNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)

	if err := s.userRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}

// LoginUser authenticates a user and returns a signed token.
func (s *AuthService) LoginUser(ctx context.Context, username, password string) (string, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if apperr.IsKind(err, apperr.KindStorage) {
			return "", err
		}
		return "", apperr.Unauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", apperr.Unauthorized("invalid credentials")
	}

	return s.IssueToken(user)
}

// IssueToken signs an HS256 token carrying the user's id and username.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      now.Add(s.tokenDurat).Unix(),
		"iat":      now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, apperr.Unauthorized("invalid token: %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperr.Unauthorized("invalid token")
	}
	if id, _ := claims["user_id"].(string); id == "" {
		return nil, apperr.Unauthorized("invalid token: missing subject")
	}
	return claims, nil
}
