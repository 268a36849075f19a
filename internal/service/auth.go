package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"finance-tracker/internal/apperr"
	"finance-tracker/internal/models"
	"finance-tracker/internal/repository"
	"finance-tracker/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// Register creates a new user with hashed password and returns it with
// a signed token.
func (s *Service) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if fields := validation.Registration(name, email, password); len(fields) > 0 {
		return nil, "", apperr.Validation(fields...)
	}

	if _, err := s.users.FindUserByEmail(ctx, email); err == nil {
		return nil, "", apperr.Conflict("Email already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", apperr.Internal(err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", apperr.Internal(fmt.Errorf("failed to hash password: %w", err))
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, "", apperr.Conflict("Email already exists")
		}
		return nil, "", apperr.Internal(err)
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return nil, "", apperr.Internal(err)
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, token, nil
}

// Login authenticates a user and returns it with a signed token. Every
// failure mode reports the same message to avoid account probing.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if fields := validation.Login(email, password); len(fields) > 0 {
		return nil, "", apperr.Validation(fields...)
	}

	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, "", apperr.Unauthorized("Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperr.Unauthorized("Invalid credentials")
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return nil, "", apperr.Internal(err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return user, token, nil
}

// Profile returns the authenticated user.
func (s *Service) Profile(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return user, nil
}

func (s *Service) generateToken(userID primitive.ObjectID) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID.Hex(),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.config.JWTExpire)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}
