package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"storyweaver/internal/domain"
	"storyweaver/internal/repository"
)

// Compile-time check to ensure authServiceImpl implements AuthService
var _ AuthService = (*authServiceImpl)(nil)

// authServiceImpl implements the AuthService interface.
type authServiceImpl struct {
	userRepo repository.UserRepository
	pepper   string
	logger   *zap.Logger
}

// NewAuthService creates a new instance of authServiceImpl.
func NewAuthService(userRepo repository.UserRepository, pepper string, logger *zap.Logger) AuthService {
	return &authServiceImpl{
		userRepo: userRepo,
		pepper:   pepper,
		logger:   logger.Named("AuthService"),
	}
}

// Register creates a new user.
func (s *authServiceImpl) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	log := s.logger.With(zap.String("username", username))

	if username == "" || password == "" {
		log.Warn("Registration attempt with empty username or password")
		return nil, domain.ErrFieldsRequired
	}

	hashedPassword, err := hashPassword(password, s.pepper)
	if err != nil {
		log.Error("Failed to hash password during registration", zap.Error(err))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hashedPassword,
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			log.Warn("Registration attempt for existing username")
			return nil, err
		}
		log.Error("Failed to create user via repository", zap.Error(err))
		return nil, err
	}

	log.Info("User registered successfully")
	return user, nil
}

// Login authenticates a user.
func (s *authServiceImpl) Login(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	log := s.logger.With(zap.String("username", username))

	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			log.Warn("Login failed: user not found")
			return nil, domain.ErrInvalidCredentials
		}
		log.Error("Login failed: error getting user from repository", zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !checkPasswordHash(password, user.PasswordHash, s.pepper) {
		log.Warn("Login failed: invalid password")
		return nil, domain.ErrInvalidCredentials
	}

	log.Info("User logged in successfully")
	return user, nil
}

// applyPepper applies HMAC-SHA256 using the pepper as the key.
func applyPepper(password, pepper string) []byte {
	h := hmac.New(sha256.New, []byte(pepper))
	h.Write([]byte(password))
	return h.Sum(nil)
}

// hashPassword generates a bcrypt hash of the password after applying the pepper.
func hashPassword(password, pepper string) (string, error) {
	pepperedPassword := applyPepper(password, pepper)
	bytes, err := bcrypt.GenerateFromPassword(pepperedPassword, bcrypt.DefaultCost)
	return string(bytes), err
}

// checkPasswordHash compares a plain text password (after applying pepper) with a stored hash.
func checkPasswordHash(password, hash, pepper string) bool {
	pepperedPassword := applyPepper(password, pepper)
	err := bcrypt.CompareHashAndPassword([]byte(hash), pepperedPassword)
	return err == nil
}
