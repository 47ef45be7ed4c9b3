// Package auth supplies the session machinery the posting flows gate on:
// bcrypt password hashing, uuid session tokens kept in redis, and the gin
// middleware that turns a session cookie into a request user.
package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/coherentus/yatube/internal/models"
	"github.com/coherentus/yatube/internal/repository"
)

const SessionCookie = "session_token"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrUsernameExists  = errors.New("username already exists")
	ErrEmailExists     = errors.New("email already exists")
	ErrInvalidInput    = errors.New("invalid input")
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,30}$`)
)

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPasswordHash(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// SessionStore is the slice of the redis client sessions need.
type SessionStore interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSONFor(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type Service struct {
	users    *repository.UserRepository
	sessions SessionStore
	ttl      time.Duration
}

func NewService(users *repository.UserRepository, sessions SessionStore, ttl time.Duration) *Service {
	return &Service{users: users, sessions: sessions, ttl: ttl}
}

// ValidateCredentials checks signup input; usernames appear in URLs so they
// stay URL-safe.
func ValidateCredentials(email, username, password string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("%w: malformed email", ErrInvalidInput)
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("%w: username must be 3-30 characters of letters, digits, underscore or hyphen", ErrInvalidInput)
	}
	if len(password) < 6 || len(password) > 64 {
		return fmt.Errorf("%w: password must be 6-64 characters", ErrInvalidInput)
	}
	return nil
}

func (s *Service) Register(ctx context.Context, email, username, password string) (*models.User, error) {
	if err := ValidateCredentials(email, username, password); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("auth: check existing user: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	user := &models.User{Username: username, Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("auth: create user: %w", err)
	}
	return user, nil
}

// Login checks the password and opens a fresh session, returning its token.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", fmt.Errorf("auth: query user: %w", err)
	}
	if err := CheckPasswordHash(user.PasswordHash, password); err != nil {
		return nil, "", ErrInvalidPassword
	}

	token := uuid.NewString()
	if err := s.sessions.SetJSONFor(ctx, sessionKey(token), user.ID, s.ttl); err != nil {
		return nil, "", fmt.Errorf("auth: store session: %w", err)
	}
	return user, token, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Del(ctx, sessionKey(token))
}

// UserByToken resolves a session token to its user; expired or unknown tokens
// yield a nil user without error.
func (s *Service) UserByToken(ctx context.Context, token string) (*models.User, error) {
	var userID uint
	found, err := s.sessions.GetJSON(ctx, sessionKey(token), &userID)
	if err != nil || !found {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func sessionKey(token string) string { return "session:" + token }
