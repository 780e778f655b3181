package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/addictsagenda/agenda/internal/models"
)

// ErrInvalidCredentials is returned on login with an unknown user or a
// wrong password. The two cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUserExists is returned when registering a login that is taken.
var ErrUserExists = errors.New("user already exists")

// tokenTTL is how long an issued session token stays valid.
const tokenTTL = 30 * 24 * time.Hour

// AuthRepository defines the persistence operations required by the
// authentication service.
type AuthRepository interface {
	// UserExists returns true if a user with the given login exists.
	UserExists(ctx context.Context, login string) (bool, error)
	// RegisterUser creates a new user record.
	RegisterUser(ctx context.Context, login string, passwordHash []byte) error
	// GetUser fetches a user's credentials; sql.ErrNoRows when unknown.
	GetUser(ctx context.Context, login string) (*models.User, error)
	// DeleteUser removes the user record and, via cascade, their vault.
	DeleteUser(ctx context.Context, login string) error
}

// AuthService implements registration and login, hashing passwords with
// bcrypt and issuing signed JWTs as session tokens.
type AuthService struct {
	repo   AuthRepository
	secret []byte
}

// NewAuthService constructs an AuthService. secret signs session tokens
// and must match the middleware verifying them.
func NewAuthService(repo AuthRepository, secret []byte) *AuthService {
	return &AuthService{repo: repo, secret: secret}
}

// Register creates a new user and returns a session token for them.
// Returns ErrUserExists when the login is taken.
func (s *AuthService) Register(ctx context.Context, login, password string) (string, error) {
	exists, err := s.repo.UserExists(ctx, login)
	if err != nil {
		return "", err
	}
	if exists {
		return "", ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	if err := s.repo.RegisterUser(ctx, login, hash); err != nil {
		return "", err
	}
	return s.issueToken(login)
}

// Login verifies the user's password and returns a session token.
func (s *AuthService) Login(ctx context.Context, login, password string) (string, error) {
	user, err := s.repo.GetUser(ctx, login)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.issueToken(login)
}

// DeleteUser removes the user's account and all their data.
func (s *AuthService) DeleteUser(ctx context.Context, login string) error {
	return s.repo.DeleteUser(ctx, login)
}

// issueToken signs a JWT carrying the login as subject.
func (s *AuthService) issueToken(login string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   login,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
