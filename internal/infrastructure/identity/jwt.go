package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/openmuni/casework/internal/application/port"
	"github.com/openmuni/casework/internal/domain/entity"
)

var (
	// ErrInvalidCredentials is returned when the user id or secret is wrong
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is returned when a bearer token fails validation
	ErrInvalidToken = errors.New("invalid token")
)

// Config holds token signing configuration
type Config struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration
}

// claims carries the role alongside the registered JWT claims. The role in the
// token is informational; the store is authoritative at resolve time.
type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Service implements port.Identity with HMAC-signed JWTs backed by the user store
type Service struct {
	users  port.UserRepository
	config Config
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new identity service
func NewService(users port.UserRepository, config Config, logger *zap.Logger) *Service {
	return &Service{
		users:  users,
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// Issue authenticates a user by id and secret and returns a signed token
func (s *Service) Issue(ctx context.Context, userID, secret string) (string, time.Time, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("load user: %w", err)
	}
	if user == nil || !user.Active {
		return "", time.Time{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.SecretHash), []byte(secret)); err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}

	now := s.now()
	expiresAt := now.Add(s.config.TokenTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: user.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	s.logger.Info("Token issued", zap.String("user_id", user.ID), zap.Time("expires_at", expiresAt))
	return signed, expiresAt, nil
}

// Resolve validates a bearer token and returns the user it identifies. The
// user's role and active flag are read from the store, not the token, so a
// role change or deactivation takes effect immediately.
func (s *Service) Resolve(ctx context.Context, tokenString string) (*entity.User, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithIssuer(s.config.Issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || c.Subject == "" {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, c.Subject)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil || !user.Active {
		return nil, ErrInvalidToken
	}

	return user, nil
}

// HashSecret returns the bcrypt hash for a user secret, for seeding and admin
// tooling
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(hash), nil
}

// Verify interface compliance
var _ port.Identity = (*Service)(nil)
