package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hackgods/clinic-calendar/internal/clinic"
	redisclient "github.com/hackgods/clinic-calendar/internal/redis"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired session token")
)

// SessionStore tracks which session ids are still live.
type SessionStore interface {
	Save(ctx context.Context, sessionID string, userID uuid.UUID, ttl time.Duration) error
	Owner(ctx context.Context, sessionID string) (uuid.UUID, error)
	Revoke(ctx context.Context, sessionID string, userID uuid.UUID) error
}

// Credentials is the signup and login form.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    uuid.UUID `json:"user_id"`
}

// Claims identify the user (subject) and the session (token id).
type Claims struct {
	jwt.RegisteredClaims
}

func (c Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

type Service struct {
	users    UserRepository
	sessions SessionStore
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
	log      *zap.Logger
}

func NewService(users UserRepository, sessions SessionStore, secret string, ttl time.Duration, log *zap.Logger) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
		log:      log,
	}
}

func (s *Service) SignUp(ctx context.Context, in Credentials) (*User, error) {
	in.Email = normalizeEmail(in.Email)
	if err := clinic.ValidateStruct(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.CreateUser(ctx, User{
		ID:           uuid.New(),
		Email:        in.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user signed up", zap.String("user_id", u.ID.String()))
	return u, nil
}

// SignIn checks the password and opens a new session.
func (s *Service) SignIn(ctx context.Context, in Credentials) (*Session, error) {
	u, err := s.users.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	sessionID := uuid.NewString()
	now := s.now()
	expiresAt := now.Add(s.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	if err := s.sessions.Save(ctx, sessionID, u.ID, s.ttl); err != nil {
		return nil, err
	}

	s.log.Info("user signed in", zap.String("user_id", u.ID.String()))
	return &Session{Token: signed, ExpiresAt: expiresAt, UserID: u.ID}, nil
}

// Authenticate verifies the token signature and expiry, then that its
// session is still live and owned by the token's subject.
func (s *Service) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := claims.UserID()
	if err != nil || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	owner, err := s.sessions.Owner(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, redisclient.ErrSessionNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if owner != userID {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// SignOut revokes the token's session. Later calls with the same token
// fail with ErrInvalidToken.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.Authenticate(ctx, token)
	if err != nil {
		return err
	}
	userID, _ := claims.UserID()

	if err := s.sessions.Revoke(ctx, claims.ID, userID); err != nil {
		if errors.Is(err, redisclient.ErrSessionNotFound) {
			return ErrInvalidToken
		}
		return err
	}

	s.log.Info("user signed out", zap.String("user_id", userID.String()))
	return nil
}
