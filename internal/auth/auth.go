package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"go.uber.org/zap"
)

// AdminSubject is the JWT subject of admin sessions
const AdminSubject = "admin"

var (
	ErrInvalidCredentials = errors.New("invalid password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AuthService checks the admin password and issues session tokens
type AuthService struct {
	authenticator Authenticator
	jwtSecret     []byte
	sessionTTL    time.Duration
	logger        *zap.Logger
	now           func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(authenticator Authenticator, jwtSecret string, sessionTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtSecret:     []byte(jwtSecret),
		sessionTTL:    sessionTTL,
		logger:        logger,
		now:           time.Now,
	}
}

// Login verifies the admin password and returns a signed session token
func (s *AuthService) Login(password string) (string, time.Time, error) {
	if !s.authenticator.Authenticate(password) {
		s.logger.Warn("Admin login rejected")
		return "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.GenerateJWT()
	if err != nil {
		return "", time.Time{}, err
	}

	s.logger.Info("Admin logged in", zap.Time("expires_at", expiresAt))
	return token, expiresAt, nil
}

// GenerateJWT creates a new admin session token
func (s *AuthService) GenerateJWT() (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.sessionTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Subject:   AdminSubject,
		IssuedAt:  now.Unix(),
		ExpiresAt: expiresAt.Unix(),
	})

	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateJWT parses a session token and checks signature, expiry and subject
func (s *AuthService) ValidateJWT(tokenString string) (*jwt.StandardClaims, error) {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject != AdminSubject {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
