package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Common authentication errors.
var (
	ErrMissingAuthorization = errors.New("missing authorization")
	ErrInvalidAuthFormat    = errors.New("invalid authorization header format")
	ErrInvalidToken         = errors.New("invalid token")
	ErrMissingSubject       = errors.New("token has no subject")
)

// AuthService defines the interface for authentication operations. The
// abstraction separates HTTP handling from token validation, making both
// easier to test.
type AuthService interface {
	// ValidateRequest extracts and validates a bearer token from the
	// Authorization header. Returns the validated claims or an error.
	ValidateRequest(r *http.Request) (*Claims, error)
}

// authService implements AuthService with a shared HMAC signing key.
type authService struct {
	signingKey []byte
	verify     bool
	logger     *zap.Logger
}

// NewAuthService creates a new AuthService. When verify is false, token
// signatures are not checked (local development without an issuer); the
// claims are still parsed and the subject is still required.
func NewAuthService(signingKey string, verify bool, logger *zap.Logger) AuthService {
	return &authService{
		signingKey: []byte(signingKey),
		verify:     verify,
		logger:     logger,
	}
}

var _ AuthService = (*authService)(nil)

func (s *authService) ValidateRequest(r *http.Request) (*Claims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		s.logger.Debug("No bearer token in request",
			zap.String("path", r.URL.Path),
			zap.String("method", r.Method))
		return nil, ErrMissingAuthorization
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		s.logger.Debug("Invalid Authorization header format",
			zap.String("path", r.URL.Path))
		return nil, ErrInvalidAuthFormat
	}

	claims, err := s.parseToken(parts[1])
	if err != nil {
		s.logger.Debug("Token validation failed",
			zap.Error(err),
			zap.String("path", r.URL.Path))
		return nil, err
	}

	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}

	return claims, nil
}

func (s *authService) parseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	if !s.verify {
		if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err)
		}
		return claims, nil
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
