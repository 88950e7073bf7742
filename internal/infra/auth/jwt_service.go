// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"time"

	"greenpoints/config"
	"greenpoints/internal/domain/entity"
	"greenpoints/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService builds the session token service. A missing secret is a startup error.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Session == "" {
		return nil, errors.New("session secret must be provided")
	}

	ttl := cfg.Session.TTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}

	return &jwtService{
		secret: []byte(cfg.SecretKey.Session),
		issuer: cfg.Session.Issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue signs an HS256 token binding the actor's account id and role.
func (s *jwtService) Issue(actor entity.Actor) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := &service.Claims{
		AccountID: actor.AccountID,
		Role:      actor.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.AccountID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "failed to sign session token")
	}

	return token, expiresAt, nil
}

// Validate parses tokenString and checks signature, expiry and role.
func (s *jwtService) Validate(tokenString string) (*service.Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &service.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse session token")
	}
	if !token.Valid {
		return nil, errors.New("session token is invalid")
	}

	if !entity.Role(claims.Role).IsValid() {
		return nil, errors.Errorf("session token carries unknown role %q", claims.Role)
	}

	return claims, nil
}
