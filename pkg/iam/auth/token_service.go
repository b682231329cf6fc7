package auth

import (
	"errors"
	"time"

	"github.com/Abraxas-365/talentmatch/pkg/kernel"
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the validated content of an access token
type TokenClaims struct {
	UserID    kernel.UserID
	Scopes    []string
	ExpiresAt time.Time
}

// TokenService issues and validates access tokens
type TokenService interface {
	GenerateAccessToken(userID kernel.UserID, scopes []string, ttl time.Duration) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
}

type accessClaims struct {
	Scopes []string `json:"scopes,omitempty"`
	jwt.RegisteredClaims
}

// JWTTokenService signs HS256 tokens with a shared secret
type JWTTokenService struct {
	secret []byte
	issuer string
}

func NewJWTTokenService(secret, issuer string) *JWTTokenService {
	return &JWTTokenService{
		secret: []byte(secret),
		issuer: issuer,
	}
}

func (s *JWTTokenService) GenerateAccessToken(userID kernel.UserID, scopes []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := accessClaims{
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", ErrRegistry.NewWithCause(CodeInvalidToken, err)
	}
	return signed, nil
}

func (s *JWTTokenService) ValidateAccessToken(tokenString string) (*TokenClaims, error) {
	claims := &accessClaims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, ErrRegistry.NewWithCause(CodeInvalidToken, err)
	}

	if claims.Subject == "" {
		return nil, ErrRegistry.NewWithCause(CodeInvalidToken, errors.New("token has no subject"))
	}

	return &TokenClaims{
		UserID:    kernel.UserID(claims.Subject),
		Scopes:    claims.Scopes,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
