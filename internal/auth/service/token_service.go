package service

//go:generate mockgen -destination=../../mocks/mock_token_generator.go -package=mocks github.com/consulio/auth-service/internal/auth/service TokenGenerator

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClass tags the two bearer-token classes. Each class is signed with its
// own secret so a leaked refresh secret cannot forge access tokens.
type TokenClass string

const (
	TokenClassAccess  TokenClass = "access"
	TokenClassRefresh TokenClass = "refresh"
)

type TokenGenerator interface {
	GeneratePair(userID, email, role string) (*TokenPair, error)
	Verify(raw string, class TokenClass) (*JWTCustomClaims, error)
	Decode(raw string) *JWTCustomClaims
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
}

type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

type JWTCustomClaims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
}

type TokenService struct {
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

func NewTokenService(accessSecret, refreshSecret string, accessMinutes, refreshMinutes int) *TokenService {
	return &TokenService{
		AccessTokenSecret:  accessSecret,
		RefreshTokenSecret: refreshSecret,
		AccessTokenExpiry:  time.Duration(accessMinutes) * time.Minute,
		RefreshTokenExpiry: time.Duration(refreshMinutes) * time.Minute,
	}
}

// GeneratePair mints one access and one refresh token with independent jtis.
func (ts *TokenService) GeneratePair(userID, email, role string) (*TokenPair, error) {
	now := time.Now()

	accessExp := now.Add(ts.AccessTokenExpiry)
	accessToken, err := ts.sign(userID, email, role, TokenClassAccess, now, accessExp)
	if err != nil {
		return nil, err
	}

	refreshExp := now.Add(ts.RefreshTokenExpiry)
	refreshToken, err := ts.sign(userID, email, role, TokenClassRefresh, now, refreshExp)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (ts *TokenService) sign(userID, email, role string, class TokenClass, issuedAt, expiresAt time.Time) (string, error) {
	claims := JWTCustomClaims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		TokenType: string(class),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ts.secretFor(class))
}

func (ts *TokenService) secretFor(class TokenClass) []byte {
	if class == TokenClassRefresh {
		return []byte(ts.RefreshTokenSecret)
	}
	return []byte(ts.AccessTokenSecret)
}

// Verify parses and validates raw under the given class. A token signed for
// the other class fails the signature check outright; the token_type claim is
// checked as well in case both secrets are ever configured equal.
func (ts *TokenService) Verify(raw string, class TokenClass) (*JWTCustomClaims, error) {
	claims := &JWTCustomClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ts.secretFor(class), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	if claims.TokenType != string(class) {
		return nil, fmt.Errorf("unexpected token class %q", claims.TokenType)
	}

	return claims, nil
}

// Decode parses raw without verifying the signature or expiry. It is meant
// for best-effort housekeeping (extracting the subject and expiry of a token
// being revoked) and returns nil when the token is not even parseable.
func (ts *TokenService) Decode(raw string) *JWTCustomClaims {
	claims := &JWTCustomClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil
	}
	return claims
}

func (ts *TokenService) GetAccessTokenExpiry() time.Duration {
	return ts.AccessTokenExpiry
}

func (ts *TokenService) GetRefreshTokenExpiry() time.Duration {
	return ts.RefreshTokenExpiry
}
