package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/AnthoniusHendriyanto/hotel-auth-service/config"
	"github.com/AnthoniusHendriyanto/hotel-auth-service/internal/auth/domain"
	autherror "github.com/AnthoniusHendriyanto/hotel-auth-service/internal/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const refreshTokenBytes = 32

type TokenService struct {
	secret             []byte
	issuer             string
	audience           string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	now                func() time.Time
}

type JWTCustomClaims struct {
	jwt.RegisteredClaims
	UserID         int64  `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"nombre"`
	RoleID         int64  `json:"rol_id"`
	RoleName       string `json:"rol_nombre"`
	EmployeeNumber string `json:"numero_empleado"`
	Department     string `json:"departamento"`
}

func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{
		secret:             []byte(cfg.JWTSecret),
		issuer:             cfg.JWTIssuer,
		audience:           cfg.JWTAudience,
		AccessTokenExpiry:  cfg.AccessTokenTTL(),
		RefreshTokenExpiry: cfg.RefreshTokenTTL(),
		now:                time.Now,
	}
}

func (ts *TokenService) IssueAccessToken(claims domain.AccessClaims) (string, time.Time, error) {
	now := ts.now()
	expiresAt := now.Add(ts.AccessTokenExpiry)

	accessClaims := JWTCustomClaims{
		UserID:         claims.UserID,
		Email:          claims.Email,
		Name:           claims.Name,
		RoleID:         claims.RoleID,
		RoleName:       claims.RoleName,
		EmployeeNumber: claims.EmployeeNumber,
		Department:     claims.Department,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    ts.issuer,
			Audience:  jwt.ClaimStrings{ts.audience},
			Subject:   fmt.Sprintf("%d", claims.UserID),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(ts.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// IssueRefreshToken returns an opaque hex token with 256 bits of entropy. It
// carries no claims; it is only a lookup key for its session.
func (ts *TokenService) IssueRefreshToken() (string, time.Time, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, err
	}
	return hex.EncodeToString(buf), ts.now().Add(ts.RefreshTokenExpiry), nil
}

func (ts *TokenService) GetAccessTokenExpiry() time.Duration {
	return ts.AccessTokenExpiry
}

// VerifyAccessToken checks signature, algorithm, issuer, audience and expiry.
// Every failure collapses into ErrInvalidToken.
func (ts *TokenService) VerifyAccessToken(tokenString string) (*domain.AccessClaims, error) {
	claims := &JWTCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ts.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(ts.issuer),
		jwt.WithAudience(ts.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.now),
	)
	if err != nil || !token.Valid {
		return nil, autherror.ErrInvalidToken
	}
	if claims.UserID <= 0 {
		return nil, autherror.ErrInvalidToken
	}

	return &domain.AccessClaims{
		UserID:         claims.UserID,
		Email:          claims.Email,
		Name:           claims.Name,
		RoleID:         claims.RoleID,
		RoleName:       claims.RoleName,
		EmployeeNumber: claims.EmployeeNumber,
		Department:     claims.Department,
		ExpiresAt:      claims.ExpiresAt.Time,
	}, nil
}
