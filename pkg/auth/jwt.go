package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Role string

const (
	RoleOwner    Role = "owner"
	RoleCustomer Role = "customer"
)

// Claims carried by bearer tokens. Owners are scoped to one business,
// customers to their own appointments.
type Claims struct {
	Role       Role       `json:"role"`
	BusinessID *uuid.UUID `json:"business_id,omitempty"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("invalid token")

type JWTService interface {
	Generate(claims Claims, ttl time.Duration) (string, error)
	Validate(token string) (*Claims, error)
}

type jwtService struct {
	secret []byte
	issuer string
	leeway time.Duration
}

func NewJWTService(secret, issuer string) JWTService {
	return &jwtService{secret: []byte(secret), issuer: issuer, leeway: 5 * time.Second}
}

func (s *jwtService) Generate(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.Issuer = s.issuer
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *jwtService) Validate(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenMalformed
		}
		return s.secret, nil
	}, jwt.WithLeeway(s.leeway), jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	switch claims.Role {
	case RoleOwner:
		if claims.BusinessID == nil {
			return nil, fmt.Errorf("%w: owner token without business_id", ErrInvalidToken)
		}
	case RoleCustomer:
		if claims.CustomerID == nil {
			return nil, fmt.Errorf("%w: customer token without customer_id", ErrInvalidToken)
		}
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}
	return claims, nil
}
