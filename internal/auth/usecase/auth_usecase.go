package usecase

import (
	"errors"
	"time"

	"docusense-backend/pkg/config"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin grants access to tenant administration endpoints. Any caller
// without it is denied; there is no implicit admin.
const RoleAdmin = "admin"

// Claims is the identity carried by an API token.
type Claims struct {
	Subject  string
	TenantID string
	Roles    []string
}

// IsAdmin reports whether the caller carries the admin role.
func (c *Claims) IsAdmin() bool {
	for _, role := range c.Roles {
		if role == RoleAdmin {
			return true
		}
	}
	return false
}

// AuthUsecase validates and issues API tokens.
type AuthUsecase interface {
	ValidateToken(tokenString string) (*Claims, error)
	// GenerateToken issues a signed token, mainly for operator tooling and
	// tests.
	GenerateToken(subject, tenantID string, roles []string, expiry time.Duration) (string, error)
}

type authUsecase struct {
	config *config.Config
}

// NewAuthUsecase creates a new instance of authUsecase.
func NewAuthUsecase(cfg *config.Config) AuthUsecase {
	return &authUsecase{config: cfg}
}

func (u *authUsecase) GenerateToken(subject, tenantID string, roles []string, expiry time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":       subject,
		"tenant_id": tenantID,
		"roles":     roles,
		"exp":       time.Now().Add(expiry).Unix(),
		"iat":       time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(u.config.JWTSecret))
}

func (u *authUsecase) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(u.config.JWTSecret), nil
	})

	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	subject, ok := claims["sub"].(string)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	result := &Claims{Subject: subject}
	if tenantID, ok := claims["tenant_id"].(string); ok {
		result.TenantID = tenantID
	}
	if rawRoles, ok := claims["roles"].([]interface{}); ok {
		for _, r := range rawRoles {
			if role, ok := r.(string); ok {
				result.Roles = append(result.Roles, role)
			}
		}
	}

	return result, nil
}
