// Package jwt emite y valida los tokens HS256 de acceso a la API.
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles dentro de una empresa. owner puede editar los datos de la empresa.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

var (
	ErrEmptySecret    = errors.New("jwt: secret vacío")
	ErrMissingCompany = errors.New("jwt: token sin company_id")
)

// ValidRole indica si role es owner o member.
func ValidRole(role string) bool {
	return role == RoleOwner || role == RoleMember
}

// Claims claims estándar más el tenant y el rol. Todas las consultas se filtran por CompanyID.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
	Role      string `json:"role"`
}

// Generate firma un token para userID en companyID con vigencia de expMinutes.
// No valida role ni companyID: Parse y el middleware rechazan los tokens incompletos.
func Generate(secret, userID, companyID, role, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:    userID,
		CompanyID: companyID,
		Role:      role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Parse valida firma (solo HS256) y expiración y exige company_id.
func Parse(secret, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if claims.CompanyID == "" {
		return nil, ErrMissingCompany
	}
	return claims, nil
}
