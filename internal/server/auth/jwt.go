package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/credsec/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the registered claims plus the caller's id and role.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
	Role   string
}

// GenerateToken signs an identity token with HS256. Used by the identity
// collaborator and by tests.
func GenerateToken(userID string, role Role, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID: userID,
		Role:   string(role),
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseIdentity verifies a token and extracts the caller identity.
// Invalid, expired or malformed tokens yield common.ErrInvalidToken.
func ParseIdentity(tokenString string, secretKey []byte) (*Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	role, err := ParseRole(claims.Role)
	if err != nil {
		return nil, errors.Join(common.ErrInvalidToken, err)
	}

	return &Identity{UserID: claims.UserID, Role: role}, nil
}
