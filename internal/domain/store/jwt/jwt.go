package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

type Claims struct {
	jwt.RegisteredClaims
	Kind     string   `json:"typ"`
	Username string   `json:"username"`
	Roles    []string `json:"roles,omitempty"`
}

func (c Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Identity is what gets embedded in every token issued for a user.
type Identity struct {
	UserID   uuid.UUID
	Username string
	Roles    []string
}

func (c Claims) Identity() (Identity, error) {
	uid, err := uuid.Parse(c.Subject)
	if err != nil {
		return Identity{}, err
	}
	return Identity{UserID: uid, Username: c.Username, Roles: c.Roles}, nil
}

type JWTUtil interface {
	GenerateAccessToken(id Identity) (token string, exp time.Time, jti string, err error)
	GenerateRefreshToken(id Identity) (token string, exp time.Time, jti string, err error)
	ValidateAccessToken(token string) (claims Claims, err error)
	ValidateRefreshToken(token string) (claims Claims, err error)
	// ParseAny validates signature and expiry without checking the token kind.
	ParseAny(token string) (claims Claims, err error)
}
