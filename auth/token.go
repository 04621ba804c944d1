package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated fact attached to a request: which user
// this call acts as. It is produced only by token validation, never from
// form input.
type Identity struct {
	UserID   string
	Username string
}

// SessionClaims is the payload carried inside a session token.
type SessionClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenManager signs and validates session tokens. The secret comes from
// configuration at startup and must be unpredictable.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Generate creates a signed session token binding the given identity.
func (t *TokenManager) Generate(id Identity) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		UserID:   id.UserID,
		Username: id.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "message-relay",
		},
	}

	// HS256: HMAC with SHA256 over the configured secret.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Validate parses a token string and returns the identity it binds.
func (t *TokenManager) Validate(tokenString string) (Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil {
		return Identity{}, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return Identity{}, jwt.ErrSignatureInvalid
	}
	return Identity{UserID: claims.UserID, Username: claims.Username}, nil
}
