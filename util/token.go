package util

import (
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var (
	jwtSecretByte = []byte(os.Getenv("JWTSECRET"))
	jwtMutex      sync.RWMutex
)

// SetJWTSecret updates the secret used for session token signing. Call this
// during startup after LoadConfig, and from tests that need a deterministic
// secret.
func SetJWTSecret(secret string) {
	jwtMutex.Lock()
	defer jwtMutex.Unlock()
	jwtSecretByte = []byte(secret)
}

// GetJWTSecretByte returns a copy of the current JWT secret bytes in a
// thread-safe manner.
func GetJWTSecretByte() []byte {
	jwtMutex.RLock()
	defer jwtMutex.RUnlock()
	return append([]byte(nil), jwtSecretByte...)
}

// NewSessionToken signs a session token for the given actor. The jti claim
// keeps tokens unique even when two logins land on the same second.
func NewSessionToken(actor string, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"actor": actor,
		"exp":   expiresAt.Unix(),
		"jti":   uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(GetJWTSecretByte())
}
