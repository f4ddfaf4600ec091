package tokens

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateAdminToken creates a signed HS256 JWT accepted by the admin
// endpoints. Operators mint these out of band; the service only verifies.
func GenerateAdminToken(secret, subject string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(secret))
}
