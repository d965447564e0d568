package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TimeUntilExpiry decodes the exp claim of a JWT access token without
// verifying its signature and reports how long the token remains valid.
// A negative duration means the token is already expired. The second return
// is false when the token is malformed or carries no exp claim; the function
// never fails harder than that.
func TimeUntilExpiry(tok string) (time.Duration, bool) {
	if tok == "" {
		return 0, false
	}

	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(tok, claims); err != nil {
		return 0, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return 0, false
	}

	return time.Until(exp.Time), true
}
