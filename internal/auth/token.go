package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpiry reads the exp claim from a Firebase ID token. The token
// is not verified here: verification is the backend's job, the client
// only needs to know when the session lapses.
func tokenExpiry(idToken string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return time.Time{}, fmt.Errorf("parsing id token: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, fmt.Errorf("id token has no expiry")
	}
	return exp.Time, nil
}
