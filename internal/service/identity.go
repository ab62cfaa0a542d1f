package service

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	domainauth "github.com/target/positions-ui/internal/domain/auth"
)

// DisplayIdentity reads the username from a bearer token for display. The
// signature is not verified and the result must not gate access. Any decode
// failure yields an Identity whose DisplayName is domainauth.GuestName.
func DisplayIdentity(token string) domainauth.Identity {
	if token == "" {
		return domainauth.Identity{}
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return domainauth.Identity{}
	}

	var id domainauth.Identity
	if username, ok := claims["username"].(string); ok {
		id.Username = username
	}
	if sub, err := claims.GetSubject(); err == nil {
		id.Subject = sub
	} else if n, ok := claims["sub"].(float64); ok {
		// The positions API issues numeric subjects.
		id.Subject = strconv.FormatInt(int64(n), 10)
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time.In(time.UTC)
	}
	return id
}
