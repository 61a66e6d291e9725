package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-remitlink/core"
)

// Inspect decodes the claims of a JWT access token without verifying its
// signature. Use it for display only.
func Inspect(token string) (core.TokenInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return core.TokenInfo{}, core.NewCodecError("auth: access token is not a jwt", err)
	}
	info := core.TokenInfo{Claims: map[string]any(claims)}
	if subject, err := claims.GetSubject(); err == nil {
		info.Subject = subject
	}
	if issuer, err := claims.GetIssuer(); err == nil {
		info.Issuer = issuer
	}
	if audience, err := claims.GetAudience(); err == nil {
		info.Audience = []string(audience)
	}
	info.IssuedAt = numericDate(claims.GetIssuedAt())
	info.ExpiresAt = numericDate(claims.GetExpirationTime())
	return info, nil
}

// InspectStored inspects the token currently held by the manager.
func (m *Manager) InspectStored() (core.TokenInfo, error) {
	token, err := m.RequireAccessToken()
	if err != nil {
		return core.TokenInfo{}, err
	}
	return Inspect(token)
}

func numericDate(value *jwt.NumericDate, err error) time.Time {
	if err != nil || value == nil {
		return time.Time{}
	}
	return value.UTC()
}
