package core

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Credential is the identity endpoint response. Only AccessToken is persisted.
type Credential struct {
	AccessToken  string           `json:"accessToken"`
	ExpiresIn    int64            `json:"expiresIn"`
	RefreshToken Optional[string] `json:"refreshToken,omitzero"`
	TokenType    Optional[string] `json:"tokenType,omitzero"`
}

func (c Credential) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.AccessToken, validation.Required),
		validation.Field(&c.ExpiresIn, validation.Required),
	)
}

// ExpiresAt is informational; freshness is never decided locally.
func (c Credential) ExpiresAt(issuedAt time.Time) time.Time {
	if c.ExpiresIn <= 0 || issuedAt.IsZero() {
		return time.Time{}
	}
	return issuedAt.Add(time.Duration(c.ExpiresIn) * time.Second)
}

// TokenInfo is an unverified view of a bearer token's claims.
type TokenInfo struct {
	Subject   string
	Issuer    string
	Audience  []string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Claims    map[string]any
}

func (i TokenInfo) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}
