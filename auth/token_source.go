package auth

import (
	"golang.org/x/oauth2"
)

type storeTokenSource struct {
	manager *Manager
}

// TokenSource exposes the stored token to golang.org/x/oauth2, e.g. for
// oauth2.NewClient. It reads the store on every call and never refreshes.
func (m *Manager) TokenSource() oauth2.TokenSource {
	return storeTokenSource{manager: m}
}

func (s storeTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.manager.RequireAccessToken()
	if err != nil {
		return nil, err
	}
	out := &oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}
	if last, ok := s.manager.LastCredential(); ok && last.AccessToken == token {
		if tokenType, present := last.TokenType.Get(); present && tokenType != "" {
			out.TokenType = tokenType
		}
		if expiresAt, known := s.manager.ExpiresAt(); known {
			out.Expiry = expiresAt
		}
	}
	return out, nil
}
