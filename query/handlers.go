package query

import (
	"context"
	"strings"

	"github.com/goliatone/go-remitlink/auth"
	"github.com/goliatone/go-remitlink/core"
)

type TokenReader interface {
	RequireAccessToken() (string, error)
}

type TokenInspector interface {
	InspectStored() (core.TokenInfo, error)
}

type AccessTokenQuery struct {
	reader TokenReader
}

func NewAccessTokenQuery(reader TokenReader) *AccessTokenQuery {
	return &AccessTokenQuery{reader: reader}
}

func (q *AccessTokenQuery) Query(_ context.Context, _ AccessTokenMessage) (string, error) {
	if q == nil || q.reader == nil {
		return "", queryDependencyError("query: token reader is required")
	}
	return q.reader.RequireAccessToken()
}

type TokenInfoQuery struct {
	inspector TokenInspector
}

func NewTokenInfoQuery(inspector TokenInspector) *TokenInfoQuery {
	return &TokenInfoQuery{inspector: inspector}
}

func (q *TokenInfoQuery) Query(_ context.Context, msg TokenInfoMessage) (core.TokenInfo, error) {
	if token := strings.TrimSpace(msg.Token); token != "" {
		return auth.Inspect(token)
	}
	if q == nil || q.inspector == nil {
		return core.TokenInfo{}, queryDependencyError("query: token inspector is required")
	}
	return q.inspector.InspectStored()
}
