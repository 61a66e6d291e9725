package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-remitlink/core"
)

var (
	_ gocmd.Querier[AccessTokenMessage, string]       = (*AccessTokenQuery)(nil)
	_ gocmd.Querier[TokenInfoMessage, core.TokenInfo] = (*TokenInfoQuery)(nil)
)
