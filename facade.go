package remitlink

import (
	"context"
	"fmt"

	remitcommand "github.com/goliatone/go-remitlink/command"
	"github.com/goliatone/go-remitlink/core"
	remitquery "github.com/goliatone/go-remitlink/query"
)

// Session is the credential surface the facade dispatches to. *auth.Manager
// implements it.
type Session interface {
	Authenticate(ctx context.Context, username, password string) (string, error)
	Logout()
	RequireAccessToken() (string, error)
	InspectStored() (core.TokenInfo, error)
}

type Commands struct {
	Authenticate *remitcommand.AuthenticateCommand
	Logout       *remitcommand.LogoutCommand
}

type Queries struct {
	AccessToken *remitquery.AccessTokenQuery
	TokenInfo   *remitquery.TokenInfoQuery
}

type Facade struct {
	session  Session
	commands Commands
	queries  Queries
}

func NewFacade(session Session) (*Facade, error) {
	if session == nil {
		return nil, fmt.Errorf("remitlink: session is required")
	}
	return &Facade{
		session: session,
		commands: Commands{
			Authenticate: remitcommand.NewAuthenticateCommand(session),
			Logout:       remitcommand.NewLogoutCommand(session),
		},
		queries: Queries{
			AccessToken: remitquery.NewAccessTokenQuery(session),
			TokenInfo:   remitquery.NewTokenInfoQuery(session),
		},
	}, nil
}

// Facade returns command and query handlers bound to the client's
// credential manager.
func (c *Client) Facade() (*Facade, error) {
	return NewFacade(c.auth)
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Session() Session {
	if f == nil {
		return nil
	}
	return f.session
}
