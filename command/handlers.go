package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
)

type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (string, error)
}

type SessionCloser interface {
	Logout()
}

// AuthenticateCommand stores the issued access token in the context result
// collector when one is attached.
type AuthenticateCommand struct {
	auth Authenticator
}

func NewAuthenticateCommand(auth Authenticator) *AuthenticateCommand {
	return &AuthenticateCommand{auth: auth}
}

func (c *AuthenticateCommand) Execute(ctx context.Context, msg AuthenticateMessage) error {
	if c == nil || c.auth == nil {
		return commandDependencyError("command: authenticator is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	token, err := c.auth.Authenticate(ctx, msg.Username, msg.Password)
	if err != nil {
		return err
	}
	storeResult(ctx, token)
	return nil
}

type LogoutCommand struct {
	session SessionCloser
}

func NewLogoutCommand(session SessionCloser) *LogoutCommand {
	return &LogoutCommand{session: session}
}

func (c *LogoutCommand) Execute(_ context.Context, _ LogoutMessage) error {
	if c == nil || c.session == nil {
		return commandDependencyError("command: session is required")
	}
	c.session.Logout()
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
