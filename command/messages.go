package command

import "strings"

const (
	TypeAuthenticate = "remitlink.command.authenticate"
	TypeLogout       = "remitlink.command.logout"
)

type AuthenticateMessage struct {
	Username string
	Password string
}

func (AuthenticateMessage) Type() string { return TypeAuthenticate }

func (m AuthenticateMessage) Validate() error {
	if strings.TrimSpace(m.Username) == "" {
		return commandValidationError("username", "username is required")
	}
	if m.Password == "" {
		return commandValidationError("password", "password is required")
	}
	return nil
}

type LogoutMessage struct{}

func (LogoutMessage) Type() string { return TypeLogout }

func (LogoutMessage) Validate() error { return nil }
