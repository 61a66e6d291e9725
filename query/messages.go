package query

const (
	TypeAccessToken = "remitlink.query.access_token"
	TypeTokenInfo   = "remitlink.query.token_info"
)

type AccessTokenMessage struct{}

func (AccessTokenMessage) Type() string { return TypeAccessToken }

func (AccessTokenMessage) Validate() error { return nil }

// TokenInfoMessage inspects Token, or the stored token when Token is empty.
type TokenInfoMessage struct {
	Token string
}

func (TokenInfoMessage) Type() string { return TypeTokenInfo }

func (TokenInfoMessage) Validate() error { return nil }
