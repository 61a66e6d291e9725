package main

const (
	storeKeyring  = "keyring"
	storeMemory   = "memory"
	storeFile     = "file"
	storeSQLite   = "sqlite"
	storePostgres = "postgres"
)

type Options struct {
	BaseURL        string `long:"base-url" description:"platform base url, overrides REMITLINK_BASE_URL"`
	Realm          string `long:"realm" description:"identity realm"`
	KeyringService string `long:"keyring-service" description:"OS keychain service name"`
	Store          string `short:"s" long:"store" description:"credential store backend" choice:"keyring" choice:"memory" choice:"file" choice:"sqlite" choice:"postgres" default:"keyring"`
	StoreURL       string `long:"store-url" description:"directory for the file store, dsn for sql stores"`
	AppKey         string `long:"app-key" env:"REMITLINK_APP_KEY" description:"encryption key for file and sql stores"`
	Debug          bool   `long:"debug" description:"log sql statements"`

	Login  LoginOptions  `command:"login" description:"authenticate and store the access token"`
	Logout LogoutOptions `command:"logout" description:"remove the stored access token"`
	Token  TokenOptions  `command:"token" description:"print the stored access token"`
	Call   CallOptions   `command:"call" description:"call a platform endpoint with the stored token"`
}

type LoginOptions struct {
	Username string `short:"u" long:"username" required:"true" description:"account username"`
	Password string `short:"p" long:"password" env:"REMITLINK_PASSWORD" description:"account password"`
}

type LogoutOptions struct{}

type TokenOptions struct {
	Inspect bool `long:"inspect" description:"decode the token claims instead of printing the token"`
}

type CallOptions struct {
	Method string            `short:"X" long:"method" default:"GET" description:"http method"`
	Query  map[string]string `short:"q" long:"query" description:"query parameter as key:value"`
	Data   string            `short:"d" long:"data" description:"json request body"`
	Args   struct {
		Path string `positional-arg-name:"path" required:"yes"`
	} `positional-args:"yes"`
}
