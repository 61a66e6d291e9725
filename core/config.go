package core

import (
	"fmt"
	"strings"
)

const (
	DefaultBaseURL        = "https://api.remitlink.com"
	DefaultClientID       = "your-client-id"
	DefaultClientSecret   = "your-client-secret"
	DefaultRealm          = "cdp"
	DefaultStoreKey       = "access_token"
	DefaultKeyringService = "remitlink"

	identityTokenPathFormat = "/auth/realms/%s/protocol/openid-connect/token"
)

type Config struct {
	BaseURL        string `koanf:"base_url" mapstructure:"base_url"`
	ClientID       string `koanf:"client_id" mapstructure:"client_id"`
	ClientSecret   string `koanf:"client_secret" mapstructure:"client_secret"`
	Realm          string `koanf:"realm" mapstructure:"realm"`
	StoreKey       string `koanf:"store_key" mapstructure:"store_key"`
	KeyringService string `koanf:"keyring_service" mapstructure:"keyring_service"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		ClientID:       DefaultClientID,
		ClientSecret:   DefaultClientSecret,
		Realm:          DefaultRealm,
		StoreKey:       DefaultStoreKey,
		KeyringService: DefaultKeyringService,
	}
}

// Validate only checks the settings the SDK owns. Connection values (base url,
// client id, client secret) are never rejected here; see Misconfigured.
func (c Config) Validate() error {
	if strings.TrimSpace(c.StoreKey) == "" {
		return fmt.Errorf("core: store_key is required")
	}
	if strings.TrimSpace(c.Realm) == "" {
		return fmt.Errorf("core: realm is required")
	}
	return nil
}

// TokenPath is the identity endpoint path for the configured realm.
func (c Config) TokenPath() string {
	realm := strings.TrimSpace(c.Realm)
	if realm == "" {
		realm = DefaultRealm
	}
	return fmt.Sprintf(identityTokenPathFormat, realm)
}

// Misconfigured lists connection fields that are empty or still hold the
// shipped placeholder values.
func (c Config) Misconfigured() []string {
	var fields []string
	check := func(name, value, placeholder string) {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" || trimmed == placeholder {
			fields = append(fields, name)
		}
	}
	check("base_url", c.BaseURL, "")
	check("client_id", c.ClientID, DefaultClientID)
	check("client_secret", c.ClientSecret, DefaultClientSecret)
	return fields
}
