package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	remitlink "github.com/goliatone/go-remitlink"
	"github.com/goliatone/go-remitlink/core"
	"github.com/goliatone/go-remitlink/security"
	"github.com/goliatone/go-remitlink/store"
	sqlstore "github.com/goliatone/go-remitlink/store/sql"
	"github.com/jessevdk/go-flags"
)

// Run parses args and executes one remitctl command, writing results to out.
func Run(ctx context.Context, args []string, out io.Writer) error {
	options := &Options{}
	parser := flags.NewParser(options, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.ParseArgs(args); err != nil {
		return err
	}
	if parser.Active == nil {
		return fmt.Errorf("remitctl: a command is required")
	}

	cfg, err := core.LoadConfig(ctx, core.NewCfgxConfigProvider(core.EnvConfigLoader{}), nil, core.Config{
		BaseURL:        options.BaseURL,
		Realm:          options.Realm,
		KeyringService: options.KeyringService,
	})
	if err != nil {
		return err
	}

	backend, closeBackend, err := options.openBackend(ctx)
	if err != nil {
		return err
	}
	defer closeBackend()

	client, err := remitlink.New(cfg, remitlink.WithBackend(backend))
	if err != nil {
		return err
	}

	switch parser.Active.Name {
	case "login":
		return runLogin(ctx, client, options.Login, out)
	case "logout":
		client.Logout()
		return nil
	case "token":
		return runToken(client, options.Token, out)
	case "call":
		return runCall(ctx, client, options.Call, out)
	}
	return fmt.Errorf("remitctl: unknown command %q", parser.Active.Name)
}

func runLogin(ctx context.Context, client *remitlink.Client, options LoginOptions, out io.Writer) error {
	if options.Password == "" {
		return fmt.Errorf("remitctl: password is required (--password or REMITLINK_PASSWORD)")
	}
	if _, err := client.Authenticate(ctx, options.Username, options.Password); err != nil {
		return err
	}
	_, err := fmt.Fprintln(out, "authenticated")
	return err
}

func runToken(client *remitlink.Client, options TokenOptions, out io.Writer) error {
	if !options.Inspect {
		token, err := client.Auth().RequireAccessToken()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, token)
		return err
	}
	info, err := client.Auth().InspectStored()
	if err != nil {
		return err
	}
	return writeJSON(out, info)
}

func runCall(ctx context.Context, client *remitlink.Client, options CallOptions, out io.Writer) error {
	var body any
	if data := strings.TrimSpace(options.Data); data != "" {
		value, err := core.ParseValue([]byte(data))
		if err != nil {
			return core.NewEncodingError("remitctl: --data is not valid json", err)
		}
		body = value
	}
	payload, err := client.API().CallRaw(ctx, options.Method, options.Args.Path, options.Query, body)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(payload))
	return err
}

func writeJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func (o *Options) openBackend(ctx context.Context) (store.Backend, func(), error) {
	noop := func() {}
	switch o.Store {
	case storeMemory:
		return store.NewMemoryBackend(), noop, nil
	case storeFile:
		secrets, err := o.secretProvider()
		if err != nil {
			return nil, noop, err
		}
		if secrets == nil {
			return nil, noop, fmt.Errorf("remitctl: the file store requires --app-key")
		}
		if strings.TrimSpace(o.StoreURL) == "" {
			return nil, noop, fmt.Errorf("remitctl: the file store requires --store-url")
		}
		backend, err := store.NewFileBackend(o.StoreURL, secrets)
		return backend, noop, err
	case storeSQLite, storePostgres:
		if strings.TrimSpace(o.StoreURL) == "" {
			return nil, noop, fmt.Errorf("remitctl: the %s store requires --store-url", o.Store)
		}
		driver := "sqlite3"
		if o.Store == storePostgres {
			driver = "postgres"
		}
		client, err := sqlstore.OpenPersistence(ctx, sqlstore.PersistenceConfig{
			Driver: driver,
			DSN:    o.StoreURL,
			Debug:  o.Debug,
		})
		if err != nil {
			return nil, noop, err
		}
		closeClient := func() { _ = client.Close() }
		var backendOpts []sqlstore.BackendOption
		secrets, err := o.secretProvider()
		if err != nil {
			closeClient()
			return nil, noop, err
		}
		if secrets != nil {
			backendOpts = append(backendOpts, sqlstore.WithSecretProvider(secrets))
		}
		backend, err := sqlstore.NewBackendFromPersistence(client, backendOpts...)
		if err != nil {
			closeClient()
			return nil, noop, err
		}
		return backend, closeClient, nil
	default:
		return nil, noop, nil
	}
}

func (o *Options) secretProvider() (core.SecretProvider, error) {
	if strings.TrimSpace(o.AppKey) == "" {
		return nil, nil
	}
	return security.NewAppKeySecretProviderFromString(o.AppKey)
}
