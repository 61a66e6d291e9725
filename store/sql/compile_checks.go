package sqlstore

import "github.com/goliatone/go-remitlink/store"

var _ store.Backend = (*Backend)(nil)
