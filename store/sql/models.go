package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type entryRecord struct {
	bun.BaseModel `bun:"table:remitlink_secure_entries,alias:rse"`

	ID        string    `bun:"id,pk"`
	EntryKey  string    `bun:"entry_key,notnull,unique"`
	Value     []byte    `bun:"value,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
