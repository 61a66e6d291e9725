package sqlstore

import (
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

func entryHandlers() repository.ModelHandlers[*entryRecord] {
	return repository.ModelHandlers[*entryRecord]{
		NewRecord: func() *entryRecord {
			return &entryRecord{}
		},
		GetID: func(record *entryRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *entryRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "entry_key"
		},
		GetIdentifierValue: func(record *entryRecord) string {
			if record == nil {
				return ""
			}
			return record.EntryKey
		},
	}
}

func parseUUID(value string) uuid.UUID {
	parsed, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil
	}
	return parsed
}
