// Package codec translates between domain payloads (lowerCamelCase keys) and
// the remitlink wire format (snake_case keys).
package codec

import (
	"encoding/json"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-remitlink/core"
	"github.com/stoewer/go-strcase"
)

// Encode renders v as wire JSON. Every object key is rewritten to snake_case.
func Encode(v any) ([]byte, error) {
	value, err := ToWire(v)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, core.NewEncodingError("codec: encode payload", err)
	}
	return data, nil
}

// ToWire converts v to a Value with snake_case keys.
func ToWire(v any) (core.Value, error) {
	value, err := core.FromAny(v)
	if err != nil {
		return core.Value{}, err
	}
	return value.RenameKeys(WireName), nil
}

// Decode parses wire JSON into target. Targets that implement
// validation.Validatable are validated after decoding.
func Decode(data []byte, target any) error {
	value, err := core.ParseValue(data)
	if err != nil {
		return core.NewCodecError("codec: invalid json", err)
	}
	return DecodeValue(value, target)
}

func DecodeValue(value core.Value, target any) error {
	domain, err := json.Marshal(value.RenameKeys(DomainName))
	if err != nil {
		return core.NewCodecError("codec: invalid payload", err)
	}
	if err := json.Unmarshal(domain, target); err != nil {
		return core.NewCodecError("codec: payload does not match target", err)
	}
	if validatable, ok := target.(validation.Validatable); ok {
		if err := validatable.Validate(); err != nil {
			return core.NewCodecError("codec: payload failed validation", err)
		}
	}
	return nil
}

// WireName splits a digit followed by an upper-case letter as a word
// boundary, so v2Field becomes v2_field.
func WireName(key string) string {
	return strcase.SnakeCase(splitAfterDigits(key))
}

func DomainName(key string) string {
	return strcase.LowerCamelCase(key)
}

func splitAfterDigits(key string) string {
	runes := []rune(key)
	var out strings.Builder
	out.Grow(len(key) + 2)
	for idx, r := range runes {
		if idx > 0 && unicode.IsUpper(r) && unicode.IsDigit(runes[idx-1]) {
			out.WriteByte('_')
			out.WriteRune(unicode.ToLower(r))
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}
