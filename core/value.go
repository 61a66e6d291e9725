package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

type ValueKind uint8

const (
	ValueNull ValueKind = iota
	ValueBool
	ValueNumber
	ValueString
	ValueArray
	ValueObject
)

func (k ValueKind) String() string {
	switch k {
	case ValueNull:
		return "null"
	case ValueBool:
		return "bool"
	case ValueNumber:
		return "number"
	case ValueString:
		return "string"
	case ValueArray:
		return "array"
	case ValueObject:
		return "object"
	default:
		return "unknown"
	}
}

// Member is one key of an object Value. Members keep insertion order.
type Member struct {
	Key   string
	Value Value
}

// Value is a structured JSON payload. The zero Value is null.
type Value struct {
	kind    ValueKind
	boolean bool
	number  json.Number
	text    string
	items   []Value
	members []Member
}

func Null() Value {
	return Value{}
}

func Bool(value bool) Value {
	return Value{kind: ValueBool, boolean: value}
}

// Number keeps the literal text; it is checked when the Value is encoded.
func Number(value json.Number) Value {
	return Value{kind: ValueNumber, number: value}
}

func Int(value int64) Value {
	return Number(json.Number(strconv.FormatInt(value, 10)))
}

func Float(value float64) Value {
	return Number(json.Number(strconv.FormatFloat(value, 'g', -1, 64)))
}

func String(value string) Value {
	return Value{kind: ValueString, text: value}
}

func Array(items ...Value) Value {
	return Value{kind: ValueArray, items: append([]Value{}, items...)}
}

func Object(members ...Member) Value {
	return Value{kind: ValueObject, members: append([]Member{}, members...)}
}

func Field(key string, value Value) Member {
	return Member{Key: key, Value: value}
}

func (v Value) Kind() ValueKind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == ValueNull
}

func (v Value) AsBool() (bool, bool) {
	return v.boolean, v.kind == ValueBool
}

func (v Value) AsNumber() (json.Number, bool) {
	return v.number, v.kind == ValueNumber
}

func (v Value) AsString() (string, bool) {
	return v.text, v.kind == ValueString
}

func (v Value) Items() []Value {
	if v.kind != ValueArray {
		return nil
	}
	return append([]Value{}, v.items...)
}

func (v Value) Members() []Member {
	if v.kind != ValueObject {
		return nil
	}
	return append([]Member{}, v.members...)
}

// Lookup returns the first member named key of an object Value.
func (v Value) Lookup(key string) (Value, bool) {
	if v.kind != ValueObject {
		return Value{}, false
	}
	for _, member := range v.members {
		if member.Key == key {
			return member.Value, true
		}
	}
	return Value{}, false
}

// Set replaces the member named key or appends it.
func (v Value) Set(key string, value Value) Value {
	if v.kind != ValueObject {
		return v
	}
	members := v.Members()
	for idx := range members {
		if members[idx].Key == key {
			members[idx].Value = value
			return Value{kind: ValueObject, members: members}
		}
	}
	return Value{kind: ValueObject, members: append(members, Field(key, value))}
}

// RenameKeys rewrites every object key, nested objects and arrays included.
func (v Value) RenameKeys(rename func(string) string) Value {
	switch v.kind {
	case ValueArray:
		items := make([]Value, len(v.items))
		for idx, item := range v.items {
			items[idx] = item.RenameKeys(rename)
		}
		return Value{kind: ValueArray, items: items}
	case ValueObject:
		members := make([]Member, len(v.members))
		for idx, member := range v.members {
			members[idx] = Member{Key: rename(member.Key), Value: member.Value.RenameKeys(rename)}
		}
		return Value{kind: ValueObject, members: members}
	default:
		return v
	}
}

func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case ValueNull:
		return true
	case ValueBool:
		return v.boolean == other.boolean
	case ValueNumber:
		return v.number == other.number
	case ValueString:
		return v.text == other.text
	case ValueArray:
		if len(v.items) != len(other.items) {
			return false
		}
		for idx := range v.items {
			if !v.items[idx].Equal(other.items[idx]) {
				return false
			}
		}
		return true
	case ValueObject:
		if len(v.members) != len(other.members) {
			return false
		}
		for idx := range v.members {
			if v.members[idx].Key != other.members[idx].Key {
				return false
			}
			if !v.members[idx].Value.Equal(other.members[idx].Value) {
				return false
			}
		}
		return true
	}
	return false
}

func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case ValueNull:
		buf.WriteString("null")
	case ValueBool:
		buf.WriteString(strconv.FormatBool(v.boolean))
	case ValueNumber:
		if !validNumber(v.number) {
			return NewEncodingError(fmt.Sprintf("remitlink: invalid number literal %q", v.number.String()), nil)
		}
		buf.WriteString(v.number.String())
	case ValueString:
		encoded, err := json.Marshal(v.text)
		if err != nil {
			return NewEncodingError("remitlink: encode string", err)
		}
		buf.Write(encoded)
	case ValueArray:
		buf.WriteByte('[')
		for idx, item := range v.items {
			if idx > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case ValueObject:
		buf.WriteByte('{')
		for idx, member := range v.members {
			if idx > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(member.Key)
			if err != nil {
				return NewEncodingError("remitlink: encode object key", err)
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := member.Value.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return NewEncodingError(fmt.Sprintf("remitlink: unknown value kind %d", v.kind), nil)
	}
	return nil
}

func validNumber(number json.Number) bool {
	text := number.String()
	if text == "" {
		return false
	}
	if text[0] != '-' && (text[0] < '0' || text[0] > '9') {
		return false
	}
	return json.Valid([]byte(text))
}

func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ParseValue(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseValue decodes exactly one JSON document, keeping object key order and
// number literals.
func ParseValue(data []byte) (Value, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	value, err := readValue(decoder)
	if err != nil {
		return Value{}, err
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return Value{}, fmt.Errorf("remitlink: unexpected data after json value")
	}
	return value, nil
}

func readValue(decoder *json.Decoder) (Value, error) {
	token, err := decoder.Token()
	if err != nil {
		return Value{}, err
	}
	switch typed := token.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(typed), nil
	case json.Number:
		return Number(typed), nil
	case string:
		return String(typed), nil
	case json.Delim:
		switch typed {
		case '[':
			items := []Value{}
			for decoder.More() {
				item, err := readValue(decoder)
				if err != nil {
					return Value{}, err
				}
				items = append(items, item)
			}
			if _, err := decoder.Token(); err != nil {
				return Value{}, err
			}
			return Value{kind: ValueArray, items: items}, nil
		case '{':
			members := []Member{}
			for decoder.More() {
				keyToken, err := decoder.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyToken.(string)
				if !ok {
					return Value{}, fmt.Errorf("remitlink: object key must be a string")
				}
				item, err := readValue(decoder)
				if err != nil {
					return Value{}, err
				}
				members = append(members, Member{Key: key, Value: item})
			}
			if _, err := decoder.Token(); err != nil {
				return Value{}, err
			}
			return Value{kind: ValueObject, members: members}, nil
		}
	}
	return Value{}, fmt.Errorf("remitlink: unexpected json token %v", token)
}

// FromAny converts a Go value to a Value through its JSON form. Struct fields
// keep declaration order and map keys are sorted.
func FromAny(value any) (Value, error) {
	if typed, ok := value.(Value); ok {
		return typed, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return Value{}, NewEncodingError("remitlink: encode payload", err)
	}
	parsed, err := ParseValue(data)
	if err != nil {
		return Value{}, NewEncodingError("remitlink: encode payload", err)
	}
	return parsed, nil
}
