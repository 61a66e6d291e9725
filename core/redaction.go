package core

import "strings"

const RedactedValue = "[REDACTED]"

// RedactStringMap copies headers or query parameters for logging with
// credential-bearing entries masked.
func RedactStringMap(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for key, value := range values {
		if shouldRedactKey(key) {
			out[key] = RedactedValue
			continue
		}
		out[key] = value
	}
	return out
}

// RedactValue masks credential-bearing members of object payloads, nested
// objects and arrays included.
func RedactValue(value Value) Value {
	switch value.Kind() {
	case ValueArray:
		items := value.Items()
		for idx := range items {
			items[idx] = RedactValue(items[idx])
		}
		return Array(items...)
	case ValueObject:
		members := value.Members()
		for idx, member := range members {
			if shouldRedactKey(member.Key) {
				members[idx].Value = String(RedactedValue)
				continue
			}
			members[idx].Value = RedactValue(member.Value)
		}
		return Object(members...)
	default:
		return value
	}
}

func shouldRedactKey(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	switch strings.NewReplacer("_", "", "-", "").Replace(key) {
	case "", "requestid", "tokentype":
		return false
	}
	for _, token := range []string{
		"password",
		"secret",
		"token",
		"authorization",
		"api_key",
		"api-key",
		"apikey",
		"cookie",
		"credential",
	} {
		if strings.Contains(key, token) {
			return true
		}
	}
	return false
}
