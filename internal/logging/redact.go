package logging

import (
	"regexp"
	"strings"
)

// Field names whose values are always masked.
var sensitiveFields = []string{
	"password",
	"secret",
	"token",
	"api_key",
	"apikey",
	"api-key",
	"authorization",
	"credential",
}

// Field names holding email addresses; these are masked, not dropped.
var emailFields = []string{
	"email",
	"delivery_email",
}

var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bearer\s+([a-zA-Z0-9._-]{20,})`),
	regexp.MustCompile(`(?i)(api_key|token|secret|password)[=:]["']?([a-zA-Z0-9+/=_-]{16,})["']?`),
}

var emailPattern = regexp.MustCompile(`([a-zA-Z0-9._%+-]+)@([a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`)

// RedactedValue is the replacement for sensitive values.
const RedactedValue = "[REDACTED]"

// Redact masks secrets and email local parts in s.
func Redact(s string) string {
	result := s
	for _, pattern := range secretPatterns {
		result = pattern.ReplaceAllString(result, RedactedValue)
	}
	return emailPattern.ReplaceAllStringFunc(result, RedactEmail)
}

// RedactEmail keeps the first character of the local part and the domain:
// "cordelia@zulip.com" -> "c***@zulip.com".
func RedactEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return email
	}
	return email[:1] + "***" + email[at:]
}

// RedactMap returns a copy of m with sensitive fields masked.
func RedactMap(m map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(m))
	for k, v := range m {
		switch {
		case IsSensitiveField(k):
			result[k] = RedactedValue
		case isEmailField(k):
			if str, ok := v.(string); ok {
				result[k] = RedactEmail(str)
			} else {
				result[k] = v
			}
		default:
			if nested, ok := v.(map[string]interface{}); ok {
				result[k] = RedactMap(nested)
			} else if str, ok := v.(string); ok {
				result[k] = Redact(str)
			} else {
				result[k] = v
			}
		}
	}
	return result
}

// IsSensitiveField checks if a field name is considered sensitive.
func IsSensitiveField(name string) bool {
	lowerName := strings.ToLower(name)
	for _, field := range sensitiveFields {
		if strings.Contains(lowerName, field) {
			return true
		}
	}
	return false
}

func isEmailField(name string) bool {
	lowerName := strings.ToLower(name)
	for _, field := range emailFields {
		if lowerName == field {
			return true
		}
	}
	return false
}
