package capture

// RedactedValue is the fixed marker written in place of obfuscated values.
const RedactedValue = "[REDACTED]"

// occurredField is the reserved timestamp field name. It is never redacted,
// no matter what the obfuscation list says.
const occurredField = "occurred"

// Redactor replaces configured sensitive body fields with RedactedValue
// before an entry is persisted.
type Redactor struct {
	fields []string
}

// NewRedactor builds a Redactor for the given field names. An empty list
// yields a no-op redactor.
func NewRedactor(fields []string) *Redactor {
	return &Redactor{fields: fields}
}

// Redact replaces each configured field's value in the entry body with the
// redaction marker, when the field is present and truthy. Redaction is
// idempotent: running it again changes nothing.
func (rd *Redactor) Redact(e *Entry) {
	if e == nil || e.Body == nil {
		return
	}
	for _, field := range rd.fields {
		if field == occurredField {
			continue
		}
		if value, ok := e.Body[field]; ok && truthy(value) {
			e.Body[field] = RedactedValue
		}
	}
}

// truthy reports whether a decoded JSON value counts as present for
// redaction purposes. Empty strings, zero numbers, false and null do not.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case float64:
		return val != 0
	case int:
		return val != 0
	case int64:
		return val != 0
	default:
		return true
	}
}
