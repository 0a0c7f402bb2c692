package storage

import (
	"encoding/json"
	"fmt"
	"time"
)

// Document is a raw record returned by a DocumentStore.
type Document struct {
	ID   string
	Data map[string]any
}

func (d Document) malformed(key, format string, args ...any) error {
	return fmt.Errorf("%w: %s field %q: %s", ErrMalformedDocument, d.ID, key, fmt.Sprintf(format, args...))
}

// String returns a required string field.
func (d Document) String(key string) (string, error) {
	raw, ok := d.Data[key]
	if !ok || raw == nil {
		return "", d.malformed(key, "missing")
	}
	value, ok := raw.(string)
	if !ok {
		return "", d.malformed(key, "expected string, got %T", raw)
	}
	return value, nil
}

// OptionalString returns a string field, or "" when the field is absent.
func (d Document) OptionalString(key string) (string, error) {
	raw, ok := d.Data[key]
	if !ok || raw == nil {
		return "", nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", d.malformed(key, "expected string, got %T", raw)
	}
	return value, nil
}

// Float returns a required numeric field.
func (d Document) Float(key string) (float64, error) {
	raw, ok := d.Data[key]
	if !ok || raw == nil {
		return 0, d.malformed(key, "missing")
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, d.malformed(key, "invalid number %q", v.String())
		}
		return f, nil
	default:
		return 0, d.malformed(key, "expected number, got %T", raw)
	}
}

// Time returns a required timestamp field normalized to UTC.
//
// Accepted representations: time.Time (memory store), RFC 3339 strings (jsonb), and
// {"seconds","nanos"} / {"_seconds","_nanoseconds"} maps from Firestore exports.
func (d Document) Time(key string) (time.Time, error) {
	raw, ok := d.Data[key]
	if !ok || raw == nil {
		return time.Time{}, d.malformed(key, "missing")
	}
	t, err := NormalizeTime(raw)
	if err != nil {
		return time.Time{}, d.malformed(key, "%v", err)
	}
	return t, nil
}

// NormalizeTime converts a store-native timestamp value into a plain time.Time.
func NormalizeTime(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v.UTC(), nil
	case *time.Time:
		if v == nil {
			return time.Time{}, fmt.Errorf("nil timestamp")
		}
		return v.UTC(), nil
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid timestamp %q", v)
		}
		return t.UTC(), nil
	case map[string]any:
		seconds, okSec := number(v["seconds"])
		if !okSec {
			seconds, okSec = number(v["_seconds"])
		}
		if !okSec {
			return time.Time{}, fmt.Errorf("timestamp map without seconds")
		}
		nanos, okNanos := number(v["nanos"])
		if !okNanos {
			nanos, _ = number(v["_nanoseconds"])
		}
		return time.Unix(int64(seconds), int64(nanos)).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", raw)
	}
}

func number(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
