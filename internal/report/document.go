// Package report holds the immutable JSON documents produced by the
// aggregation pipeline and the builder that assembles them.
package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Well-known document keys.
const (
	KeyTimestamp = "timestamp"
	KeyError     = "error"
)

// ErrFinalized is the panic value raised when a finalized builder is reused.
var ErrFinalized = errors.New("report: builder already finalized")

// Field is one key/value pair of a document.
type Field struct {
	Key   string
	Value any
}

// Document is an ordered JSON object. It cannot be modified once built.
type Document struct {
	fields []Field
}

// FormatTimestamp renders t the way documents carry it: RFC 3339 in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ErrorDocument returns the short-circuit document {"error": msg}.
func ErrorDocument(msg string) Document {
	return Document{fields: []Field{{Key: KeyError, Value: msg}}}
}

// FaultDocument returns {"error": msg, "timestamp": ts}.
func FaultDocument(msg string, ts time.Time) Document {
	return Document{fields: []Field{
		{Key: KeyError, Value: msg},
		{Key: KeyTimestamp, Value: FormatTimestamp(ts)},
	}}
}

// Fields returns a copy of the document's fields in order.
func (d Document) Fields() []Field {
	out := make([]Field, len(d.fields))
	copy(out, d.fields)
	return out
}

// Len returns the number of top-level fields.
func (d Document) Len() int {
	return len(d.fields)
}

// Get returns the value stored under key.
func (d Document) Get(key string) (any, bool) {
	for _, f := range d.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Timestamp returns the document timestamp, or "" when absent.
func (d Document) Timestamp() string {
	v, _ := d.Get(KeyTimestamp)
	s, _ := v.(string)
	return s
}

// ErrorMessage returns the error message of an error document.
func (d Document) ErrorMessage() (string, bool) {
	v, ok := d.Get(KeyError)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// MarshalJSON writes the fields in insertion order.
func (d Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range d.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("marshaling %q: %w", f.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON parses a JSON object, preserving key order.
func (d *Document) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Indent returns the document as two-space indented JSON.
func (d Document) Indent() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}
