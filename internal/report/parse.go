package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Parse decodes a JSON object into a Document. Nested objects become
// Documents, arrays become []any and numbers json.Number.
func Parse(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return Document{}, fmt.Errorf("parsing document: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return Document{}, fmt.Errorf("parsing document: expected object, got %v", tok)
	}

	doc, err := parseObject(dec)
	if err != nil {
		return Document{}, fmt.Errorf("parsing document: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Document{}, fmt.Errorf("parsing document: trailing data")
	}
	return doc, nil
}

// parseObject reads fields after the opening brace has been consumed.
func parseObject(dec *json.Decoder) (Document, error) {
	var fields []Field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Document{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Document{}, fmt.Errorf("expected object key, got %v", tok)
		}
		val, err := parseValue(dec)
		if err != nil {
			return Document{}, err
		}
		fields = append(fields, Field{Key: key, Value: val})
	}
	if _, err := dec.Token(); err != nil {
		return Document{}, err
	}
	return Document{fields: fields}, nil
}

func parseValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		return parseObject(dec)
	case '[':
		items := []any{}
		for dec.More() {
			v, err := parseValue(dec)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return items, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %v", delim)
	}
}
