// Package export flattens record slices into CSV text.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"maintdash/internal/models"
)

// CSV renders records, a slice of structs or maps, as CSV. For structs the
// header is every JSON field in declaration order, including fields a record
// omits as empty. For maps it is the union of keys in first-seen order.
// Missing keys become empty cells.
func CSV(records any) ([]byte, error) {
	raw, err := marshal(records)
	if err != nil {
		return nil, fmt.Errorf("marshal records: %w", err)
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("%w: records must be a list", models.ErrInvalidInput)
	}
	if len(rows) == 0 {
		return nil, models.ErrNoData
	}

	header := structFields(reflect.TypeOf(records))
	if header == nil {
		if header, err = unionKeys(rows); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	for i, k := range header {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(quoteIfNeeded(k))
	}
	for _, row := range rows {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(row, &fields); err != nil {
			return nil, fmt.Errorf("%w: record is not an object", models.ErrInvalidInput)
		}
		buf.WriteByte('\n')
		for i, k := range header {
			if i > 0 {
				buf.WriteByte(',')
			}
			cell, err := formatCell(fields[k])
			if err != nil {
				return nil, err
			}
			buf.WriteString(cell)
		}
	}
	return buf.Bytes(), nil
}

// marshal is json.Marshal without HTML escaping, so "&" and "<" survive into
// nested cells.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// structFields returns the JSON field names of a slice's struct element type
// in declaration order, or nil when the elements are not structs.
func structFields(t reflect.Type) []string {
	if t == nil || (t.Kind() != reflect.Slice && t.Kind() != reflect.Array) {
		return nil
	}
	el := t.Elem()
	if el.Kind() == reflect.Pointer {
		el = el.Elem()
	}
	if el.Kind() != reflect.Struct {
		return nil
	}
	return appendFields(nil, el)
}

func appendFields(out []string, t reflect.Type) []string {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if f.Anonymous && name == "" {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				out = appendFields(out, ft)
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = f.Name
		}
		out = append(out, name)
	}
	return out
}

// unionKeys collects the top-level keys of every row in first-seen order.
func unionKeys(rows []json.RawMessage) ([]string, error) {
	seen := make(map[string]struct{})
	var header []string
	for _, row := range rows {
		keys, err := orderedKeys(row)
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			header = append(header, k)
		}
	}
	return header, nil
}

// orderedKeys returns the top-level keys of a JSON object in document order.
func orderedKeys(obj json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(obj))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: record is not an object", models.ErrInvalidInput)
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read key: %w", err)
		}
		keys = append(keys, tok.(string))
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, fmt.Errorf("read value: %w", err)
		}
	}
	if _, err := dec.Token(); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read record end: %w", err)
	}
	return keys, nil
}

func formatCell(v json.RawMessage) (string, error) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || string(v) == "null" {
		return "", nil
	}
	switch v[0] {
	case '{', '[':
		var compact bytes.Buffer
		if err := json.Compact(&compact, v); err != nil {
			return "", fmt.Errorf("compact nested value: %w", err)
		}
		return `"` + strings.ReplaceAll(compact.String(), `"`, `""`) + `"`, nil
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return "", fmt.Errorf("decode string cell: %w", err)
		}
		return quoteIfNeeded(s), nil
	default:
		return string(v), nil
	}
}

func quoteIfNeeded(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
