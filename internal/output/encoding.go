// Package output renders command results: deterministic JSON for scripts and
// small helpers for the human format.
package output

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"time"
)

// Encode produces byte-identical JSON for identical input: object keys
// sorted, floats rounded to 6 places, times in UTC RFC 3339, nil fields
// omitted.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(normalizeValue(reflect.ValueOf(v))); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// EncodeIndented is Encode with indentation.
func EncodeIndented(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", indent)
	if err := encoder.Encode(normalizeValue(reflect.ValueOf(v))); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

var timeType = reflect.TypeOf(time.Time{})

// normalizeValue converts v into maps, slices and scalars. Maps encode with
// sorted keys under encoding/json, which gives the stable ordering.
func normalizeValue(val reflect.Value) any {
	if !val.IsValid() {
		return nil
	}
	for val.Kind() == reflect.Pointer || val.Kind() == reflect.Interface {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}

	if val.Type() == timeType {
		return val.Interface().(time.Time).UTC().Format(time.RFC3339Nano)
	}

	switch val.Kind() {
	case reflect.Map:
		if val.IsNil() {
			return nil
		}
		out := make(map[string]any, val.Len())
		iter := val.MapRange()
		for iter.Next() {
			if v := normalizeValue(iter.Value()); v != nil {
				out[iter.Key().String()] = v
			}
		}
		return out
	case reflect.Slice, reflect.Array:
		if val.Kind() == reflect.Slice && val.IsNil() {
			return []any{}
		}
		out := make([]any, val.Len())
		for i := range out {
			out[i] = normalizeValue(val.Index(i))
		}
		return out
	case reflect.Struct:
		return normalizeStruct(val)
	case reflect.Float32, reflect.Float64:
		return RoundFloat(val.Float())
	default:
		return val.Interface()
	}
}

func normalizeStruct(val reflect.Value) map[string]any {
	out := make(map[string]any)
	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name, omitEmpty, skip := parseJSONTag(field)
		if skip {
			continue
		}
		fv := val.Field(i)
		if omitEmpty && fv.IsZero() {
			continue
		}
		if omitEmpty && (fv.Kind() == reflect.Slice || fv.Kind() == reflect.Map) && fv.Len() == 0 {
			continue
		}
		if v := normalizeValue(fv); v != nil {
			out[name] = v
		}
	}
	return out
}

func parseJSONTag(field reflect.StructField) (name string, omitEmpty, skip bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = field.Name
	}
	for _, opt := range strings.Split(opts, ",") {
		if opt == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}
