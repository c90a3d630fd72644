package telemetry

import (
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"
)

// Span attributes must not identify a player or leak where a clip lives.
var denyKeys = []string{
	"player",
	"athlete",
	"name",
	"email",
	"phone",
	"dob",
	"token",
	"key",
	"clip",
	"path",
	"file",
	"url",
}

const (
	maxStringLen = 128
	maxSliceLen  = 16
)

func denied(key string) bool {
	lk := strings.ToLower(key)
	for _, bad := range denyKeys {
		if strings.Contains(lk, bad) {
			return true
		}
	}
	return false
}

// SafeAttributes converts run fields to span attributes named prefix+key,
// in key order. Denied keys, long strings and unsupported types are dropped;
// slices are cut to a fixed length.
func SafeAttributes(prefix string, values map[string]any) []attribute.KeyValue {
	if len(values) == 0 {
		return nil
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		if !denied(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	attrs := make([]attribute.KeyValue, 0, len(keys))
	for _, k := range keys {
		name := prefix + k
		switch v := values[k].(type) {
		case string:
			if len(v) <= maxStringLen {
				attrs = append(attrs, attribute.String(name, v))
			}
		case bool:
			attrs = append(attrs, attribute.Bool(name, v))
		case int:
			attrs = append(attrs, attribute.Int(name, v))
		case float64:
			attrs = append(attrs, attribute.Float64(name, v))
		case []string:
			attrs = append(attrs, attribute.StringSlice(name, v[:min(len(v), maxSliceLen)]))
		case []int:
			attrs = append(attrs, attribute.IntSlice(name, v[:min(len(v), maxSliceLen)]))
		}
	}
	return attrs
}

// MetaAttributes filters caller metadata the same way, under prefix+"meta.".
func MetaAttributes(prefix string, meta map[string]string) []attribute.KeyValue {
	if len(meta) == 0 {
		return nil
	}
	values := make(map[string]any, len(meta))
	for k, v := range meta {
		values[k] = v
	}
	return SafeAttributes(prefix+"meta.", values)
}
