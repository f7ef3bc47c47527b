package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Normalize coerces request bodies produced by form layers into the shapes
// the backend expects:
//   - a field holding an array of single characters becomes one joined string
//   - a field holding a one-element array with a boolean becomes that boolean
//   - "items" becomes a list of {product_id, quantity} integer pairs; other
//     item fields are discarded, and unparsable numbers become null
//
// Non-object bodies pass through unchanged. Structs are round-tripped
// through JSON first so typed and untyped bodies are treated alike.
func Normalize(body any) (any, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return b, nil
	case []byte:
		return json.RawMessage(b), nil
	case map[string]any:
		return normalizeObject(b), nil
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	if obj, ok := generic.(map[string]any); ok {
		return normalizeObject(obj), nil
	}
	return json.RawMessage(raw), nil
}

func normalizeObject(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if k == "items" {
			out[k] = normalizeItems(v)
			continue
		}
		out[k] = normalizeField(v)
	}
	return out
}

func normalizeField(v any) any {
	switch vv := v.(type) {
	case []string:
		if len(vv) > 0 && allRunes(vv) {
			return strings.Join(vv, "")
		}
	case []bool:
		if len(vv) == 1 {
			return vv[0]
		}
	case []any:
		if len(vv) == 1 {
			if b, ok := vv[0].(bool); ok {
				return b
			}
		}
		if s, ok := joinRunes(vv); ok {
			return s
		}
	}
	return v
}

func joinRunes(vs []any) (string, bool) {
	if len(vs) == 0 {
		return "", false
	}
	var sb strings.Builder
	for _, v := range vs {
		s, ok := v.(string)
		if !ok || utf8.RuneCountInString(s) != 1 {
			return "", false
		}
		sb.WriteString(s)
	}
	return sb.String(), true
}

func allRunes(ss []string) bool {
	for _, s := range ss {
		if utf8.RuneCountInString(s) != 1 {
			return false
		}
	}
	return true
}

func normalizeItems(v any) any {
	var items []any
	switch vv := v.(type) {
	case []any:
		items = vv
	case []map[string]any:
		items = make([]any, len(vv))
		for i, m := range vv {
			items[i] = m
		}
	default:
		return v
	}

	out := make([]any, len(items))
	for i, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			out[i] = it
			continue
		}
		out[i] = map[string]any{
			"product_id": intOrNil(m["product_id"]),
			"quantity":   intOrNil(m["quantity"]),
		}
	}
	return out
}

func intOrNil(v any) any {
	if n, ok := toInt(v); ok {
		return n
	}
	return nil
}

// toInt parses integers the way a lenient form layer would: floats are
// truncated and numeric strings are accepted.
func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil {
			return int64(f), true
		}
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return int64(f), true
		}
	}
	return 0, false
}
