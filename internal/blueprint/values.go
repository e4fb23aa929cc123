package blueprint

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// AsObject returns v as a JSON object, or nil when it is not one.
func AsObject(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// AsList returns v as a JSON array, or nil when it is not one.
func AsList(v any) []any {
	l, _ := v.([]any)
	return l
}

// AsString converts a scalar to its string form. Strings and numbers are
// accepted; anything else reports false.
func AsString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	default:
		return "", false
	}
}

// normalize converts YAML-decoded maps with non-string keys into JSON objects
// so the rest of the package only ever sees map[string]any.
func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, val := range x {
			x[k] = normalize(val)
		}
		return x
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, val := range x {
			m[fmt.Sprint(k)] = normalize(val)
		}
		return m
	case []any:
		for i, val := range x {
			x[i] = normalize(val)
		}
		return x
	default:
		return v
	}
}
