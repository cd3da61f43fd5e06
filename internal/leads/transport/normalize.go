package transport

import "strings"

// Normalize removes "absent" values from a decoded submission before schema
// validation: nil and blank-string leaves disappear, so a form field left
// empty never trips a presence or min-length rule written for provided-but-
// invalid input. Nested objects are normalized one level deep and dropped
// entirely if nothing survives; lists lose their blank entries the same way.
func Normalize(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for key, value := range fields {
		switch v := value.(type) {
		case nil:
			continue
		case string:
			if strings.TrimSpace(v) == "" {
				continue
			}
			out[key] = v
		case map[string]interface{}:
			nested := normalizeLeaves(v)
			if len(nested) > 0 {
				out[key] = nested
			}
		case []interface{}:
			list := normalizeList(v)
			if len(list) > 0 {
				out[key] = list
			}
		default:
			out[key] = v
		}
	}
	return out
}

// normalizeLeaves handles one nested level; deeper structures pass through.
func normalizeLeaves(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for key, value := range fields {
		switch v := value.(type) {
		case nil:
			continue
		case string:
			if strings.TrimSpace(v) == "" {
				continue
			}
			out[key] = v
		default:
			out[key] = v
		}
	}
	return out
}

func normalizeList(items []interface{}) []interface{} {
	out := make([]interface{}, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		if item == nil {
			continue
		}
		out = append(out, item)
	}
	return out
}
