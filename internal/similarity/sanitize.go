package similarity

import (
	"math"
	"time"
)

// Sanitize recursively normalizes a nested structure into JSON-safe
// values: NaN and infinities become nil, timestamps become RFC 3339
// strings, every integer width collapses to int and float32 widens to
// float64. Map keys and sequence order are preserved and sanitizing
// already-sanitized output is a no-op.
func Sanitize(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = Sanitize(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = Sanitize(item)
		}
		return out
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
		return val
	case float32:
		return Sanitize(float64(val))
	case int:
		return val
	case int8:
		return int(val)
	case int16:
		return int(val)
	case int32:
		return int(val)
	case int64:
		return int(val)
	case uint:
		return int(val)
	case uint8:
		return int(val)
	case uint16:
		return int(val)
	case uint32:
		return int(val)
	case uint64:
		return int(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return v
	}
}
