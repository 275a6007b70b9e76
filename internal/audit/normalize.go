package audit

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// normalized is the comparison form of a snapshot value. Storage layers hand
// us values with inconsistent representations (int 3 vs string "3", nil vs
// empty string); comparing normalized forms keeps those out of the diff.
type normalized struct {
	absent bool
	value  string
}

func (n normalized) equal(other normalized) bool {
	if n.absent || other.absent {
		return n.absent == other.absent
	}
	return n.value == other.value
}

// normalize canonicalizes a scalar for comparison. nil and empty string both
// collapse to absent; non-float numerics take their decimal string form.
func normalize(v any) normalized {
	switch t := v.(type) {
	case nil:
		return normalized{absent: true}
	case string:
		if t == "" {
			return normalized{absent: true}
		}
		return normalized{value: t}
	case bool:
		return normalized{value: strconv.FormatBool(t)}
	case int:
		return normalized{value: strconv.FormatInt(int64(t), 10)}
	case int8:
		return normalized{value: strconv.FormatInt(int64(t), 10)}
	case int16:
		return normalized{value: strconv.FormatInt(int64(t), 10)}
	case int32:
		return normalized{value: strconv.FormatInt(int64(t), 10)}
	case int64:
		return normalized{value: strconv.FormatInt(t, 10)}
	case uint:
		return normalized{value: strconv.FormatUint(uint64(t), 10)}
	case uint8:
		return normalized{value: strconv.FormatUint(uint64(t), 10)}
	case uint16:
		return normalized{value: strconv.FormatUint(uint64(t), 10)}
	case uint32:
		return normalized{value: strconv.FormatUint(uint64(t), 10)}
	case uint64:
		return normalized{value: strconv.FormatUint(t, 10)}
	case json.Number:
		if t == "" {
			return normalized{absent: true}
		}
		return normalized{value: t.String()}
	case float32:
		return normalized{value: strconv.FormatFloat(float64(t), 'g', -1, 32)}
	case float64:
		return normalized{value: strconv.FormatFloat(t, 'g', -1, 64)}
	default:
		return normalized{value: fmt.Sprintf("%v", t)}
	}
}

// present reports whether a raw value counts as set under normalization.
// Used by presence masking.
func present(v any) bool {
	return !normalize(v).absent
}

// textOf coerces a snapshot value to its text form for the long-text
// summarizer. Absent values read as empty text.
func textOf(v any) string {
	n := normalize(v)
	if n.absent {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return n.value
}
