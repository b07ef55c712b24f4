package app

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// BuildParams turns the query document into request parameters. Null values
// and blank strings are dropped; everything else is stringified.
func BuildParams(query map[string]any) map[string]string {
	out := make(map[string]string, len(query))
	for k, v := range query {
		switch t := v.(type) {
		case nil:
			continue
		case string:
			if strings.TrimSpace(t) == "" {
				continue
			}
			out[k] = t
		case bool:
			out[k] = strconv.FormatBool(t)
		case float64:
			out[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case float32:
			out[k] = strconv.FormatFloat(float64(t), 'f', -1, 32)
		case json.Number:
			out[k] = t.String()
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			out[k] = fmt.Sprint(t)
		default:
			// nested values are sent as compact JSON
			b, err := json.Marshal(t)
			if err != nil {
				out[k] = fmt.Sprint(t)
				continue
			}
			out[k] = string(b)
		}
	}
	return out
}
