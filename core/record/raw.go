package record

import (
	"math"
	"strconv"
	"strings"
)

// Raw is an undecoded JSON object as received from the Records API.
// Lookups accept dotted paths ("subject.id") and treat null like a missing key.
type Raw map[string]interface{}

func (r Raw) lookup(path string) (interface{}, bool) {
	var cur interface{} = map[string]interface{}(r)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		if cur, ok = obj[part]; !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// Str returns the first present key rendered as a string, def when none is.
func (r Raw) Str(def string, keys ...string) string {
	for _, k := range keys {
		if v, ok := r.lookup(k); ok {
			return stringify(v)
		}
	}
	return def
}

// Num returns the first present key as a number. Anything non numeric counts as 0.
func (r Raw) Num(keys ...string) float64 {
	for _, k := range keys {
		if v, ok := r.lookup(k); ok {
			return numify(v)
		}
	}
	return 0
}

// Has reports whether any of keys is present.
func (r Raw) Has(keys ...string) bool {
	for _, k := range keys {
		if _, ok := r.lookup(k); ok {
			return true
		}
	}
	return false
}

// Objects returns the objects of a raw JSON array, skipping anything else.
func Objects(v interface{}) []Raw {
	arr, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]Raw, 0, len(arr))
	for _, el := range arr {
		if obj, ok := el.(map[string]interface{}); ok {
			out = append(out, obj)
		}
	}
	return out
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	}
	return ""
}

func numify(v interface{}) float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case bool:
		if t {
			f = 1
		}
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		f = p
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func seqID(prefix string, idx int) string {
	return prefix + "-" + strconv.Itoa(idx+1)
}
