package form

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Package form flattens structured request parameters into bracketed
// key/value pairs understood by the payment API.

// Pair is a single encoded key/value.
type Pair struct {
	Key   string
	Value string
}

// Values is an ordered list of pairs. Order matters: list elements expand to
// repeated keys and the server groups them positionally.
type Values struct {
	pairs []Pair
}

// Add appends a pair.
func (v *Values) Add(key, value string) {
	v.pairs = append(v.pairs, Pair{Key: key, Value: value})
}

// Pairs returns a copy of the encoded pairs.
func (v *Values) Pairs() []Pair {
	if v == nil {
		return nil
	}
	out := make([]Pair, len(v.pairs))
	copy(out, v.pairs)
	return out
}

// Len returns the number of pairs.
func (v *Values) Len() int {
	if v == nil {
		return 0
	}
	return len(v.pairs)
}

// Get returns the values recorded for key, in order.
func (v *Values) Get(key string) []string {
	if v == nil {
		return nil
	}
	var out []string
	for _, p := range v.pairs {
		if p.Key == key {
			out = append(out, p.Value)
		}
	}
	return out
}

// Encode renders the pairs as application/x-www-form-urlencoded without reordering.
func (v *Values) Encode() string {
	if v == nil || len(v.pairs) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, p := range v.pairs {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(p.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.Value))
	}
	return sb.String()
}

// Encode flattens params into ordered pairs. Mapping keys are emitted in
// sorted order, list elements in their original order. Nil values are
// skipped, empty strings are kept.
func Encode(params map[string]any) *Values {
	out := &Values{}
	for _, key := range sortedKeys(params) {
		encodeValue(out, key, params[key])
	}
	return out
}

func encodeValue(out *Values, key string, value any) {
	if value == nil {
		return
	}

	switch val := value.(type) {
	case string:
		out.Add(key, val)
		return
	case json.Number:
		out.Add(key, val.String())
		return
	case map[string]any:
		for _, k := range sortedKeys(val) {
			encodeValue(out, key+"["+k+"]", val[k])
		}
		return
	case map[string]string:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out.Add(key+"["+k+"]", val[k])
		}
		return
	case []any:
		for _, elem := range val {
			encodeValue(out, key+"[]", elem)
		}
		return
	case time.Time:
		out.Add(key, strconv.FormatInt(val.Unix(), 10))
		return
	case fmt.Stringer:
		out.Add(key, val.String())
		return
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return
		}
		encodeValue(out, key, rv.Elem().Interface())
	case reflect.Bool:
		out.Add(key, strconv.FormatBool(rv.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		out.Add(key, strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		out.Add(key, strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32:
		out.Add(key, strconv.FormatFloat(rv.Float(), 'f', -1, 32))
	case reflect.Float64:
		out.Add(key, strconv.FormatFloat(rv.Float(), 'f', -1, 64))
	case reflect.String:
		out.Add(key, rv.String())
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			encodeValue(out, key+"[]", rv.Index(i).Interface())
		}
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			out.Add(key, fmt.Sprint(value))
			return
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		for _, k := range keys {
			encodeValue(out, key+"["+k+"]", rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())
		}
	default:
		out.Add(key, fmt.Sprint(value))
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
