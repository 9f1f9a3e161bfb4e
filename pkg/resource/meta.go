package resource

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Params holds request parameters. Values may be scalars, strings, lists or
// nested mappings; see form.Encode for the wire layout.
type Params map[string]any

// Meta tracks the server state an entity was last loaded from. Entities embed
// it with a `json:"-"` tag.
type Meta struct {
	// Extra holds fields returned by the server that the entity struct does not declare.
	Extra map[string]any

	snapshot map[string]any
}

func (m *Meta) meta() *Meta { return m }

// Snapshot returns a copy of the field mapping recorded at the last load.
func (m *Meta) Snapshot() map[string]any {
	if m == nil || m.snapshot == nil {
		return nil
	}
	return copyMap(m.snapshot)
}

// Entity is implemented by pointers to structs embedding Meta.
type Entity interface {
	GetID() string
	meta() *Meta
}

// Decode unmarshals data into v, stores unknown keys in Extra and records a
// fresh snapshot.
func Decode(data []byte, v Entity) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}

	raw, err := decodeMap(data)
	if err != nil {
		return fmt.Errorf("decode %T fields: %w", v, err)
	}

	known := jsonFieldNames(reflect.TypeOf(v))
	var extra map[string]any
	for k, val := range raw {
		if _, ok := known[k]; ok {
			continue
		}
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[k] = val
	}

	m := v.meta()
	m.Extra = extra
	snap, err := Fields(v)
	if err != nil {
		return err
	}
	m.snapshot = snap
	return nil
}

// Fields returns the current field mapping of v: declared fields plus Extra.
func Fields(v Entity) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	out, err := decodeMap(data)
	if err != nil {
		return nil, fmt.Errorf("encode %T fields: %w", v, err)
	}
	for k, val := range v.meta().Extra {
		if _, declared := out[k]; declared {
			continue
		}
		out[k] = copyValue(val)
	}
	return out, nil
}

// Changes returns the fields of v modified since its last load.
func Changes(v Entity) (Params, error) {
	cur, err := Fields(v)
	if err != nil {
		return nil, err
	}
	return Diff(v.meta().snapshot, cur), nil
}

// Diff returns the keys of cur whose values differ from prev. Nested mappings
// are compared key by key. Keys removed or nulled are reported as "", which
// the server treats as unset. Keys absent from prev are reported only when
// non-zero.
func Diff(prev, cur map[string]any) Params {
	out := Params{}
	for k, val := range cur {
		old, had := prev[k]
		if !had {
			if !isZero(val) {
				out[k] = val
			}
			continue
		}

		if oldMap, ok := old.(map[string]any); ok {
			if curMap, ok := val.(map[string]any); ok {
				if sub := Diff(oldMap, curMap); len(sub) > 0 {
					out[k] = map[string]any(sub)
				}
				continue
			}
		}

		if val == nil {
			if old != nil {
				out[k] = ""
			}
			continue
		}
		if !reflect.DeepEqual(old, val) {
			out[k] = val
		}
	}

	for k, old := range prev {
		if _, ok := cur[k]; !ok && old != nil {
			out[k] = ""
		}
	}
	return out
}

func decodeMap(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// jsonFieldNames lists the JSON keys declared by a struct type, following
// untagged embedded structs.
func jsonFieldNames(t reflect.Type) map[string]struct{} {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	names := make(map[string]struct{})
	if t.Kind() != reflect.Struct {
		return names
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if f.Anonymous && name == "" {
			for k := range jsonFieldNames(f.Type) {
				names[k] = struct{}{}
			}
			continue
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = f.Name
		}
		names[name] = struct{}{}
	}
	return names
}

func isZero(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case bool:
		return !val
	case json.Number:
		f, err := val.Float64()
		return err == nil && f == 0
	case map[string]any:
		return len(val) == 0
	case []any:
		return len(val) == 0
	}
	return false
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return copyMap(val)
	case []any:
		out := make([]any, len(val))
		for i := range val {
			out[i] = copyValue(val[i])
		}
		return out
	}
	return v
}
