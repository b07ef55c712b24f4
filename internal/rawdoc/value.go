// Package rawdoc models provider JSON whose schema we do not own.
//
// A Value is a tagged union over the JSON kinds. Every lookup is total: a
// missing key, an out-of-range index or a step through a non-container all
// yield the null Value instead of an error, so callers read deeply nested
// fields without guarding each level.
package rawdoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type Kind uint8

const (
	Null Kind = iota
	Bool
	Number
	String
	Mapping
	Sequence
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Mapping:
		return "mapping"
	case Sequence:
		return "sequence"
	default:
		return "null"
	}
}

// Value is one node of a decoded document. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	num  json.Number
	str  string
	obj  map[string]Value
	arr  []Value
}

// Parse decodes a JSON document, keeping number literals intact so integer
// and fractional values stay distinguishable.
func Parse(data []byte) (Value, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads exactly one JSON document from r.
func Decode(r io.Reader) (Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Value{}, fmt.Errorf("rawdoc: decode: %w", err)
	}
	return From(v), nil
}

// From converts the output of encoding/json (or yaml.v3) into a Value.
// Unsupported Go types become null.
func From(v any) Value {
	switch t := v.(type) {
	case nil:
		return Value{}
	case Value:
		return t
	case bool:
		return Value{kind: Bool, b: t}
	case json.Number:
		return Value{kind: Number, num: t}
	case float64:
		return Value{kind: Number, num: json.Number(strconv.FormatFloat(t, 'f', -1, 64))}
	case float32:
		return Value{kind: Number, num: json.Number(strconv.FormatFloat(float64(t), 'f', -1, 32))}
	case int:
		return Value{kind: Number, num: json.Number(strconv.Itoa(t))}
	case int64:
		return Value{kind: Number, num: json.Number(strconv.FormatInt(t, 10))}
	case string:
		return Value{kind: String, str: t}
	case map[string]any:
		obj := make(map[string]Value, len(t))
		for k, e := range t {
			obj[k] = From(e)
		}
		return Value{kind: Mapping, obj: obj}
	case []any:
		arr := make([]Value, len(t))
		for i, e := range t {
			arr[i] = From(e)
		}
		return Value{kind: Sequence, arr: arr}
	case []map[string]any:
		arr := make([]Value, len(t))
		for i, e := range t {
			arr[i] = From(e)
		}
		return Value{kind: Sequence, arr: arr}
	default:
		return Value{}
	}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == Null
}

func (v Value) IsMapping() bool {
	return v.kind == Mapping
}

func (v Value) IsSequence() bool {
	return v.kind == Sequence
}

// Get walks path from v. A string step selects a mapping key, an int step
// selects a sequence element (negative counts from the end). The walk stops
// with null at the first step that cannot be taken.
func (v Value) Get(path ...any) Value {
	cur := v
	for _, step := range path {
		switch s := step.(type) {
		case string:
			if cur.kind != Mapping {
				return Value{}
			}
			next, ok := cur.obj[s]
			if !ok {
				return Value{}
			}
			cur = next
		case int:
			if cur.kind != Sequence {
				return Value{}
			}
			i := s
			if i < 0 {
				i += len(cur.arr)
			}
			if i < 0 || i >= len(cur.arr) {
				return Value{}
			}
			cur = cur.arr[i]
		default:
			return Value{}
		}
	}
	return cur
}

// Has reports whether v is a mapping with key present, even when its value
// is null.
func (v Value) Has(key string) bool {
	if v.kind != Mapping {
		return false
	}
	_, ok := v.obj[key]
	return ok
}

// Len is the element count of a sequence and zero for everything else.
func (v Value) Len() int {
	if v.kind != Sequence {
		return 0
	}
	return len(v.arr)
}

// Items returns the elements of a sequence, or nil.
func (v Value) Items() []Value {
	if v.kind != Sequence {
		return nil
	}
	return v.arr
}

// Str returns the string payload.
func (v Value) Str() (string, bool) {
	if v.kind != String {
		return "", false
	}
	return v.str, true
}

// StrPtr returns the string payload or nil when v is not a string.
func (v Value) StrPtr() *string {
	if v.kind != String {
		return nil
	}
	s := v.str
	return &s
}

// NonEmptyStr is StrPtr that also treats "" as absent.
func (v Value) NonEmptyStr() *string {
	if v.kind != String || v.str == "" {
		return nil
	}
	s := v.str
	return &s
}

// IsInteger reports whether v is a number written without a fraction or
// exponent.
func (v Value) IsInteger() bool {
	if v.kind != Number {
		return false
	}
	return !strings.ContainsAny(string(v.num), ".eE")
}

// Int returns the payload of an integer literal.
func (v Value) Int() (int64, bool) {
	if !v.IsInteger() {
		return 0, false
	}
	n, err := v.num.Int64()
	if err != nil {
		return 0, false
	}
	return n, true
}

// IntPtr returns the payload of an integer literal, or nil.
func (v Value) IntPtr() *int {
	n, ok := v.Int()
	if !ok {
		return nil
	}
	i := int(n)
	return &i
}

// IntOr returns the integer payload or def.
func (v Value) IntOr(def int) int {
	if p := v.IntPtr(); p != nil {
		return *p
	}
	return def
}

// Float returns any numeric payload as float64.
func (v Value) Float() (float64, bool) {
	if v.kind != Number {
		return 0, false
	}
	f, err := v.num.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}

// FloatPtr returns any numeric payload, or nil.
func (v Value) FloatPtr() *float64 {
	f, ok := v.Float()
	if !ok {
		return nil
	}
	return &f
}

// Interface converts v back into plain Go values (json.Number for numbers).
func (v Value) Interface() any {
	switch v.kind {
	case Bool:
		return v.b
	case Number:
		return v.num
	case String:
		return v.str
	case Mapping:
		m := make(map[string]any, len(v.obj))
		for k, e := range v.obj {
			m[k] = e.Interface()
		}
		return m
	case Sequence:
		s := make([]any, len(v.arr))
		for i, e := range v.arr {
			s[i] = e.Interface()
		}
		return s
	default:
		return nil
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
