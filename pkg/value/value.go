package value

import (
	"fmt"
	"math/big"
	"slices"
	"strconv"
)

// Kind identifies the JSON type of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInteger
	KindDecimal
	KindString
	KindArray
	KindObject
)

// String returns the JSON Schema name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// IsNumber reports whether the kind is Integer or Decimal.
func (k Kind) IsNumber() bool { return k == KindInteger || k == KindDecimal }

// IsContainer reports whether the kind is Array or Object.
func (k Kind) IsContainer() bool { return k == KindArray || k == KindObject }

// KindSet is a bit set of kinds.
type KindSet uint8

// AllKinds contains every kind.
const AllKinds KindSet = 1<<(KindObject+1) - 1

// Kinds builds a set from the given kinds.
func Kinds(kinds ...Kind) KindSet {
	var s KindSet
	for _, k := range kinds {
		s |= 1 << k
	}
	return s
}

// Has reports whether k is in the set.
func (s KindSet) Has(k Kind) bool { return s&(1<<k) != 0 }

// Numbers is the set of numeric kinds.
var Numbers = Kinds(KindInteger, KindDecimal)

// A Value is an immutable JSON value.
//
// The zero Value is JSON null. Numbers keep both an exact rational value and
// the lexeme they were parsed from, so that decimals round-trip unchanged.
type Value struct {
	kind Kind
	b    bool
	s    string // string payload, or number lexeme
	n    *big.Rat
	arr  []Value
	obj  map[string]Value
}

// Null returns the JSON null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Int returns an integer value.
func Int(i int64) Value {
	return Value{kind: KindInteger, n: new(big.Rat).SetInt64(i), s: strconv.FormatInt(i, 10)}
}

// BigInt returns an integer value of arbitrary size.
func BigInt(i *big.Int) Value {
	return Value{kind: KindInteger, n: new(big.Rat).SetInt(i), s: i.String()}
}

// Decimal returns a decimal value. The lexeme is the exact decimal expansion
// when one exists, otherwise a fraction.
func Decimal(r *big.Rat) Value {
	lexeme := r.RatString()
	if prec, exact := r.FloatPrec(); exact {
		lexeme = r.FloatString(max(prec, 1))
	}
	return Value{kind: KindDecimal, n: new(big.Rat).Set(r), s: lexeme}
}

// Float returns a decimal value from a float64.
// Non-finite floats have no JSON representation and yield null.
func Float(f float64) Value {
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(f, 'g', -1, 64))
	if !ok {
		return Null()
	}
	return Value{kind: KindDecimal, n: r, s: strconv.FormatFloat(f, 'f', -1, 64)}
}

// Number parses a JSON number lexeme. Lexemes without a fraction or exponent
// become integers; all others become decimals.
func Number(lexeme string) (Value, error) {
	r, ok := new(big.Rat).SetString(lexeme)
	if !ok {
		return Value{}, fmt.Errorf("invalid number %q", lexeme)
	}
	kind := KindInteger
	for _, c := range lexeme {
		if c == '.' || c == 'e' || c == 'E' {
			kind = KindDecimal
			break
		}
	}
	return Value{kind: kind, n: r, s: lexeme}, nil
}

// Array returns an array value holding elems.
func Array(elems ...Value) Value {
	return Value{kind: KindArray, arr: slices.Clone(elems)}
}

// Object returns an object value holding fields.
func Object(fields map[string]Value) Value {
	obj := make(map[string]Value, len(fields))
	for k, v := range fields {
		obj[k] = v
	}
	return Value{kind: KindObject, obj: obj}
}

// Kind returns the kind of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is JSON null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean payload of v.
func (v Value) Bool() bool { return v.b }

// Str returns the string payload of v, or "" if v is not a string.
func (v Value) Str() string {
	if v.kind != KindString {
		return ""
	}
	return v.s
}

// Rat returns a copy of the exact numeric value of v, or nil if v is not a number.
func (v Value) Rat() *big.Rat {
	if !v.kind.IsNumber() {
		return nil
	}
	return new(big.Rat).Set(v.n)
}

// BigInt returns the integer payload of v, or nil if v is not an Integer.
func (v Value) BigInt() *big.Int {
	if v.kind != KindInteger {
		return nil
	}
	return new(big.Int).Set(v.n.Num())
}

// IsIntegral reports whether v is a number with no fractional part.
func (v Value) IsIntegral() bool {
	return v.kind.IsNumber() && v.n.IsInt()
}

// Lexeme returns the textual form of a number.
func (v Value) Lexeme() string {
	if !v.kind.IsNumber() {
		return ""
	}
	return v.s
}

// Len returns the number of elements of an array or fields of an object.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.obj)
	default:
		return 0
	}
}

// Index returns the i'th element of an array.
// It panics if v is not an array or i is out of range.
func (v Value) Index(i int) Value {
	if v.kind != KindArray {
		panic(fmt.Sprintf("value: Index on %s", v.kind))
	}
	return v.arr[i]
}

// Elements returns the elements of an array. The caller must not modify the result.
func (v Value) Elements() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.arr
}

// Field returns the named field of an object.
func (v Value) Field(name string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	f, ok := v.obj[name]
	return f, ok
}

// Has reports whether v is an object with the named field.
func (v Value) Has(name string) bool {
	_, ok := v.Field(name)
	return ok
}

// Fields returns the field names of an object in lexicographic order.
func (v Value) Fields() []string {
	if v.kind != KindObject {
		return nil
	}
	names := make([]string, 0, len(v.obj))
	for k := range v.obj {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// String returns the JSON encoding of v.
func (v Value) String() string {
	data, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<%s: %v>", v.kind, err)
	}
	return string(data)
}
