package value

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Equal reports whether two values are equal as JSON values.
// Numbers compare by mathematical value, so 1 and 1.0 are equal.
// Object field order is irrelevant; array element order matters.
func Equal(a, b Value) bool {
	if a.kind.IsNumber() && b.kind.IsNumber() {
		return a.n.Cmp(b.n) == 0
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindString:
		return a.s == b.s
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.obj) != len(b.obj) {
			return false
		}
		for k, av := range a.obj {
			bv, ok := b.obj[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	}
	return false
}

// Hash returns a hash of v consistent with Equal: equal values hash equally.
func Hash(v Value) uint64 {
	d := xxhash.New()
	writeHash(d, v)
	return d.Sum64()
}

func writeHash(d *xxhash.Digest, v Value) {
	var tag [1]byte
	switch v.kind {
	case KindNull:
		tag[0] = 'z'
		d.Write(tag[:])
	case KindBool:
		tag[0] = 'f'
		if v.b {
			tag[0] = 't'
		}
		d.Write(tag[:])
	case KindInteger, KindDecimal:
		tag[0] = 'n'
		d.Write(tag[:])
		r := v.n.RatString()
		writeLen(d, len(r))
		d.WriteString(r)
	case KindString:
		tag[0] = 's'
		d.Write(tag[:])
		writeLen(d, len(v.s))
		d.WriteString(v.s)
	case KindArray:
		tag[0] = 'a'
		d.Write(tag[:])
		writeLen(d, len(v.arr))
		for _, e := range v.arr {
			writeHash(d, e)
		}
	case KindObject:
		tag[0] = 'o'
		d.Write(tag[:])
		writeLen(d, len(v.obj))
		for _, k := range v.Fields() {
			writeLen(d, len(k))
			d.WriteString(k)
			writeHash(d, v.obj[k])
		}
	}
}

func writeLen(d *xxhash.Digest, n int) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(n))
	d.Write(b[:])
}
