// Package perf implements the performance manager (spec component C5):
// call tracing, a result cache keyed by function + argument fingerprint,
// and a batched dispatch queue.
package perf

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/obinexus/libpolycall/ffi/types"
)

// Fingerprint deterministically serializes a function name and its
// canonical arguments into a cache key. Primitive payloads are encoded
// by their bit pattern, strings as length-prefixed bytes, and composite
// values by their handle's numeric identity. The second return value
// reports whether the call is cacheable at all: any composite (struct,
// array, object, callback) or pointer argument makes a call ineligible,
// since such values are backed by mutable shared-region handles that can
// change without the handle value itself changing (spec.md §4.5 "such
// calls never hit").
func Fingerprint(functionName string, args []types.CanonicalValue) (string, bool) {
	h := fnv.New128a()
	_, _ = h.Write([]byte(functionName))
	h.Write([]byte{0})

	cacheable := true
	var buf [8]byte
	for _, arg := range args {
		h.Write([]byte(arg.TypeID))
		h.Write([]byte{0})
		binary.LittleEndian.PutUint16(buf[:2], uint16(arg.Kind))
		h.Write(buf[:2])

		switch {
		case arg.Kind == types.KindString:
			binary.LittleEndian.PutUint64(buf[:], uint64(len(arg.Str)))
			h.Write(buf[:])
			h.Write(arg.Str)
		case arg.Kind.IsPrimitive():
			writePrimitiveBits(h, arg)
		default:
			// Composite/pointer: identity is the handle value, but the
			// call as a whole is excluded from caching.
			binary.LittleEndian.PutUint64(buf[:], uint64(arg.Handle))
			h.Write(buf[:])
			cacheable = false
		}
	}

	return hexString(h.Sum(nil)), cacheable
}

type byteWriter interface {
	Write(p []byte) (int, error)
}

func writePrimitiveBits(w byteWriter, arg types.CanonicalValue) {
	var buf [8]byte
	switch v := arg.Num.(type) {
	case bool:
		if v {
			buf[0] = 1
		}
		w.Write(buf[:1])
	case int64:
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		w.Write(buf[:])
	case uint64:
		binary.LittleEndian.PutUint64(buf[:], v)
		w.Write(buf[:])
	case float64:
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		w.Write(buf[:])
	default:
		// KindVoid and similar: no payload to encode.
	}
}

func hexString(b []byte) string {
	const hextable = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hextable[c>>4]
		out[i*2+1] = hextable[c&0x0f]
	}
	return string(out)
}
