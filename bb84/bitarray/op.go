package bitarray

import (
	"fmt"
	"math/bits"
)

// And returns the bitwise AND of a and b. If one is shorter than the other,
// the result takes the shorter length.
func And(a, b Dense) Dense {
	short := a
	if b.len < a.len {
		short = b
	}
	r := Dense{bits: make([]byte, 0, BytesFor(short.len)), len: short.len}
	for i := range short.bits {
		r.bits = append(r.bits, a.bits[i]&b.bits[i])
	}
	r.clearTail()
	return r
}

// XOr returns the bitwise XOR of a and b. If one is shorter than the other,
// trailing zeros are implicitly added to make the lengths match.
func XOr(a, b Dense) Dense {
	short, long := a, b
	if b.len < a.len {
		short, long = b, a
	}
	r := Dense{bits: make([]byte, 0, BytesFor(long.len)), len: long.len}
	for i := range short.bits {
		r.bits = append(r.bits, a.bits[i]^b.bits[i])
	}
	for i := len(short.bits); i < len(long.bits); i++ {
		r.bits = append(r.bits, long.bits[i])
	}
	return r
}

// XNor returns the bitwise equality of a and b: the i-th result bit is set iff
// a and b agree at i. Both arguments must have the same length.
func XNor(a, b Dense) (Dense, error) {
	if a.len != b.len {
		return Dense{}, fmt.Errorf("XNOR of bit arrays with different lengths: %d != %d", a.len, b.len)
	}
	r := Dense{bits: make([]byte, 0, BytesFor(a.len)), len: a.len}
	for i := range a.bits {
		r.bits = append(r.bits, ^(a.bits[i] ^ b.bits[i]))
	}
	r.clearTail()
	return r, nil
}

// Select selects the subset of bits from data at positions where mask is set,
// preserving order.
func Select(data, mask Dense) Dense {
	var r Dense
	for i := 0; i < data.len; i++ {
		if !mask.Get(i) {
			continue
		}
		r.AppendBit(data.Get(i))
	}
	return r
}

// Slice returns a copy of bits [start, end) of d.
func Slice(d Dense, start, end int) (Dense, error) {
	if start < 0 {
		return Dense{}, fmt.Errorf("slicing bit array with negative start: %d", start)
	}
	if end < start {
		return Dense{}, fmt.Errorf("slicing bit array to negative length: %d", end-start)
	}
	if end > d.len {
		return Dense{}, fmt.Errorf("slicing bit array of len %d up to %d", d.len, end)
	}
	r := Dense{bits: make([]byte, BytesFor(end-start)), len: end - start}
	for i := start; i < end; i++ {
		if d.Get(i) {
			r.bits[(i-start)/byteSize] |= 1 << ((i - start) % byteSize)
		}
	}
	return r, nil
}

// CountOnes returns the total number of bits set in d.
func CountOnes(d Dense) int {
	var sum int
	for _, b := range d.bits {
		sum += bits.OnesCount8(b)
	}
	return sum
}

// Equal returns true iff a and b have the same length and contain the same
// bits.
func Equal(a, b Dense) bool {
	return a.len == b.len && CountOnes(XOr(a, b)) == 0
}
