// Package bitarray provides densely-packed arrays of booleans, sized in bits
// rather than bytes.
package bitarray

import (
	"fmt"
	"strings"
)

const byteSize = 8

// A Dense is a bit array where every bit is explicitly represented.
type Dense struct {
	bits []byte
	len  int
}

// NewDense returns a new Dense whose contents are a copy of data and whose
// length is bitLen. If bitLen is longer than data, trailing zeros are added.
// If bitLen is negative, it is inferred from data.
func NewDense(data []byte, bitLen int) Dense {
	if bitLen < 0 {
		bitLen = len(data) * byteSize
	}
	b := make([]byte, BytesFor(bitLen))
	copy(b, data)
	d := Dense{bits: b, len: bitLen}
	d.clearTail()
	return d
}

// Empty returns an empty bit array.
func Empty() Dense {
	return Dense{}
}

// FromString converts a string of '1's and '0's to a Dense. Spaces are
// ignored, so "1010 1100" may be used for legibility.
func FromString(s string) (Dense, error) {
	var d Dense
	for _, c := range s {
		switch c {
		case '1':
			d.AppendBit(true)
		case '0':
			d.AppendBit(false)
		case ' ':
			continue
		default:
			return Dense{}, fmt.Errorf("invalid bit array string rep: %q", s)
		}
	}
	return d, nil
}

// Size returns the number of bits in d.
func (d Dense) Size() int {
	return d.len
}

// SizeBytes returns the number of bytes necessary to represent d.
func (d Dense) SizeBytes() int {
	return BytesFor(d.len)
}

// Get returns the i-th bit. Bits beyond the end of d read as zero.
func (d Dense) Get(i int) bool {
	if i < 0 || i >= d.len {
		return false
	}
	return d.bits[i/byteSize]&(1<<(i%byteSize)) != 0
}

// Data returns a copy of the bytes underlying d.
func (d Dense) Data() []byte {
	data := make([]byte, len(d.bits))
	copy(data, d.bits)
	return data
}

// AppendBit adds a single bit to the end of d.
func (d *Dense) AppendBit(bit bool) {
	i, pos := d.len/byteSize, d.len%byteSize
	d.len++
	if pos == 0 {
		d.bits = append(d.bits, 0)
	}
	if bit {
		d.bits[i] |= 1 << pos
	}
}

// Flip inverts the i-th bit of d in place.
func (d *Dense) Flip(i int) {
	d.bits[i/byteSize] ^= 1 << (i % byteSize)
}

// Ones returns the positions of all set bits in d, in ascending order.
func (d Dense) Ones() []int {
	var r []int
	for i := 0; i < d.len; i++ {
		if d.Get(i) {
			r = append(r, i)
		}
	}
	return r
}

// String renders d as a string of '1's and '0's, lowest index first.
func (d Dense) String() string {
	var sb strings.Builder
	for i := 0; i < d.len; i++ {
		if d.Get(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// clearTail zeroes the unused high bits of the final byte, so that Data and
// Equal never observe garbage past the logical length.
func (d *Dense) clearTail() {
	if off := d.len % byteSize; off != 0 {
		d.bits[len(d.bits)-1] &= 0xFF >> (byteSize - off)
	}
}

// BytesFor returns the number of bytes necessary to hold the provided number
// of bits.
func BytesFor(bits int) int {
	return (bits + byteSize - 1) / byteSize
}
