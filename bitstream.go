package grib1

import (
	"encoding/binary"
	"fmt"
)

// packPadding is the number of zero bytes appended after a BDS payload so
// that readPackedBits may always load 4 bytes.
const packPadding = 4

// maxFastBits is the widest code readPackedBits extracts losslessly: a
// 4-byte window shifted by up to 7 bits keeps 25 significant bits.
const maxFastBits = 25

// readPackedBits returns the nbBits-wide unsigned code starting at bit
// offset first of buf, MSB first. buf must extend at least 3 bytes past the
// byte holding the last wanted bit and nbBits must not exceed maxFastBits.
// A width of 0 yields 0.
func readPackedBits(buf []byte, first, nbBits int) uint32 {
	oct := first / 8
	bit := uint(first % 8)
	v := binary.BigEndian.Uint32(buf[oct : oct+4])
	v <<= bit
	return uint32(uint64(v) >> (32 - uint(nbBits)))
}

// bitReader reads unsigned integers of arbitrary bit width from a byte slice.
// Bits are consumed MSB-first within each byte (big-endian bit order).
// It backs packed widths beyond maxFastBits.
type bitReader struct {
	buf []byte
	pos int // current bit position
}

func newBitReader(b []byte) *bitReader { return &bitReader{buf: b} }

// read reads n bits (0 ≤ n ≤ 64) and returns them as a uint64.
// Byte-aligned reads of 8/16/32/64 bits use binary.BigEndian.
func (r *bitReader) read(n int) (uint64, error) {
	if n == 0 {
		return 0, nil
	}
	if n < 0 || n > 64 {
		return 0, fmt.Errorf("bitReader: invalid width %d", n)
	}
	end := r.pos + n
	if end > len(r.buf)*8 {
		return 0, fmt.Errorf("bitReader: read %d bits at pos %d overflows buffer (%d bytes)",
			n, r.pos, len(r.buf))
	}
	if r.pos%8 == 0 {
		off := r.pos / 8
		switch n {
		case 8:
			r.pos = end
			return uint64(r.buf[off]), nil
		case 16:
			r.pos = end
			return uint64(binary.BigEndian.Uint16(r.buf[off:])), nil
		case 32:
			r.pos = end
			return uint64(binary.BigEndian.Uint32(r.buf[off:])), nil
		case 64:
			r.pos = end
			return binary.BigEndian.Uint64(r.buf[off:]), nil
		}
	}
	var v uint64
	for i := 0; i < n; i++ {
		byteIdx := (r.pos + i) / 8
		bitIdx := 7 - ((r.pos + i) % 8)
		bit := (r.buf[byteIdx] >> bitIdx) & 1
		v = (v << 1) | uint64(bit)
	}
	r.pos = end
	return v, nil
}
