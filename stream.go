package grib1

import (
	"fmt"
	"io"
	"math"
)

// decoder walks one record over an exclusively owned stream cursor.
// The first failure is sticky: once err is set every primitive returns
// zero without touching the stream.
type decoder struct {
	r       io.ReadSeeker
	rec     *Record
	report  Reporter
	err     error
	eof     bool
	scratch [4]byte
}

// fail records err unless an earlier failure is already pending.
func (d *decoder) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

func (d *decoder) failf(kind error, format string, args ...any) {
	d.fail(fmt.Errorf(format+": %w", append(args, kind)...))
}

// readFull fills p or marks the record truncated.
func (d *decoder) readFull(p []byte) bool {
	if d.err != nil {
		return false
	}
	n, err := io.ReadFull(d.r, p)
	if err != nil {
		d.eof = true
		d.failf(ErrTruncated, "read %d bytes at offset %d, got %d", len(p), d.tell()-int64(n), n)
		return false
	}
	return true
}

func (d *decoder) read(n int) []byte {
	b := d.scratch[:n]
	if !d.readFull(b) {
		clear(b)
	}
	return b
}

func (d *decoder) readUint8() int { return int(d.read(1)[0]) }
func (d *decoder) readUint16() int { return uint16BE(d.read(2)) }
func (d *decoder) readUint24() int { return uint24BE(d.read(3)) }
func (d *decoder) readInt16() int { return signMag16(d.read(2)) }
func (d *decoder) readInt24() int { return signMag24(d.read(3)) }
func (d *decoder) readFloat4() float64 { return ibmFloat(d.read(4)) }

// tell returns the current stream offset, or -1 when the stream cannot
// report it.
func (d *decoder) tell() int64 {
	off, err := d.r.Seek(0, io.SeekCurrent)
	if err != nil {
		return -1
	}
	return off
}

func (d *decoder) seek(off int64) {
	if d.err != nil {
		return
	}
	if _, err := d.r.Seek(off, io.SeekStart); err != nil {
		d.eof = true
		d.failf(ErrTruncated, "seek to %d: %v", off, err)
	}
}

// endSection positions the cursor at off+size, the first byte after a
// section of which consumed bytes have been parsed.
func (d *decoder) endSection(num int, off int64, size, consumed int) {
	if d.err != nil {
		return
	}
	if size < consumed {
		d.failf(ErrStructure, "section %d: declared size %d shorter than %d parsed bytes", num, size, consumed)
		return
	}
	if size != consumed {
		d.seek(off + int64(size))
	}
}

func uint16BE(b []byte) int { return int(b[0])<<8 | int(b[1]) }

func uint24BE(b []byte) int { return int(b[0])<<16 | int(b[1])<<8 | int(b[2]) }

// signMag16 decodes a 2-byte sign-magnitude integer: the MSB is the sign,
// the remaining 15 bits the magnitude.
func signMag16(b []byte) int {
	v := int(b[0]&0x7F)<<8 | int(b[1])
	if b[0]&0x80 != 0 {
		return -v
	}
	return v
}

// signMag24 is signMag16 for 3-byte fields (23-bit magnitude).
func signMag24(b []byte) int {
	v := int(b[0]&0x7F)<<16 | int(b[1])<<8 | int(b[2])
	if b[0]&0x80 != 0 {
		return -v
	}
	return v
}

// ibmFloat decodes an IBM System/360 single precision value:
// sign bit, 7-bit excess-64 base-16 exponent A, 24-bit mantissa B,
// value = ±B·2⁻²⁴·16^(A−64).
func ibmFloat(b []byte) float64 {
	a := int(b[0] & 0x7F)
	m := uint24BE(b[1:4])
	v := math.Ldexp(float64(m), 4*(a-64)-24)
	if b[0]&0x80 != 0 {
		return -v
	}
	return v
}
