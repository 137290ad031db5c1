package grib1

import (
	"fmt"
	"math"

	"github.com/golang/glog"
)

// BDS flag bits (section 4, octet 4).
const (
	bdsSphericalHarmonic = 0x80
	bdsComplexPacking    = 0x40
	bdsIntegerValues     = 0x20
	bdsAdditionalFlags   = 0x10
	bdsUnusedBitsMask    = 0x0F

	// bdsHeaderLen is the part of section 4 preceding the packed payload.
	bdsHeaderLen = 11

	// maxPackBits is the widest code the unpacker accepts.
	maxPackBits = 32
)

// readSection4 decodes the binary data section into the value grid.
// Each present cell gets (R + x·2^E) / 10^D, absent cells the missing
// sentinel.
func (d *decoder) readSection4() {
	rec := d.rec
	p := &rec.Packing
	off := d.tell()
	size := d.readUint24()
	rec.sections[4] = section{offset: off, size: size}
	p.Flags = byte(d.readUint8())
	p.BinaryScale = d.readInt16()
	p.Reference = d.readFloat4()
	p.Bits = d.readUint8()
	p.UnusedBits = int(p.Flags & bdsUnusedBitsMask)
	if d.err != nil {
		return
	}

	switch {
	case p.Flags&bdsSphericalHarmonic != 0:
		d.failf(ErrUnsupported, "section 4: spherical harmonic coefficients, need grid point data")
	case p.Flags&bdsComplexPacking != 0:
		d.failf(ErrUnsupported, "section 4: complex packing, need simple packing")
	case p.Flags&bdsIntegerValues != 0:
		d.failf(ErrUnsupported, "section 4: integer values, need floating point")
	case p.Flags&bdsAdditionalFlags != 0:
		d.failf(ErrUnsupported, "section 4: additional flags present")
	case p.Bits > maxPackBits:
		d.failf(ErrUnsupported, "section 4: %d-bit codes exceed %d", p.Bits, maxPackBits)
	case size < bdsHeaderLen:
		d.failf(ErrStructure, "section 4: size %d", size)
	}
	if d.err != nil {
		return
	}

	dataSize := size - bdsHeaderLen
	buf := make([]byte, dataSize+packPadding)
	if !d.readFull(buf[:dataSize]) {
		return
	}
	if err := rec.unpack(buf, dataSize); err != nil {
		d.fail(fmt.Errorf("section 4: %w", err))
		return
	}
	glog.V(2).Infof("record %d: BDS param=%d bits=%d level=%d/%d",
		rec.ID, rec.code.Type, p.Bits, rec.code.LevelType, rec.code.LevelValue)
}

// present reports whether transmitted cell (i, j) carries a packed code.
func (r *Record) present(i, j int) bool {
	if r.bitmap == nil {
		return true
	}
	return bitmapBit(r.bitmap, r.Grid.scanIndex(i, j))
}

// unpack fills the value grid from buf, whose first dataSize bytes are the
// packed payload followed by packPadding zero bytes. Cells are visited in
// transmission order; when no increments are given and J does not scan
// positively, rows are stored reflected (Nj-1-j).
func (r *Record) unpack(buf []byte, dataSize int) error {
	g, p := &r.Grid, &r.Packing
	n := g.Points()

	nPresent := n
	if r.bitmap != nil {
		nPresent = countSetBits(r.bitmap, n)
	}
	if need := int64(nPresent) * int64(p.Bits); need > int64(dataSize)*8 {
		return fmt.Errorf("payload holds %d bits, %d codes of %d bits need %d: %w",
			dataSize*8, nPresent, p.Bits, need, ErrStructure)
	}

	r.values = make([]float64, n)
	if r.bitmap != nil {
		r.mask = make([]bool, n)
	}

	scaleE := math.Ldexp(1, p.BinaryScale)
	scaleD := r.Header.DecimalFactor
	reflect := !g.HasDiDj && !g.ScanJPositive

	var br *bitReader
	if p.Bits > maxFastBits {
		br = newBitReader(buf[:dataSize])
	}
	startBit := 0
	store := func(i, j int) error {
		row := j
		if reflect {
			row = g.Nj - 1 - j
		}
		ind := row*g.Ni + i
		if !r.present(i, j) {
			r.values[ind] = Missing()
			return nil
		}
		var x uint64
		if br != nil {
			v, err := br.read(p.Bits)
			if err != nil {
				return err
			}
			x = v
		} else {
			x = uint64(readPackedBits(buf, startBit, p.Bits))
			startBit += p.Bits
		}
		r.values[ind] = (p.Reference + float64(x)*scaleE) / scaleD
		if r.mask != nil {
			r.mask[ind] = true
		}
		return nil
	}

	if g.AdjacentI {
		for j := 0; j < g.Nj; j++ {
			for i := 0; i < g.Ni; i++ {
				if err := store(i, j); err != nil {
					return err
				}
			}
		}
		return nil
	}
	for i := 0; i < g.Ni; i++ {
		for j := 0; j < g.Nj; j++ {
			if err := store(i, j); err != nil {
				return err
			}
		}
	}
	return nil
}

// readSection5 requires the "7777" end marker.
func (d *decoder) readSection5() {
	off := d.tell()
	end := d.read(4)
	if d.err != nil {
		return
	}
	d.rec.sections[5] = section{offset: off, size: 4}
	if string(end) != "7777" {
		d.failf(ErrStructure, "section 5: end marker %q, want \"7777\"", end)
	}
}
