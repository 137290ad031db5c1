package grib1

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/golang/glog"
)

// Input sanity limits.
const (
	// pdsLen is the fixed part of section 1 read by the decoder.
	pdsLen = 28

	// gdsLen is the part of a lat/lon section 2 read by the decoder
	// (the standard section is 32 bytes, the last 4 reserved).
	gdsLen = 28

	// maxGridPoints caps Ni·Nj. The 0.25° global grid has ~1M points.
	maxGridPoints = 1 << 26
)

// readSection0 scans forward to the first 'G', then requires "RIB",
// the total size and edition 1. Stray bytes between records are skipped.
func (d *decoder) readSection0() {
	rec := d.rec
	g := d.scratch[:1]
	for {
		if _, err := io.ReadFull(d.r, g); err != nil {
			d.eof = true
			d.failf(ErrTruncated, "section 0: no GRIB marker before end of stream")
			return
		}
		if g[0] == 'G' {
			break
		}
	}
	afterG := d.tell()
	rec.Offset = afterG - 1
	rib := d.read(3)
	if d.err != nil {
		return
	}
	if string(rib) != "RIB" {
		// Rewind so the next scan starts right after this 'G'.
		d.seek(afterG)
		d.failf(ErrStructure, "section 0: unknown header G%q", rib)
		return
	}
	rec.Header.TotalSize = d.readUint24()
	rec.Header.Edition = d.readUint8()
	if d.err != nil {
		return
	}
	rec.sections[0] = section{offset: rec.Offset, size: 8}
	if rec.Header.Edition != 1 {
		d.failf(ErrUnsupported, "section 0: edition %d", rec.Header.Edition)
	}
}

// readSection1 decodes the product definition section.
func (d *decoder) readSection1() {
	rec := d.rec
	h := &rec.Header
	off := d.tell()
	var b [pdsLen]byte
	if !d.readFull(b[:]) {
		return
	}
	size := uint24BE(b[0:3])
	rec.sections[1] = section{offset: off, size: size}

	h.TableVersion = int(b[3])
	h.Center = int(b[4])
	h.Model = int(b[5])
	h.GridID = int(b[6])
	h.HasGDS = b[7]&0x80 != 0
	h.HasBMS = b[7]&0x40 != 0
	h.RawCode = DataCode{
		Type:       int(b[8]),
		LevelType:  int(b[9]),
		LevelValue: uint16BE(b[10:12]),
	}
	rec.code = h.RawCode

	year := (int(b[24])-1)*100 + int(b[12])
	h.RefTime = time.Date(year, time.Month(b[13]), int(b[14]), int(b[15]), int(b[16]), 0, 0, time.UTC)
	h.TimeUnit = int(b[17])
	h.P1 = int(b[18])
	h.P2 = int(b[19])
	h.TimeRange = int(b[20])
	glog.V(2).Infof("record %d: PDS time range=%d P1=%d P2=%d", rec.ID, h.TimeRange, h.P1, h.P2)
	secs, err := periodSeconds(h.TimeUnit, h.P1, h.P2, h.TimeRange)
	if err != nil {
		d.fail(fmt.Errorf("section 1: %w", err))
		return
	}
	h.ValidTime = h.RefTime.Add(time.Duration(secs) * time.Second)

	h.DecimalScale = signMag16(b[26:28])
	h.DecimalFactor = math.Pow(10, float64(h.DecimalScale))

	if !h.HasGDS {
		d.failf(ErrUnsupported, "section 1: GDS not found")
		return
	}
	if h.DecimalFactor == 0 {
		d.failf(ErrStructure, "section 1: decimal factor 10^%d is null", h.DecimalScale)
		return
	}
	d.endSection(1, off, size, pdsLen)
}

// timeUnitSeconds maps code table 4 units to seconds. Month and longer
// units have no fixed length and are rejected.
var timeUnitSeconds = map[int]int{
	0:   60,    // minute
	1:   3600,  // hour
	2:   86400, // day
	10:  10800, // 3 hours
	11:  21600, // 6 hours
	12:  43200, // 12 hours
	254: 1,     // second
}

// periodSeconds converts the forecast period of section 1 into seconds
// after the reference time, following code table 5.
func periodSeconds(unit, p1, p2, timeRange int) (int, error) {
	res, ok := timeUnitSeconds[unit]
	if !ok {
		return 0, fmt.Errorf("time unit %d: %w", unit, ErrUnsupported)
	}
	var dur int
	switch timeRange {
	case 0:
		dur = p1
	case 1:
		dur = 0
	case 2, 3, 4:
		dur = p2
	case 10:
		dur = p1<<8 + p2
	default:
		return 0, fmt.Errorf("time range indicator %d: %w", timeRange, ErrUnsupported)
	}
	return res * dur, nil
}

// readSection2 decodes a regular lat/lon grid description.
func (d *decoder) readSection2() {
	rec := d.rec
	g := &rec.Grid
	off := d.tell()
	size := d.readUint24()
	rec.sections[2] = section{offset: off, size: size}
	g.NV = d.readUint8()
	g.PV = d.readUint8()
	g.Type = d.readUint8()
	if d.err != nil {
		return
	}
	if g.Type != 0 {
		d.failf(ErrUnsupported, "section 2: grid type %d (only regular lat/lon)", g.Type)
		return
	}

	g.Ni = d.readUint16()
	g.Nj = d.readUint16()
	g.Ymin = float64(d.readInt24()) / 1000
	g.Xmin = float64(d.readInt24()) / 1000
	g.ResolutionFlags = byte(d.readUint8())
	g.Ymax = float64(d.readInt24()) / 1000
	g.Xmax = float64(d.readInt24()) / 1000
	g.Di = float64(d.readInt16()) / 1000
	g.Dj = float64(d.readInt16()) / 1000
	g.ScanFlags = byte(d.readUint8())
	if d.err != nil {
		return
	}
	g.Raw = g.Extent

	for g.Xmin > g.Xmax && g.Di > 0 { // span crosses the antimeridian
		g.Xmin -= 360
	}
	for g.Xmax > 360 {
		g.Xmin -= 360
		g.Xmax -= 360
	}

	g.HasDiDj = g.ResolutionFlags&0x80 != 0
	g.EarthSpheric = g.ResolutionFlags&0x40 == 0
	g.UEastVNorth = g.ResolutionFlags&0x08 == 0

	g.ScanIPositive = g.ScanFlags&0x80 == 0
	g.ScanJPositive = g.ScanFlags&0x40 != 0
	g.AdjacentI = g.ScanFlags&0x20 == 0

	if g.Ni <= 1 || g.Nj <= 1 {
		d.failf(ErrStructure, "section 2: Ni=%d Nj=%d", g.Ni, g.Nj)
		return
	}
	if g.Points() > maxGridPoints {
		d.failf(ErrStructure, "section 2: %dx%d grid exceeds %d points", g.Ni, g.Nj, maxGridPoints)
		return
	}
	// Encoded increments are rounded to 1e-3 degree; derive them from the
	// bounds instead.
	g.Di = (g.Xmax - g.Xmin) / float64(g.Ni-1)
	g.Dj = (g.Ymax - g.Ymin) / float64(g.Nj-1)

	d.endSection(2, off, size, gdsLen)
}

// readSection3 decodes the bitmap section when section 1 flags one.
// A non-zero indicator refers to a predefined bitmap, which is not
// resolved: every point is then treated as present.
func (d *decoder) readSection3() {
	rec := d.rec
	off := d.tell()
	if !rec.Header.HasBMS {
		rec.sections[3] = section{offset: off}
		return
	}
	size := d.readUint24()
	rec.sections[3] = section{offset: off, size: size}
	d.readUint8()
	rec.Packing.BitmapIndicator = d.readUint16()
	if d.err != nil {
		return
	}
	if rec.Packing.BitmapIndicator != 0 {
		reportf(d.report, rec.ID, "predefined bitmap %d not supported, all points treated as present",
			rec.Packing.BitmapIndicator)
		d.endSection(3, off, size, 6)
		return
	}
	if size < 6 {
		d.failf(ErrStructure, "section 3: size %d", size)
		return
	}
	bits := make([]byte, size-6)
	if !d.readFull(bits) {
		return
	}
	rec.bitmap = bits
}
