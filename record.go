// Package grib1 decodes single GRIB edition 1 records on regular lat/lon
// grids with simple packing, normalizes provider quirks into canonical
// parameter/level codes and interpolates values at arbitrary positions.
package grib1

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Missing returns the value stored in cells the bitmap marks absent.
// NaN is never produced by unpacking finite codes.
func Missing() float64 { return math.NaN() }

// IsMissing reports whether v is the missing-value sentinel.
func IsMissing(v float64) bool { return math.IsNaN(v) }

// Header holds sections 0 and 1: identification, product and times.
type Header struct {
	Edition      int
	TotalSize    int
	TableVersion int
	Center       int
	Model        int
	GridID       int
	HasGDS       bool
	HasBMS       bool

	// RawCode is the product as transmitted, before quirks translation.
	RawCode DataCode

	RefTime   time.Time
	ValidTime time.Time
	TimeUnit  int
	P1, P2    int
	TimeRange int

	DecimalScale  int
	DecimalFactor float64 // 10^DecimalScale
}

// Extent is a lat/lon bounding box with its grid steps, in degrees.
type Extent struct {
	Xmin, Xmax float64
	Ymin, Ymax float64
	Di, Dj     float64
}

// Grid holds section 2 for a regular lat/lon grid.
// Values are stored row-major: Values()[j*Ni + i], j growing northward
// once the record is oriented.
type Grid struct {
	Type   int
	NV, PV int
	Ni, Nj int
	Extent

	ResolutionFlags byte
	ScanFlags       byte

	HasDiDj       bool
	EarthSpheric  bool
	UEastVNorth   bool
	ScanIPositive bool
	ScanJPositive bool
	AdjacentI     bool

	EntireWorldInLongitude bool

	// Raw is the extent as encoded, before any normalization.
	Raw Extent
}

// Points returns Ni·Nj.
func (g *Grid) Points() int { return g.Ni * g.Nj }

// Packing holds the section 4 simple packing parameters.
type Packing struct {
	Flags           byte
	BinaryScale     int // E
	Reference       float64
	Bits            int
	UnusedBits      int
	BitmapIndicator int // section 3; 0 when the bitmap follows
}

// section records where a section lives in the stream. Only meaningful
// while decoding.
type section struct {
	offset int64
	size   int
}

// Record is one decoded GRIB1 record: one parameter on one level at one
// forecast time.
type Record struct {
	ID      int
	Offset  int64 // stream offset of the "GRIB" marker
	Header  Header
	Grid    Grid
	Packing Packing

	code     DataCode
	provider Provider

	values []float64
	mask   []bool // nil when every cell is present
	bitmap []byte // section 3 bits as transmitted

	sections [6]section

	ok         bool
	eof        bool
	knownData  bool
	waveData   bool
	ambiguous  bool
	duplicated bool
	err        error
}

// OK reports whether the record decoded completely and has valid geometry.
func (r *Record) OK() bool { return r.ok }

// EOF reports whether decoding stopped on a short read.
func (r *Record) EOF() bool { return r.eof }

// Err returns the fatal error that invalidated the record, if any.
func (r *Record) Err() error { return r.err }

// KnownData reports whether the quirks table recognized the provider.
func (r *Record) KnownData() bool { return r.knownData }

// WaveData reports whether the canonical parameter is a wave parameter.
func (r *Record) WaveData() bool { return r.waveData }

// AmbiguousOrientation reports whether rows were flipped to compensate for
// a provider known to mislabel its scan direction.
func (r *Record) AmbiguousOrientation() bool { return r.ambiguous }

// Duplicated reports whether r was produced by Clone.
func (r *Record) Duplicated() bool { return r.duplicated }

// Provider returns the provenance tag set by the quirks table.
func (r *Record) Provider() Provider { return r.provider }

// DataCode returns the canonical product code.
func (r *Record) DataCode() DataCode { return r.code }

// SetDataCode reassigns the canonical product code.
func (r *Record) SetDataCode(c DataCode) { r.code = c }

// SetValidTime overrides the forecast validity time.
func (r *Record) SetValidTime(t time.Time) { r.Header.ValidTime = t.UTC() }

// Values returns the value grid. The slice is owned by the record.
func (r *Record) Values() []float64 { return r.values }

func (r *Record) inGrid(i, j int) bool {
	return r.values != nil && i >= 0 && i < r.Grid.Ni && j >= 0 && j < r.Grid.Nj
}

// HasValue reports whether cell (i, j) exists and carries a value.
func (r *Record) HasValue(i, j int) bool {
	if !r.inGrid(i, j) {
		return false
	}
	return r.mask == nil || r.mask[j*r.Grid.Ni+i]
}

// Value returns cell (i, j), or the missing sentinel outside the grid.
func (r *Record) Value(i, j int) float64 {
	if !r.inGrid(i, j) {
		return Missing()
	}
	return r.values[j*r.Grid.Ni+i]
}

// ValueFor returns cell (i, j) when code matches the record's canonical
// code, the missing sentinel otherwise.
func (r *Record) ValueFor(code DataCode, i, j int) float64 {
	if r.code != code {
		return Missing()
	}
	return r.Value(i, j)
}

// MultiplyAllData scales every present value by k.
func (r *Record) MultiplyAllData(k float64) {
	for idx := range r.values {
		if r.mask == nil || r.mask[idx] {
			r.values[idx] *= k
		}
	}
}

// Clone returns a deep copy of r. The copy shares no buffers with r and
// reports Duplicated.
func (r *Record) Clone() *Record {
	c := *r
	if r.values != nil {
		c.values = append([]float64(nil), r.values...)
	}
	if r.mask != nil {
		c.mask = append([]bool(nil), r.mask...)
	}
	if r.bitmap != nil {
		c.bitmap = append([]byte(nil), r.bitmap...)
	}
	c.duplicated = true
	return &c
}

// String dumps identification, geometry and flags over several lines.
func (r *Record) String() string {
	var b strings.Builder
	h, g := &r.Header, &r.Grid
	fmt.Fprintf(&b, "====== GribRecord %d\n", r.ID)
	fmt.Fprintf(&b, "center=%d model=%d grid=%d provider=%s\n", h.Center, h.Model, h.GridID, r.provider)
	fmt.Fprintf(&b, "code=%s raw=%s\n", r.code, h.RawCode)
	fmt.Fprintf(&b, "hour=%g ref=%s valid=%s\n",
		h.ValidTime.Sub(h.RefTime).Hours(),
		h.RefTime.Format("2006-01-02 15:04"), h.ValidTime.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "raw   xmin=%f xmax=%f ymin=%f ymax=%f Di=%f Dj=%f\n",
		g.Raw.Xmin, g.Raw.Xmax, g.Raw.Ymin, g.Raw.Ymax, g.Raw.Di, g.Raw.Dj)
	fmt.Fprintf(&b, "final xmin=%f xmax=%f ymin=%f ymax=%f Di=%f Dj=%f\n",
		g.Xmin, g.Xmax, g.Ymin, g.Ymax, g.Di, g.Dj)
	fmt.Fprintf(&b, "Ni=%d Nj=%d entireWorldInLongitude=%t\n", g.Ni, g.Nj, g.EntireWorldInLongitude)
	fmt.Fprintf(&b, "hasDiDj=%t hasBMS=%t isScanIpositive=%t isScanJpositive=%t isAdjacentI=%t\n",
		g.HasDiDj, h.HasBMS, g.ScanIPositive, g.ScanJPositive, g.AdjacentI)
	fmt.Fprintf(&b, "ok=%t known=%t wave=%t ambiguous=%t duplicated=%t",
		r.ok, r.knownData, r.waveData, r.ambiguous, r.duplicated)
	return b.String()
}
