package grib1

import (
	"fmt"
	"math"
)

// Axis selects the direction ReverseData mirrors along.
type Axis byte

const (
	// Horizontal mirrors every row end for end (column i ↔ Ni-1-i).
	Horizontal Axis = 'H'
	// Vertical mirrors every column end for end (row j ↔ Nj-1-j).
	Vertical Axis = 'V'
)

// ReverseData mirrors the value grid and the presence mask in place.
// Applying the same axis twice restores the original grid.
func (r *Record) ReverseData(axis Axis) {
	if r.values == nil {
		return
	}
	ni, nj := r.Grid.Ni, r.Grid.Nj
	swap := func(a, b int) {
		r.values[a], r.values[b] = r.values[b], r.values[a]
		if r.mask != nil {
			r.mask[a], r.mask[b] = r.mask[b], r.mask[a]
		}
	}
	switch axis {
	case Horizontal:
		for j := 0; j < nj; j++ {
			for i1, i2 := 0, ni-1; i1 < i2; i1, i2 = i1+1, i2-1 {
				swap(j*ni+i1, j*ni+i2)
			}
		}
	case Vertical:
		for i := 0; i < ni; i++ {
			for j1, j2 := 0, nj-1; j1 < j2; j1, j2 = j1+1, j2-1 {
				swap(j1*ni+i, j2*ni+i)
			}
		}
	}
}

// checkOrientation brings the grid to xmin<xmax, ymin<ymax with positive
// steps, mirroring the data to match, and wraps xmin into [-180, 180).
func (r *Record) checkOrientation() {
	g := &r.Grid
	if !r.ok || r.values == nil || g.Ni <= 1 || g.Nj <= 1 || g.Ymin == g.Ymax {
		if r.ok {
			r.err = fmt.Errorf("degenerate grid %dx%d, ymin=ymax=%g: %w", g.Ni, g.Nj, g.Ymin, ErrStructure)
		}
		r.ok = false
		return
	}
	if g.Xmin == g.Xmax { // global grid encoded with identical bounds
		if g.Di >= 0 {
			g.Xmin -= 360
		} else {
			g.Xmin += 360
		}
		g.Di = 360 / float64(g.Ni)
	}
	if g.Xmin > g.Xmax {
		r.ReverseData(Horizontal)
		g.Xmin, g.Xmax = g.Xmax, g.Xmin
		g.Di = math.Abs(g.Di)
	}
	if g.Ymin > g.Ymax {
		r.ReverseData(Vertical)
		g.Ymin, g.Ymax = g.Ymax, g.Ymin
		g.Dj = math.Abs(g.Dj)
	}
	for g.Xmin < -180 {
		g.Xmin += 360
		g.Xmax += 360
	}
	if r.verticalDataAreMirrored() {
		r.ambiguous = true
		r.ReverseData(Vertical)
		g.Dj = math.Abs(g.Dj)
	}
}

// mirroredProviders ship rows in the opposite order to their scan flags,
// announcing north-to-south bounds.
var mirroredProviders = []provenance{
	{7, 96, 4},      // Maxsea, same ident as NOAA
	{7, 81, 4},      // Maxsea, 2nd ident values
	{7, 96, 3},      // Maxsea "oceanic" model
	{7, 88, 233},    // Maxsea "oceanic" model
	{255, 255, 255}, // Maxsea tide current
}

// verticalDataAreMirrored detects the two known malformed-provider
// signatures whose header alone cannot tell the row order.
func (r *Record) verticalDataAreMirrored() bool {
	g := &r.Grid
	common := !g.HasDiDj &&
		g.Raw.Xmin < g.Raw.Xmax &&
		g.Di > 0 && g.Dj > 0 &&
		g.ScanIPositive && !g.ScanJPositive
	if !common {
		return false
	}
	id := r.provenance()
	switch {
	case id.in(mirroredProviders...):
		return g.Raw.Ymin > g.Raw.Ymax
	case id == scannav:
		return g.Raw.Ymin < g.Raw.Ymax
	}
	return false
}
