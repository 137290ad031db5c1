package grib1

import "math"

// snapEps is the distance, in grid units, under which a position is taken
// to be exactly on a grid point.
const snapEps = 1e-4

func (g *Grid) containsX(x float64) bool { return x >= g.Xmin && x <= g.Xmax }
func (g *Grid) containsY(y float64) bool { return y >= g.Ymin && y <= g.Ymax }

// InterpolatedValue returns the value at longitude px, latitude py.
//
// Positions within snapEps of a grid point return that point. Otherwise at
// least 3 of the 4 surrounding points must be present. Without interpolate
// the nearest of the four is returned; with it the four are blended with
// smoothstep weights, or, when one corner is missing, the remaining
// triangle is blended. The missing sentinel is returned whenever no value
// can be produced.
func (r *Record) InterpolatedValue(px, py float64, interpolate bool) float64 {
	g := &r.Grid
	if !r.ok || g.Di == 0 || g.Dj == 0 {
		return Missing()
	}
	if !g.containsY(py) || math.IsNaN(px) || math.IsInf(px, 0) {
		return Missing()
	}

	var pi float64
	var i0, i1 int
	switch {
	case g.containsX(px):
		pi = (px - g.Xmin) / g.Di
		i0 = int(math.Floor(pi))
		i1 = i0 + 1
	case !g.EntireWorldInLongitude:
		px += 360
		if !g.containsX(px) {
			px -= 2 * 360
			if !g.containsX(px) {
				return Missing()
			}
		}
		pi = (px - g.Xmin) / g.Di
		i0 = int(math.Floor(pi))
		i1 = i0 + 1
	default:
		px = g.Xmin + math.Mod(math.Mod(px-g.Xmin, 360)+360, 360)
		pi = (px - g.Xmin) / g.Di
		i0 = int(math.Floor(pi))
		i1 = i0 + 1
		if px > g.Xmax { // between the last column and the seam
			i1 = 0
		}
	}
	pj := (py - g.Ymin) / g.Dj
	j0 := int(math.Floor(pj))
	j1 := j0 + 1

	ddx, ddy := math.Abs(pi-float64(i0)), math.Abs(pj-float64(j0))
	ii, jj := snap(ddx, i0, i1), snap(ddy, j0, j1)
	if ii >= 0 && jj >= 0 {
		if r.HasValue(ii, jj) {
			return r.Value(ii, jj)
		}
		return Missing()
	}

	h00, h10 := r.HasValue(i0, j0), r.HasValue(i1, j0)
	h01, h11 := r.HasValue(i0, j1), r.HasValue(i1, j1)
	nbval := 0
	for _, h := range [...]bool{h00, h10, h01, h11} {
		if h {
			nbval++
		}
	}
	if nbval < 3 {
		return Missing()
	}

	dx := pi - float64(i0)
	dy := pj - float64(j0)
	if !interpolate {
		i, j := i0, j0
		if dx >= 0.5 {
			i = i1
		}
		if dy >= 0.5 {
			j = j1
		}
		return r.Value(i, j)
	}

	dx = smoothstep(dx)
	dy = smoothstep(dy)
	if nbval == 4 {
		x1 := (1-dx)*r.Value(i0, j0) + dx*r.Value(i1, j0)
		x2 := (1-dx)*r.Value(i0, j1) + dx*r.Value(i1, j1)
		return (1-dy)*x1 + dy*x2
	}

	// One corner is missing. A is the corner diagonal to it, B and C its
	// neighbours; kx and ky are the distances from A along each edge.
	var xa, xb, xc, kx, ky float64
	switch {
	case !h00:
		xa, xb, xc = r.Value(i1, j1), r.Value(i0, j1), r.Value(i1, j0)
		kx, ky = 1-dx, 1-dy
	case !h01:
		xa, xb, xc = r.Value(i1, j0), r.Value(i1, j1), r.Value(i0, j0)
		kx, ky = dy, 1-dx
	case !h10:
		xa, xb, xc = r.Value(i0, j1), r.Value(i0, j0), r.Value(i1, j1)
		kx, ky = 1-dy, dx
	default:
		xa, xb, xc = r.Value(i0, j0), r.Value(i1, j0), r.Value(i0, j1)
		kx, ky = dx, dy
	}
	return triangle(xa, xb, xc, kx, ky)
}

// InterpolatedValueFor is InterpolatedValue restricted to records whose
// canonical code is code.
func (r *Record) InterpolatedValueFor(code DataCode, px, py float64, interpolate bool) float64 {
	if r.code != code {
		return Missing()
	}
	return r.InterpolatedValue(px, py, interpolate)
}

// snap returns lo or hi when d is within snapEps of either, -1 otherwise.
func snap(d float64, lo, hi int) int {
	switch {
	case d < snapEps:
		return lo
	case 1-d < snapEps:
		return hi
	}
	return -1
}

// smoothstep is the cubic Hermite weight (3-2d)d².
func smoothstep(d float64) float64 { return (3 - 2*d) * d * d }

// triangle blends vertex a with its neighbours b and c. The point lies
// outside the triangle when kx+ky is not in [0, 1].
func triangle(a, b, c, kx, ky float64) float64 {
	k := kx + ky
	switch {
	case k < 0 || k > 1:
		return Missing()
	case k == 0:
		return a
	}
	vx := k*b + (1-k)*a
	vy := k*c + (1-k)*a
	k2 := kx / k
	return k2*vx + (1-k2)*vy
}
