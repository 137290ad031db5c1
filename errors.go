package grib1

import "errors"

// Fatal decode errors wrap exactly one of these kinds; test with errors.Is.
var (
	// ErrStructure reports a malformed record: bad magic, inconsistent
	// section sizes, degenerate grid geometry, missing trailer.
	ErrStructure = errors.New("grib1: malformed record")

	// ErrTruncated reports a short read from the underlying stream.
	// Records failing this way also report EOF() == true.
	ErrTruncated = errors.New("grib1: truncated stream")

	// ErrUnsupported reports a valid GRIB feature outside the decoded
	// subset: edition 2, non lat/lon grids, complex or spherical-harmonic
	// packing, integer values, additional BDS flags, unsupported time units.
	ErrUnsupported = errors.New("grib1: unsupported feature")
)
