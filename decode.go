package grib1

import (
	"fmt"
	"io"
	"math"
)

// Option configures Decode.
type Option func(*decodeOptions)

type decodeOptions struct {
	report Reporter
	id     int
}

// WithReporter sends non-fatal diagnostics to rep instead of glog.
func WithReporter(rep Reporter) Option {
	return func(o *decodeOptions) {
		if rep != nil {
			o.report = rep
		}
	}
}

// WithID sets the record id quoted in diagnostics and errors.
func WithID(id int) Option {
	return func(o *decodeOptions) { o.id = id }
}

// Decode reads one GRIB1 record from r, starting at the current offset.
// Stray bytes before the "GRIB" marker are skipped.
//
// The returned record is never nil. On a fatal error it is returned along
// with the error, OK() is false and whatever was decoded before the failure
// stays reachable: in particular the value grid survives a bad trailer.
// EOF() distinguishes short reads from malformed data so that a caller
// walking a file can decide whether to resynchronize on the next marker.
//
// r must not be used concurrently; distinct streams may be decoded in
// parallel.
func Decode(r io.ReadSeeker, opts ...Option) (*Record, error) {
	o := decodeOptions{report: DefaultReporter()}
	for _, opt := range opts {
		opt(&o)
	}
	rec := &Record{
		ID:        o.id,
		Offset:    -1,
		knownData: true,
		provider:  OtherDataCenter,
	}
	d := &decoder{r: r, rec: rec, report: o.report}

	for _, step := range [...]func(){
		d.readSection0,
		d.readSection1,
		d.readSection2,
		d.readSection3,
		d.readSection4,
		d.readSection5,
	} {
		step()
		if d.err != nil {
			break
		}
	}
	rec.ok = d.err == nil
	rec.eof = d.eof
	if d.err != nil {
		rec.err = fmt.Errorf("record %d: %w", rec.ID, d.err)
	}

	rec.checkOrientation()
	if rec.ok {
		rec.translateDataType(o.report)
		g := &rec.Grid
		g.EntireWorldInLongitude = math.Abs(g.Xmax-g.Xmin) >= 360 ||
			math.Abs(g.Xmax-360+g.Di-g.Xmin) < math.Abs(g.Di/20)
	}
	return rec, rec.err
}
