// Command grib1 lists the records of GRIB edition 1 files and prints their
// values at a lat/lon.
//
// Usage:
//
//	grib1 [flags] <file|url|s3://bucket/key>...
//
// Examples:
//
//	grib1 gfs.t00z.pgrbf06.grib
//	grib1 -lat 47.5 -lon -3.2 -interp gfs.grib.gz
//	grib1 -lat 47.5 -lon -3.2 -code 11-100-850 -json gfs.grib
//	grib1 -match ":TMP:850 mb:" -lat 47.5 -lon -3.2 https://example.org/gfs.grib
//	grib1 -dump s3://bucket/ww3/multi_1.glo_30m.t00z.grib
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"github.com/geal-ai/grib1"
)

// query is what to extract from every decoded record.
type query struct {
	lat, lon    float64
	interpolate bool
	code        *grib1.DataCode
}

func (q query) hasPoint() bool { return !math.IsNaN(q.lat) && !math.IsNaN(q.lon) }

// jsonRecord is one record in JSON output.
type jsonRecord struct {
	ID       int       `json:"id"`
	Offset   int64     `json:"offset"`
	Code     string    `json:"code"`
	RawCode  string    `json:"raw_code"`
	Provider string    `json:"provider"`
	Center   int       `json:"center"`
	Model    int       `json:"model"`
	Grid     int       `json:"grid"`
	Ref      string    `json:"ref"`
	Valid    string    `json:"valid"`
	Ni       int       `json:"ni"`
	Nj       int       `json:"nj"`
	Bounds   []float64 `json:"bounds"`
	Known    bool      `json:"known"`
	Value    *float64  `json:"value,omitempty"`
}

// jsonInput groups the records of one input.
type jsonInput struct {
	Input   string       `json:"input"`
	Records []jsonRecord `json:"records"`
	Error   string       `json:"error,omitempty"`
}

// inputResult holds one input's outcome.
type inputResult struct {
	input   string
	records []*grib1.Record
	err     error
}

func main() {
	lat := flag.Float64("lat", math.NaN(), "Latitude in degrees north")
	lon := flag.Float64("lon", math.NaN(), "Longitude in degrees east")
	interp := flag.Bool("interp", false, "Interpolate between grid points instead of taking the nearest")
	codeStr := flag.String("code", "", "Only records with this data code, as type-leveltype-levelvalue (e.g. 11-100-850)")
	match := flag.String("match", "", "Fetch only the record whose <input>.inv inventory line contains this string")
	asJSON := flag.Bool("json", false, "Output results as JSON")
	dump := flag.Bool("dump", false, "Print the full header of every record")
	flag.Usage = usage
	flag.Parse()
	defer glog.Flush()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "error: at least one input is required")
		usage()
		os.Exit(2)
	}

	q := query{lat: *lat, lon: *lon, interpolate: *interp}
	if math.IsNaN(q.lat) != math.IsNaN(q.lon) {
		glog.Exitf("-lat and -lon must be given together")
	}
	if *codeStr != "" {
		c, err := grib1.ParseDataCode(*codeStr)
		if err != nil {
			glog.Exitf("invalid -code: %v", err)
		}
		q.code = &c
	}

	cfg, err := loadConfig()
	if err != nil {
		glog.Exitf("config: %v", err)
	}
	client := grib1.NewClient()
	client.HTTPClient = &http.Client{Timeout: cfg.HTTPTimeout}
	if err := client.ConfigureS3(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Secure); err != nil {
		glog.Exitf("%v", err)
	}

	results := run(context.Background(), client, flag.Args(), *match, cfg.Concurrency)

	if *asJSON {
		emitJSON(results, q)
		return
	}
	failed := false
	for _, r := range results {
		if r.err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", r.input, r.err)
			failed = true
			continue
		}
		printRecords(r, q, *dump)
	}
	if failed {
		glog.Flush()
		os.Exit(1)
	}
}

// run decodes every input, up to limit at a time. Each input owns its own
// stream, so records of different inputs decode in parallel.
func run(ctx context.Context, client *grib1.Client, inputs []string, match string, limit int) []inputResult {
	results := make([]inputResult, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			res := inputResult{input: in}
			if match != "" {
				rec, err := client.FetchRecord(ctx, in, match)
				if rec != nil && rec.OK() {
					res.records = []*grib1.Record{rec}
				}
				res.err = err
			} else {
				res.records, res.err = decodeAll(ctx, client, in)
			}
			results[i] = res
			return nil // per-input failures are reported, not fatal
		})
	}
	_ = g.Wait()
	return results
}

// decodeAll walks every record of one input. An invalid record is skipped
// by resuming the scan after it; a short read ends the walk.
func decodeAll(ctx context.Context, client *grib1.Client, location string) ([]*grib1.Record, error) {
	r, err := client.Open(ctx, location)
	if err != nil {
		return nil, err
	}
	var recs []*grib1.Record
	for id := 1; ; id++ {
		if err := ctx.Err(); err != nil {
			return recs, err
		}
		rec, err := grib1.Decode(r, grib1.WithID(id))
		if err == nil {
			recs = append(recs, rec)
			continue
		}
		if rec.EOF() {
			if rec.Offset >= 0 {
				glog.Warningf("%s: %v", location, err)
			}
			return recs, nil
		}
		glog.Warningf("%s: %v, resynchronizing", location, err)
		next := rec.Offset + 1
		if n := rec.Offset + int64(rec.Header.TotalSize); n > next {
			next = n
		}
		if _, err := r.Seek(next, io.SeekStart); err != nil {
			return recs, err
		}
	}
}

func selected(rec *grib1.Record, q query) bool {
	return q.code == nil || rec.DataCode() == *q.code
}

func pointValue(rec *grib1.Record, q query) float64 {
	if q.code != nil {
		return rec.InterpolatedValueFor(*q.code, q.lon, q.lat, q.interpolate)
	}
	return rec.InterpolatedValue(q.lon, q.lat, q.interpolate)
}

func printRecords(r inputResult, q query, dump bool) {
	fmt.Printf("%s: %d records\n", r.input, len(r.records))
	for _, rec := range r.records {
		if !selected(rec, q) {
			continue
		}
		if dump {
			fmt.Println(rec)
			continue
		}
		h, g := &rec.Header, &rec.Grid
		line := fmt.Sprintf("  %4d  %-12s %-16s valid %s  %dx%d  [%g,%g]x[%g,%g]",
			rec.ID, rec.DataCode(), rec.Provider(), h.ValidTime.Format("2006-01-02 15:04Z"),
			g.Ni, g.Nj, g.Xmin, g.Xmax, g.Ymin, g.Ymax)
		if q.hasPoint() {
			if v := pointValue(rec, q); grib1.IsMissing(v) {
				line += "  (no value)"
			} else {
				line += fmt.Sprintf("  %g", v)
			}
		}
		fmt.Println(line)
	}
}

// emitJSON writes all inputs to stdout as indented JSON.
func emitJSON(results []inputResult, q query) {
	out := make([]jsonInput, len(results))
	for i, r := range results {
		in := jsonInput{Input: r.input, Records: []jsonRecord{}}
		if r.err != nil {
			in.Error = r.err.Error()
		}
		for _, rec := range r.records {
			if !selected(rec, q) {
				continue
			}
			in.Records = append(in.Records, toJSON(rec, q))
		}
		out[i] = in
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		glog.Exitf("json encode: %v", err)
	}
}

func toJSON(rec *grib1.Record, q query) jsonRecord {
	h, g := &rec.Header, &rec.Grid
	jr := jsonRecord{
		ID:       rec.ID,
		Offset:   rec.Offset,
		Code:     rec.DataCode().Key(),
		RawCode:  h.RawCode.Key(),
		Provider: rec.Provider().String(),
		Center:   h.Center,
		Model:    h.Model,
		Grid:     h.GridID,
		Ref:      h.RefTime.Format(time.RFC3339),
		Valid:    h.ValidTime.Format(time.RFC3339),
		Ni:       g.Ni,
		Nj:       g.Nj,
		Bounds:   []float64{g.Xmin, g.Xmax, g.Ymin, g.Ymax},
		Known:    rec.KnownData(),
	}
	if q.hasPoint() {
		if v := pointValue(rec, q); !grib1.IsMissing(v) {
			jr.Value = &v
		}
	}
	return jr
}

func usage() {
	fmt.Fprintln(os.Stderr, `grib1: list GRIB1 records and print values at a lat/lon

Usage:
  grib1 [flags] <file|url|s3://bucket/key>...

Environment:
  GRIB1_S3_ENDPOINT     S3 endpoint (default s3.amazonaws.com)
  GRIB1_S3_ACCESS_KEY   S3 access key (anonymous when empty)
  GRIB1_S3_SECRET_KEY   S3 secret key
  GRIB1_S3_SECURE       use TLS for S3 (default true)
  GRIB1_HTTP_TIMEOUT    HTTP timeout (default 120s)
  GRIB1_CONCURRENCY     inputs decoded in parallel (default 6)

Flags:`)
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr, `
Examples:
  grib1 gfs.t00z.pgrbf06.grib
  grib1 -lat 47.5 -lon -3.2 -interp gfs.grib.gz
  grib1 -lat 47.5 -lon -3.2 -code 11-100-850 -json gfs.grib
  grib1 -match ":TMP:850 mb:" -lat 47.5 -lon -3.2 https://example.org/gfs.grib`)
}
