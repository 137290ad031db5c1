package grib1

import (
	"fmt"

	"github.com/golang/glog"
)

// Reporter receives non-fatal diagnostics produced while decoding.
// Report must not block for long and must not panic.
type Reporter interface {
	Report(msg string)
}

// ReporterFunc adapts a plain function to Reporter.
type ReporterFunc func(msg string)

// Report calls f(msg).
func (f ReporterFunc) Report(msg string) { f(msg) }

// Discard drops every diagnostic.
var Discard Reporter = ReporterFunc(func(string) {})

// glogReporter forwards diagnostics to glog at warning severity.
type glogReporter struct{}

func (glogReporter) Report(msg string) { glog.WarningDepth(2, msg) }

// DefaultReporter returns the glog-backed sink used when no WithReporter
// option is given.
func DefaultReporter() Reporter { return glogReporter{} }

func reportf(r Reporter, id int, format string, args ...any) {
	r.Report(fmt.Sprintf("record %d: ", id) + fmt.Sprintf(format, args...))
}
