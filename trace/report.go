package trace

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// timeRounding keeps reported durations to a sane precision.
const timeRounding = 10 * time.Microsecond

// Report renders the result as a short human-readable summary, with
// thousands separators so large op and byte counts stay readable.
func (r *Result) Report() string {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	p.Fprintf(&b, "ops:          %d (%d alloc / %d resize / %d release)\n",
		r.Ops, r.Allocs, r.Resizes, r.Releases)
	p.Fprintf(&b, "peak payload: %d bytes\n", r.PeakPayload)
	if r.FinalBytes > 0 {
		p.Fprintf(&b, "final region: %d bytes\n", r.FinalBytes)
		p.Fprintf(&b, "utilization:  %.1f%%\n", r.Utilization*100)
	}
	if r.LiveAtEnd > 0 {
		p.Fprintf(&b, "still live:   %d ids\n", r.LiveAtEnd)
	}
	p.Fprintf(&b, "elapsed:      %v (%.0f ops/s)\n", r.Elapsed.Round(timeRounding), r.OpsPerSec)
	return b.String()
}
