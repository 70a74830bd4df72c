//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

// Package timing records timing samples of the OT extension phases
// and renders them with the transfer statistics.
package timing

import (
	"fmt"
	"io"
	"math/bits"
	"os"
	"time"

	"github.com/markkurossi/softspoken/p2p"
	"github.com/markkurossi/tabulate"
	"github.com/markkurossi/text/superscript"
)

// FileSize implements human readable byte counts.
type FileSize uint64

func (s FileSize) String() string {
	if s > 1000*1000*1000*1000 {
		return fmt.Sprintf("%dTB", s/(1000*1000*1000*1000))
	} else if s > 1000*1000*1000 {
		return fmt.Sprintf("%dGB", s/(1000*1000*1000))
	} else if s > 1000*1000 {
		return fmt.Sprintf("%dMB", s/(1000*1000))
	} else if s > 1000 {
		return fmt.Sprintf("%dkB", s/1000)
	} else {
		return fmt.Sprintf("%dB", s)
	}
}

// Count formats the OT count n. Powers of two are formatted as 2
// with a superscript exponent.
func Count(n int) string {
	if n > 0 && n&(n-1) == 0 {
		return "2" + superscript.Itoa(bits.TrailingZeros(uint(n)))
	}
	return fmt.Sprintf("%d", n)
}

// Rate formats the number of OTs per second.
func Rate(n int, d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	rate := float64(n) / d.Seconds()
	switch {
	case rate > 1000*1000:
		return fmt.Sprintf("%.2fM/s", rate/(1000*1000))
	case rate > 1000:
		return fmt.Sprintf("%.2fk/s", rate/1000)
	default:
		return fmt.Sprintf("%.0f/s", rate)
	}
}

// Timing records the phases of an OT extension run.
type Timing struct {
	Start   time.Time
	Samples []*Sample
}

// Sample is one phase of the run. Count is the number of OTs the
// phase produced.
type Sample struct {
	Label string
	Start time.Time
	End   time.Time
	Count int
}

// Duration returns the duration of the phase.
func (s *Sample) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// NewTiming creates a new Timing instance.
func NewTiming() *Timing {
	return &Timing{
		Start: time.Now(),
	}
}

// Sample ends the current phase with label. The phase starts where
// the previous phase ended.
func (t *Timing) Sample(label string, count int) *Sample {
	start := t.Start
	if len(t.Samples) > 0 {
		start = t.Samples[len(t.Samples)-1].End
	}
	sample := &Sample{
		Label: label,
		Start: start,
		End:   time.Now(),
		Count: count,
	}
	t.Samples = append(t.Samples, sample)
	return sample
}

// Count returns the number of OTs of all phases.
func (t *Timing) Count() int {
	var n int
	for _, s := range t.Samples {
		n += s.Count
	}
	return n
}

// Print prints the report to standard output.
func (t *Timing) Print(stats p2p.IOStats) {
	t.Fprint(os.Stdout, stats)
}

// Fprint prints the report to the writer w.
func (t *Timing) Fprint(w io.Writer, stats p2p.IOStats) {
	if len(t.Samples) == 0 {
		return
	}
	total := t.Samples[len(t.Samples)-1].End.Sub(t.Start)

	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Phase").SetAlign(tabulate.ML)
	tab.Header("Time").SetAlign(tabulate.MR)
	tab.Header("%").SetAlign(tabulate.MR)
	tab.Header("OTs").SetAlign(tabulate.MR)
	tab.Header("Rate").SetAlign(tabulate.MR)

	for _, s := range t.Samples {
		row := tab.Row()
		row.Column(s.Label)
		row.Column(s.Duration().String())
		row.Column(percent(int64(s.Duration()), int64(total)))
		if s.Count > 0 {
			row.Column(Count(s.Count))
			row.Column(Rate(s.Count, s.Duration()))
		} else {
			row.Column("")
			row.Column("")
		}
	}
	count := t.Count()

	row := tab.Row()
	row.Column("Total").SetFormat(tabulate.FmtBold)
	row.Column(total.String()).SetFormat(tabulate.FmtBold)
	row.Column("")
	row.Column(Count(count)).SetFormat(tabulate.FmtBold)
	row.Column(Rate(count, total)).SetFormat(tabulate.FmtBold)

	tab.Print(w)

	sent := stats.Sent.Load()
	recvd := stats.Recvd.Load()

	xfer := tabulate.New(tabulate.UnicodeLight)
	xfer.Header("Xfer").SetAlign(tabulate.ML)
	xfer.Header("Bytes").SetAlign(tabulate.MR)
	xfer.Header("%").SetAlign(tabulate.MR)
	xfer.Header("Bits/OT").SetAlign(tabulate.MR)

	for _, r := range []struct {
		label string
		n     uint64
	}{
		{"Sent", sent},
		{"Rcvd", recvd},
		{"Total", sent + recvd},
	} {
		row := xfer.Row()
		row.Column(r.label)
		row.Column(FileSize(r.n).String())
		row.Column(percent(int64(r.n), int64(sent+recvd)))
		if count > 0 {
			row.Column(fmt.Sprintf("%.2f", float64(8*r.n)/float64(count)))
		} else {
			row.Column("-")
		}
	}
	row = xfer.Row()
	row.Column("Flushes")
	row.Column(fmt.Sprintf("%d", stats.Flushed.Load()))

	xfer.Print(w)
}

func percent(v, total int64) string {
	if total <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", float64(v)/float64(total)*100)
}
