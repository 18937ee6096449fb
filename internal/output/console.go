// Package output renders human-readable load-test summaries to a terminal.
package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/quantfold/surge/internal/loadtest"
)

// Printer writes per-scenario summary blocks. The summary is presentation
// only; the JSON artifact is the interoperable surface.
type Printer struct {
	w      io.Writer
	scheme *colorScheme
}

// NewPrinter creates a printer for w. Colors are enabled when w is a
// terminal and noColor is false.
func NewPrinter(w io.Writer, noColor bool) *Printer {
	if w == nil {
		w = os.Stdout
	}
	useColor := !noColor && isTerminalWriter(w)
	return &Printer{w: w, scheme: newColorScheme(useColor)}
}

// PrintSuite writes one summary block per scenario, sorted by name.
func (p *Printer) PrintSuite(reports map[string]*loadtest.Report) {
	names := make([]string, 0, len(reports))
	for name := range reports {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p.PrintScenario(name, reports[name])
	}
}

// PrintScenario writes the summary block for one scenario.
func (p *Printer) PrintScenario(name string, r *loadtest.Report) {
	s := p.scheme

	fmt.Fprintf(p.w, "%s %s\n", s.header.Sprint("━━━"), s.header.Sprint(name))
	fmt.Fprintf(p.w, "  duration:    %s\n", r.Elapsed().Round(time.Millisecond))
	fmt.Fprintf(p.w, "  operations:  %d total, %d ok, %d failed (%.1f%% success)\n",
		r.TotalOperations, r.SuccessfulOperations, r.FailedOperations, r.SuccessRate()*100)
	fmt.Fprintf(p.w, "  latency:     avg %.1fms  p95 %.1fms  p99 %.1fms  max %.1fms\n",
		r.AverageLatencyMillis, r.P95LatencyMillis, r.P99LatencyMillis, r.MaxLatencyMillis)
	fmt.Fprintf(p.w, "  throughput:  %.1f ops/s\n", r.ThroughputOpsPerSecond)
	if r.TotalMessages > 0 {
		fmt.Fprintf(p.w, "  messages:    %d\n", r.TotalMessages)
	}

	for _, rec := range r.Recommendations {
		if r.MeetsTargets() {
			fmt.Fprintf(p.w, "  %s %s\n", s.pass.Sprint("✓"), rec)
		} else {
			fmt.Fprintf(p.w, "  %s %s\n", s.fail.Sprint("✗"), rec)
		}
	}
	fmt.Fprintln(p.w, strings.Repeat("─", 40))
}

type colorScheme struct {
	header *color.Color
	pass   *color.Color
	fail   *color.Color
}

func newColorScheme(useColor bool) *colorScheme {
	s := &colorScheme{
		header: color.New(color.FgCyan, color.Bold),
		pass:   color.New(color.FgGreen),
		fail:   color.New(color.FgYellow),
	}
	if !useColor {
		s.header.DisableColor()
		s.pass.DisableColor()
		s.fail.DisableColor()
	}
	return s
}

func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
