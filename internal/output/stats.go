package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/momingse/fzsearch/internal/telemetry"
)

const statsBarWidth = 20

// Stats prints a telemetry summary.
func (w *Writer) Stats(s *telemetry.Snapshot, format Format) error {
	if format == FormatJSON {
		return w.JSON(s)
	}

	var b strings.Builder
	label := func(name string) string {
		return w.styles.Label.Render(fmt.Sprintf("%-16s", name))
	}

	b.WriteString(w.styles.Header.Render("Search statistics"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s%d\n", label("queries"), s.TotalQueries)
	fmt.Fprintf(&b, "%s%d (%.1f%%)\n", label("zero results"), s.ZeroResultCount, s.ZeroResultPercentage())
	fmt.Fprintf(&b, "%s%d (%.1f%%)\n", label("repeats"), s.ExactRepeatCount, s.ExactRepeatRate()*100)
	fmt.Fprintf(&b, "%s%d\n", label("records scanned"), s.RecordsSearched)
	fmt.Fprintf(&b, "%s%s\n", label("mean latency"), roundDuration(s.MeanLatency()))
	fmt.Fprintf(&b, "%s%s\n", label("max latency"), roundDuration(s.MaxLatency))

	if s.TotalQueries > 0 {
		b.WriteString("\n")
		b.WriteString(w.styles.Header.Render("Latency"))
		b.WriteString("\n")
		for _, bucket := range telemetry.Buckets {
			count := s.LatencyDistribution[bucket]
			fmt.Fprintf(&b, "%s%s %d\n", label(string(bucket)),
				w.styles.Bar.Render(renderBar(count, s.TotalQueries, statsBarWidth)), count)
		}
	}

	if len(s.TopTerms) > 0 {
		b.WriteString("\n")
		b.WriteString(w.styles.Header.Render("Top terms"))
		b.WriteString("\n")
		for i, tc := range s.TopTerms {
			if i == 5 {
				break
			}
			fmt.Fprintf(&b, "%s%d\n", label(tc.Term), tc.Count)
		}
	}

	text := strings.TrimRight(b.String(), "\n")
	if w.color {
		text = w.styles.Panel.Render(text)
	}
	_, err := fmt.Fprintln(w.out, text)
	return err
}

func roundDuration(d time.Duration) time.Duration {
	switch {
	case d >= time.Second:
		return d.Round(time.Millisecond)
	case d >= time.Millisecond:
		return d.Round(10 * time.Microsecond)
	default:
		return d.Round(time.Microsecond)
	}
}
