package scraper

import (
	"regexp"
	"strings"
	"time"
)

var coarseDate = regexp.MustCompile(`^[a-zA-Z]+ \d{4}$`)

// ParseCoarseDate parses "Oct 2009" style dates into the first day of that
// month. Any other shape yields nil.
func ParseCoarseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if !coarseDate.MatchString(s) {
		return nil
	}
	t, err := time.Parse("Jan 2006", s)
	if err != nil {
		return nil
	}
	return &t
}

// splitTimeRange splits "Jan 2020 - Present · 3 yrs" into its start, end and
// duration. It assumes the "Mon YYYY - Mon YYYY" layout; other layouts leave
// the end empty.
func splitTimeRange(timeRange string) (from, to, duration string) {
	parts := strings.Split(timeRange, "·")
	times := strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		duration = strings.TrimSpace(parts[1])
	}

	tokens := strings.Fields(times)
	from = strings.Join(tokens[:min(2, len(tokens))], " ")
	if len(tokens) > 3 {
		to = strings.Join(tokens[3:], " ")
	}
	return from, to, duration
}

// splitDateRange splits an education range such as "Sep 2015 - Jun 2019" on
// its dash. A single value is treated as both start and end.
func splitDateRange(timeRange string) (start, end string) {
	timeRange = strings.TrimSpace(strings.Split(timeRange, "·")[0])
	if timeRange == "" {
		return "", ""
	}
	sep := strings.NewReplacer("–", "-", "—", "-")
	parts := strings.SplitN(sep.Replace(timeRange), "-", 2)
	if len(parts) == 1 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[0])
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
}
