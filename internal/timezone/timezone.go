package timezone

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Schedule timings carry the airport's local offset, e.g.
// 2025-12-01T10:20+01:00. Keeping the parsed offset means Format calls
// below yield local wall-clock values without a timezone database.
var timingFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04-07:00",
	"2006-01-02T15:04:05-0700", // Without colon
	"2006-01-02T15:04-0700",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func ParseTimeWithOffset(timeStr string) (time.Time, error) {
	for _, format := range timingFormats {
		if t, err := time.Parse(format, timeStr); err == nil {
			return t, nil
		}
	}

	return time.Time{}, &time.ParseError{
		Value:   timeStr,
		Message: "unable to parse time string",
	}
}

// LocalDate formats t as YYYY-MM-DD in its own offset.
func LocalDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// LocalClock formats t as HH:MM:SS in its own offset.
func LocalClock(t time.Time) string {
	return t.Format("15:04:05")
}

// ShiftDate moves a YYYY-MM-DD date by the given number of days.
func ShiftDate(date string, days int) (string, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, days).Format("2006-01-02"), nil
}

var isoDurationPattern = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseISODuration reads the day/hour/minute/second subset of ISO 8601
// durations used by the provider (PT2H10M, P1DT1H).
func ParseISODuration(s string) (time.Duration, error) {
	u := strings.ToUpper(strings.TrimSpace(s))
	m := isoDurationPattern.FindStringSubmatch(u)
	if m == nil || u == "P" || u == "PT" {
		return 0, fmt.Errorf("invalid ISO 8601 duration %q", s)
	}

	units := []time.Duration{24 * time.Hour, time.Hour, time.Minute, time.Second}
	var d time.Duration
	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, err
		}
		d += time.Duration(n) * unit
	}
	return d, nil
}

// FormatISODuration renders d as PTnHnM, dropping seconds.
func FormatISODuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	total := int(d.Minutes())
	hours := total / 60
	mins := total % 60

	var b strings.Builder
	b.WriteString("PT")
	if hours > 0 {
		b.WriteString(strconv.Itoa(hours) + "H")
	}
	if mins > 0 || hours == 0 {
		b.WriteString(strconv.Itoa(mins) + "M")
	}
	return b.String()
}
