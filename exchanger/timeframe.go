package exchanger

import (
	"fmt"
	"strconv"
	"time"
)

// ParseTimeframe converts an interval code such as "15m", "4h" or "1M" into a duration.
// Months count as 30 days and years as 365.
func ParseTimeframe(tf string) (time.Duration, error) {
	if len(tf) < 2 {
		return 0, fmt.Errorf("invalid timeframe %q", tf)
	}
	n, err := strconv.Atoi(tf[:len(tf)-1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid timeframe %q", tf)
	}
	var unit time.Duration
	switch tf[len(tf)-1] {
	case 's':
		unit = time.Second
	case 'm':
		unit = time.Minute
	case 'h', 'H':
		unit = time.Hour
	case 'd', 'D':
		unit = 24 * time.Hour
	case 'w', 'W':
		unit = 7 * 24 * time.Hour
	case 'M':
		unit = 30 * 24 * time.Hour
	case 'y', 'Y':
		unit = 365 * 24 * time.Hour
	default:
		return 0, fmt.Errorf("invalid timeframe %q", tf)
	}
	return time.Duration(n) * unit, nil
}

// EstimateBars returns how many bars of timeframe fit between start and end, inclusive of start.
func EstimateBars(start, end time.Time, timeframe string) (int, error) {
	d, err := ParseTimeframe(timeframe)
	if err != nil {
		return 0, err
	}
	if end.Before(start) {
		return 0, fmt.Errorf("end %s is before start %s", end, start)
	}
	return int(end.Sub(start)/d) + 1, nil
}
