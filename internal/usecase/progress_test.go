package usecase

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func filled(bar string) int {
	return strings.Count(bar, "█")
}

func TestProgressBar_Fills(t *testing.T) {
	cases := []struct {
		percent float64
		want    int
	}{
		{0, 0},
		{4.99, 0},
		{5, 1},
		{50, 10},
		{54.99, 10},
		{99.99, 19},
		{100, 20},
		{-3, 0},
		{140, 20},
	}
	for _, tc := range cases {
		bar := ProgressBar(tc.percent)
		require.Equal(t, tc.want, filled(bar), "percent=%v", tc.percent)
		require.Equal(t, barLength, utf8.RuneCountInString(bar), "percent=%v", tc.percent)
	}
}

func TestYearProgress(t *testing.T) {
	require.InDelta(t, 0, YearProgress(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)), 1e-9)
	// 2026 has 365 days; noon on Jul 2 is day 182.5.
	require.InDelta(t, 50, YearProgress(time.Date(2026, 7, 2, 12, 0, 0, 0, time.UTC)), 1e-9)
	// 2028 is a leap year; noon on Jul 2 is day 183.5 of 366.
	require.InDelta(t, 183.5/366*100, YearProgress(time.Date(2028, 7, 2, 12, 0, 0, 0, time.UTC)), 1e-9)
	require.Less(t, YearProgress(time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC)), 100.0)
}

func TestYearProgress_UsesUTC(t *testing.T) {
	// 01:00 on Jan 1 in UTC+2 is still Dec 31 in UTC.
	local := time.Date(2027, 1, 1, 1, 0, 0, 0, time.FixedZone("EET", 2*60*60))
	require.Greater(t, YearProgress(local), 99.9)
}
