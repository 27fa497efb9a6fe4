package usecase

import (
	"math"
	"strings"
	"time"
)

const barLength = 20

// YearProgress returns the percentage of now's calendar year that has
// elapsed, computed in UTC.
func YearProgress(now time.Time) float64 {
	now = now.UTC()
	start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(now.Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	return now.Sub(start).Seconds() / end.Sub(start).Seconds() * 100
}

// ProgressBar renders p as a fixed-width bar. Partial cells are truncated.
func ProgressBar(p float64) string {
	filled := int(math.Floor(p / 100 * barLength))
	filled = max(0, min(barLength, filled))
	return strings.Repeat("█", filled) + strings.Repeat("░", barLength-filled)
}
