package usecase

import (
	"math/rand/v2"
	"time"

	"year-progress-bot/internal/domain"
)

// ensureSilentDays returns the silent days for now's month, drawing one or
// two distinct days the first time the month is seen.
func ensureSilentDays(rng *rand.Rand, st *domain.State, now time.Time) []int {
	month := now.Format("2006-01")
	if days, ok := st.SilentDays(month); ok {
		return days
	}
	n := daysIn(now.Year(), now.Month())
	k := 1 + rng.IntN(2)
	days := make([]int, 0, k)
	for _, d := range rng.Perm(n)[:k] {
		days = append(days, d+1)
	}
	st.SetSilentDays(month, days)
	return days
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
