package usecase

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"year-progress-bot/internal/domain"
)

func TestEnsureSilentDays_DrawsOneOrTwoDistinctDays(t *testing.T) {
	now := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	sizes := map[int]bool{}
	for seed := uint64(0); seed < 200; seed++ {
		st := domain.NewState()
		days := ensureSilentDays(rand.New(rand.NewPCG(seed, seed+1)), st, now)
		require.GreaterOrEqual(t, len(days), 1)
		require.LessOrEqual(t, len(days), 2)
		if len(days) == 2 {
			require.NotEqual(t, days[0], days[1])
		}
		for _, d := range days {
			require.GreaterOrEqual(t, d, 1)
			require.LessOrEqual(t, d, 28)
		}
		stored, ok := st.SilentDays("2026-02")
		require.True(t, ok)
		require.Equal(t, days, stored)
		sizes[len(days)] = true
	}
	require.Len(t, sizes, 2, "both one and two silent days should occur")
}

func TestEnsureSilentDays_ReusesStoredMonth(t *testing.T) {
	st := domain.NewState()
	st.SetSilentDays("2026-10", []int{5})
	days := ensureSilentDays(testRand(), st, time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC))
	require.Equal(t, []int{5}, days)
	require.Len(t, st.SilenceDays, 1)
}

func TestDaysIn(t *testing.T) {
	require.Equal(t, 31, daysIn(2026, time.January))
	require.Equal(t, 28, daysIn(2026, time.February))
	require.Equal(t, 29, daysIn(2028, time.February))
	require.Equal(t, 30, daysIn(2026, time.November))
	require.Equal(t, 31, daysIn(2026, time.December))
}
