package usecase

import (
	"math/rand/v2"
	"slices"
	"time"

	"year-progress-bot/internal/domain"
)

// Bucket groups the closing quotes by how much of the year has gone.
type Bucket string

const (
	BucketEarly Bucket = "early"
	BucketMid   Bucket = "mid"
	BucketLate  Bucket = "late"
	BucketFinal Bucket = "final"
)

const (
	titleProgress  = "📆 *Year progress update*"
	titleCompleted = "📆 *Year completed*"
)

// History keys, as stored in the state document.
const (
	historyFeels       = "feels"
	historyDaylight    = "daylight"
	historyWeather     = "weather"
	historyWeatherErr  = "weather_err"
	historyDaylightErr = "daylight_err"
)

// BucketFor picks the quote bucket. Dec 31 always closes the year, whatever
// the percentage says.
func BucketFor(now time.Time, percent float64) Bucket {
	now = now.UTC()
	switch {
	case now.Month() == time.December && now.Day() == 31:
		return BucketFinal
	case percent < 35:
		return BucketEarly
	case percent < 70:
		return BucketMid
	default:
		return BucketLate
	}
}

func (b Bucket) title() string {
	if b == BucketFinal {
		return titleCompleted
	}
	return titleProgress
}

func (b Bucket) historyKey() string {
	return "year_" + string(b)
}

func (b Bucket) pool(p domain.Phrases) []string {
	switch b {
	case BucketEarly:
		return p.Year.Early
	case BucketMid:
		return p.Year.Mid
	case BucketFinal:
		return p.Year.Final
	default:
		return p.Year.Late
	}
}

// pickNonRepeating draws from pool while avoiding the recent picks stored
// under key. When every entry was used recently the full pool is eligible.
func pickNonRepeating(rng *rand.Rand, pool []string, key string, st *domain.State) string {
	used := st.Recent(key)
	choices := make([]string, 0, len(pool))
	for _, p := range pool {
		if !slices.Contains(used, p) {
			choices = append(choices, p)
		}
	}
	if len(choices) == 0 {
		choices = pool
	}
	choice := choices[rng.IntN(len(choices))]
	st.Remember(key, choice)
	return choice
}
