package usecase

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"year-progress-bot/internal/domain"
)

var depressingEmojis = []string{"☠️", "⌛", "🕰️", "🌑", "💀", "🥀", "⚰️", "🕳️"}

type composer struct {
	phrases domain.Phrases
	place   string
	rng     *rand.Rand
}

func (c composer) emoji() string {
	return depressingEmojis[c.rng.IntN(len(depressingEmojis))]
}

// compose renders the daily message and records every phrase it picks in st.
func (c composer) compose(now time.Time, percent float64, w domain.Weather, st *domain.State) string {
	bucket := BucketFor(now, percent)
	quote := pickNonRepeating(c.rng, bucket.pool(c.phrases), bucket.historyKey(), st)

	ritual := ""
	if now.UTC().Day() == 1 {
		ritual = "\n_" + c.phrases.Ritual[0] + "_\n"
	}

	var weatherBlock string
	if w.OK {
		weatherBlock = c.weatherBlock(w, st)
	} else {
		weatherBlock = c.unavailableBlock(st)
	}

	var b strings.Builder
	b.WriteString(bucket.title())
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "`%s`\n", ProgressBar(percent))
	fmt.Fprintf(&b, "*%.2f%%* of the year is gone %s\n", percent, c.emoji())
	b.WriteString(weatherBlock)
	b.WriteString(ritual)
	fmt.Fprintf(&b, "\n_%s_", quote)
	return b.String()
}

func (c composer) weatherBlock(w domain.Weather, st *domain.State) string {
	condition := ""
	if label := w.Condition(); label != "" {
		condition = label + ". "
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\n🌍 *%s weather*\n", c.place)
	fmt.Fprintf(&b, "%.0f°C – %.0f°C %s\n", w.MinC, w.MaxC, c.emoji())
	fmt.Fprintf(&b, "%sFeels like %.0f°C. %s\n", condition, w.FeelsLikeC,
		pickNonRepeating(c.rng, c.phrases.FeelsLike, historyFeels, st))
	fmt.Fprintf(&b, "%.1fh daylight. %s\n", w.Daylight().Hours(),
		pickNonRepeating(c.rng, c.phrases.Daylight, historyDaylight, st))
	fmt.Fprintf(&b, "_%s_\n", pickNonRepeating(c.rng, c.phrases.Weather.Normal, historyWeather, st))
	return b.String()
}

func (c composer) unavailableBlock(st *domain.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n🌍 *%s weather*\n", c.place)
	fmt.Fprintf(&b, "Unavailable %s\n", c.emoji())
	fmt.Fprintf(&b, "_%s_\n", pickNonRepeating(c.rng, c.phrases.Weather.Error, historyWeatherErr, st))
	fmt.Fprintf(&b, "_%s_\n", pickNonRepeating(c.rng, c.phrases.DaylightError, historyDaylightErr, st))
	return b.String()
}
