package phrases

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"year-progress-bot/internal/domain"
)

//go:embed phrases.json
var defaultDocument []byte

// Default returns the phrase pools compiled into the binary.
func Default() (domain.Phrases, error) {
	return Parse(defaultDocument)
}

// Load reads phrase pools from path. An empty path yields the embedded pools.
func Load(path string) (domain.Phrases, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Phrases{}, fmt.Errorf("phrases: read %q: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes and validates a phrases JSON document.
func Parse(raw []byte) (domain.Phrases, error) {
	var p domain.Phrases
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Phrases{}, fmt.Errorf("phrases: decode: %w", err)
	}
	if err := Validate(p); err != nil {
		return domain.Phrases{}, err
	}
	return p, nil
}

// Validate reports every pool the composer draws from that is empty.
func Validate(p domain.Phrases) error {
	pools := []struct {
		name string
		pool []string
	}{
		{"year.early", p.Year.Early},
		{"year.mid", p.Year.Mid},
		{"year.late", p.Year.Late},
		{"year.final", p.Year.Final},
		{"feels_like", p.FeelsLike},
		{"daylight", p.Daylight},
		{"weather.normal", p.Weather.Normal},
		{"weather.error", p.Weather.Error},
		{"daylight_error", p.DaylightError},
		{"ritual", p.Ritual},
	}
	var errs []error
	for _, pl := range pools {
		if len(pl.pool) == 0 {
			errs = append(errs, fmt.Errorf("phrases: pool %q is empty", pl.name))
		}
	}
	return errors.Join(errs...)
}
