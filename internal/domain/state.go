package domain

import (
	"encoding/json"
	"fmt"
)

// HistoryLimit is the number of recent picks remembered per phrase category.
const HistoryLimit = 5

const (
	keyLastSent    = "last_sent"
	keySilenceDays = "silence_days"
)

// State is the small document persisted between runs. It guards against
// duplicate daily sends and remembers recent phrase picks.
//
// On disk every history category sits at the top level next to last_sent and
// silence_days, e.g. {"last_sent":"2026-10-14","year_late":["..."]}.
type State struct {
	LastSent    string
	SilenceDays map[string][]int
	History     map[string][]string
}

// NewState returns an empty state with initialized maps.
func NewState() *State {
	return &State{
		SilenceDays: map[string][]int{},
		History:     map[string][]string{},
	}
}

// Recent returns the remembered picks for a category, oldest first.
func (s *State) Recent(key string) []string {
	if s.History == nil {
		return nil
	}
	return s.History[key]
}

// Remember appends choice to the category history and keeps only the most
// recent HistoryLimit entries.
func (s *State) Remember(key, choice string) {
	if s.History == nil {
		s.History = map[string][]string{}
	}
	used := append(append([]string(nil), s.History[key]...), choice)
	if len(used) > HistoryLimit {
		used = used[len(used)-HistoryLimit:]
	}
	s.History[key] = used
}

// SilentDays returns the silent days drawn for a month key (YYYY-MM).
func (s *State) SilentDays(month string) ([]int, bool) {
	if s.SilenceDays == nil {
		return nil, false
	}
	days, ok := s.SilenceDays[month]
	return days, ok
}

// SetSilentDays records the silent days for a month key.
func (s *State) SetSilentDays(month string, days []int) {
	if s.SilenceDays == nil {
		s.SilenceDays = map[string][]int{}
	}
	s.SilenceDays[month] = days
}

func (s State) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(s.History)+2)
	for k, v := range s.History {
		if k == keyLastSent || k == keySilenceDays {
			return nil, fmt.Errorf("domain: history key %q is reserved", k)
		}
		doc[k] = v
	}
	if s.LastSent != "" {
		doc[keyLastSent] = s.LastSent
	}
	if len(s.SilenceDays) > 0 {
		doc[keySilenceDays] = s.SilenceDays
	}
	return json.Marshal(doc)
}

func (s *State) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("domain: decode state: %w", err)
	}
	next := NewState()
	for k, v := range raw {
		switch k {
		case keyLastSent:
			if err := json.Unmarshal(v, &next.LastSent); err != nil {
				return fmt.Errorf("domain: decode %s: %w", k, err)
			}
		case keySilenceDays:
			var days map[string][]int
			if err := json.Unmarshal(v, &days); err != nil {
				return fmt.Errorf("domain: decode %s: %w", k, err)
			}
			for month, d := range days {
				next.SilenceDays[month] = d
			}
		default:
			// Keys that are not string lists belong to nobody we know; skip them.
			var used []string
			if err := json.Unmarshal(v, &used); err != nil {
				continue
			}
			next.History[k] = used
		}
	}
	*s = *next
	return nil
}
