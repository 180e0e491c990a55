package normalizer

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	types "github.com/WinterJet2021/MayWin-Core-Backend/internal/domain"
)

// DefaultDislikedPenalty is applied to the shifts a worker is flagged as not preferring.
const DefaultDislikedPenalty = 5

// IsNightShift classifies a shift as night when its code is "n" or its code
// or name mentions "night", all case-insensitive. Everything else is a day shift.
func IsNightShift(code, name string) bool {
	c := strings.ToLower(strings.TrimSpace(code))
	n := strings.ToLower(strings.TrimSpace(name))
	return c == "n" || strings.Contains(c, "night") || strings.Contains(n, "night")
}

type workerPrefs struct {
	prefersDay   *bool
	prefersNight *bool
	pattern      map[string]any
}

// resolveWorkerPrefs merges the stored preference row with the
// attributes.preferences.preferencesByUnit[unit] fallback, field by field.
func resolveWorkerPrefs(row *types.WorkerPreference, w *types.Worker, unitKey string) workerPrefs {
	var out workerPrefs
	attr := attrPreferencesForUnit(w.Attributes, unitKey)
	if row != nil {
		out.prefersDay = row.PrefersDayShifts
		out.prefersNight = row.PrefersNightShifts
		if row.PreferencePatternJSON != nil {
			out.pattern = map[string]any(row.PreferencePatternJSON)
		}
	}
	if out.prefersDay == nil {
		out.prefersDay = firstBool(attr, "prefers_day_shifts", "prefersDayShifts")
	}
	if out.prefersNight == nil {
		out.prefersNight = firstBool(attr, "prefers_night_shifts", "prefersNightShifts")
	}
	if out.pattern == nil {
		for _, key := range []string{"preference_pattern_json", "preferencePatternJson"} {
			if m, ok := attr[key].(map[string]any); ok {
				out.pattern = m
				break
			}
		}
	}
	return out
}

func attrPreferencesForUnit(attrs map[string]any, unitKey string) map[string]any {
	root, _ := attrs["preferences"].(map[string]any)
	byUnit, _ := root["preferencesByUnit"].(map[string]any)
	p, _ := byUnit[unitKey].(map[string]any)
	return p
}

func firstBool(m map[string]any, keys ...string) *bool {
	for _, k := range keys {
		if b, ok := m[k].(bool); ok {
			return &b
		}
	}
	return nil
}

// derivePenalties builds one worker's date -> shift -> penalty map. It
// returns nil when no positive penalty results.
func derivePenalties(p workerPrefs, days []string, nightCodes, dayCodes []string) map[string]map[string]int {
	out := map[string]map[string]int{}
	set := func(date, shift string, v int) {
		if out[date] == nil {
			out[date] = map[string]int{}
		}
		out[date][shift] = v
	}

	for date, byShift := range patternPenalties(p.pattern) {
		for shift, raw := range byShift {
			v, ok := toNumber(raw)
			if !ok || v <= 0 {
				continue
			}
			if t := int(math.Trunc(v)); t > 0 {
				set(date, shift, t)
			}
		}
	}

	applyDefault := func(codes []string) {
		for _, d := range days {
			for _, sc := range codes {
				if _, exists := out[d][sc]; !exists {
					set(d, sc, DefaultDislikedPenalty)
				}
			}
		}
	}
	if p.prefersDay != nil && *p.prefersDay {
		applyDefault(nightCodes)
	}
	if p.prefersNight != nil && *p.prefersNight {
		applyDefault(dayCodes)
	}

	for _, byShift := range out {
		for _, v := range byShift {
			if v > 0 {
				return out
			}
		}
	}
	return nil
}

// patternPenalties accepts {date: {shift: n}} directly or nested under "penalties".
func patternPenalties(pattern map[string]any) map[string]map[string]any {
	if pattern == nil {
		return nil
	}
	src := pattern
	if nested, ok := pattern["penalties"].(map[string]any); ok {
		src = nested
	}
	out := map[string]map[string]any{}
	for date, v := range src {
		if byShift, ok := v.(map[string]any); ok {
			out[date] = byShift
		}
	}
	return out
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
	default:
		return 0, false
	}
}
