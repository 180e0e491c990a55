package normalizer

import (
	"fmt"
	"time"

	"github.com/WinterJet2021/MayWin-Core-Backend/internal/domain/scheduling"
)

// EnumerateHorizon lists every UTC calendar day from start to end inclusive.
// An end before start yields no days.
func EnumerateHorizon(start, end string) ([]Day, error) {
	s, err := scheduling.ParseDate(start)
	if err != nil {
		return nil, fmt.Errorf("invalid horizon: start=%s end=%s: %w", start, end, err)
	}
	e, err := scheduling.ParseDate(end)
	if err != nil {
		return nil, fmt.Errorf("invalid horizon: start=%s end=%s: %w", start, end, err)
	}
	cur, last := time.Time(s), time.Time(e)
	days := []Day{}
	for !cur.After(last) {
		days = append(days, Day{Date: cur.Format(scheduling.DateLayout), DayType: DayType(cur)})
		cur = cur.AddDate(0, 0, 1)
	}
	return days, nil
}

func DayType(t time.Time) string {
	switch t.UTC().Weekday() {
	case time.Saturday, time.Sunday:
		return scheduling.DayTypeWeekend
	default:
		return scheduling.DayTypeWeekday
	}
}
