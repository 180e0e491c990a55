package solver

import (
	"math"

	"github.com/WinterJet2021/MayWin-Core-Backend/internal/domain/scheduling"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/normalizer"
)

// ToRequest flattens a normalized payload into the engine's request shape.
// A prebuilt request is returned as is.
func ToRequest(in Input) *Request {
	if in.Raw != nil {
		return in.Raw
	}
	p := in.Payload
	if p == nil {
		return &Request{
			Nurses:       []string{},
			Shifts:       []string{},
			Days:         []string{},
			Demand:       map[string]map[string]int{},
			Availability: map[string]map[string]map[string]bool{},
		}
	}

	req := &Request{
		Nurses:       make([]string, 0, len(p.Nurses)),
		Shifts:       make([]string, 0, len(p.Shifts)),
		Days:         make([]string, 0, len(p.Horizon.Days)),
		Demand:       map[string]map[string]int{},
		Availability: map[string]map[string]map[string]bool{},
	}
	for _, n := range p.Nurses {
		req.Nurses = append(req.Nurses, n.Code)
	}
	for _, s := range p.Shifts {
		req.Shifts = append(req.Shifts, s.Code)
	}
	for _, d := range p.Horizon.Days {
		req.Days = append(req.Days, d.Date)
	}

	for _, d := range p.Horizon.Days {
		row := make(map[string]int, len(req.Shifts))
		for _, sc := range req.Shifts {
			row[sc] = minWorkersFor(p.CoverageRules, sc, d.DayType)
		}
		req.Demand[d.Date] = row
	}

	for _, nc := range req.Nurses {
		byDate := make(map[string]map[string]bool, len(req.Days))
		for _, date := range req.Days {
			cells := make(map[string]bool, len(req.Shifts))
			for _, sc := range req.Shifts {
				cells[sc] = true
			}
			byDate[date] = cells
		}
		req.Availability[nc] = byDate
	}
	for _, a := range p.Availability {
		if a.Type != scheduling.AvailabilityUnavailable && a.Type != scheduling.AvailabilityBlocked {
			continue
		}
		if cells, ok := req.Availability[a.NurseCode][a.Date]; ok {
			cells[a.ShiftCode] = false
		}
	}

	prefs := map[string]map[string]map[string]int{}
	for nc, byDate := range p.Preferences {
		for date, byShift := range byDate {
			for sc, v := range byShift {
				penalty := int(math.Trunc(float64(v)))
				if penalty < 0 {
					continue
				}
				if prefs[nc] == nil {
					prefs[nc] = map[string]map[string]int{}
				}
				if prefs[nc][date] == nil {
					prefs[nc][date] = map[string]int{}
				}
				prefs[nc][date][sc] = penalty
			}
		}
	}
	if len(prefs) > 0 {
		req.Preferences = prefs
	}
	return req
}

func minWorkersFor(rules []normalizer.CoverageRule, shiftCode, dayType string) int {
	for _, r := range rules {
		if r.ShiftCode == shiftCode && r.DayType == dayType {
			if r.MinWorkers == nil {
				return 0
			}
			return *r.MinWorkers
		}
	}
	return 0
}
