package weather

import "strings"

// MaxForecastDays caps the number of daily slots.
const MaxForecastDays = 5

// Aggregate normalizes a forecast payload with the default Normalizer and
// reduces it to one slot per day.
func Aggregate(entries []RawForecastEntry) ([]DailyForecastSlot, error) {
	return defaultNormalizer.Aggregate(entries)
}

// Aggregate normalizes a forecast payload and reduces it to one slot per day.
func (n *Normalizer) Aggregate(entries []RawForecastEntry) ([]DailyForecastSlot, error) {
	intervals, err := n.Forecast(entries)
	if err != nil {
		return nil, err
	}
	return DailySlots(intervals), nil
}

// DailySlots groups forecast intervals by the date part of DtTxt, in the order
// days first appear, and picks the midday interval of each day, or the day's
// first interval when there is none. At most MaxForecastDays slots are returned.
func DailySlots(intervals []CanonicalObservation) []DailyForecastSlot {
	var days []string
	picked := make(map[string]int)
	for i, obs := range intervals {
		day, _, _ := strings.Cut(obs.DtTxt, " ")
		j, seen := picked[day]
		if !seen {
			days = append(days, day)
			picked[day] = i
			continue
		}
		if !isMidday(intervals[j]) && isMidday(obs) {
			picked[day] = i
		}
	}

	if len(days) > MaxForecastDays {
		days = days[:MaxForecastDays]
	}
	slots := make([]DailyForecastSlot, 0, len(days))
	for _, day := range days {
		slots = append(slots, DailyForecastSlot{
			Date:                 day,
			CanonicalObservation: intervals[picked[day]],
		})
	}
	return slots
}

func isMidday(obs CanonicalObservation) bool {
	return strings.Contains(obs.DtTxt, middayTime)
}
