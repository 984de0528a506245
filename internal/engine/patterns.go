package engine

import "sort"

// HourRange is a contiguous span of productive hours.
type HourRange struct {
	StartHour       int     `json:"start_hour"`
	EndHour         int     `json:"end_hour"` // inclusive
	AvgProductivity float64 `json:"avg_productivity"`
}

// ProductivityStats summarizes raw productivity scores by hour of day,
// independent of the energy classification.
type ProductivityStats struct {
	HourlyProductivity map[int]float64 `json:"hourly_productivity"`
	PeakHour           int             `json:"peak_hour"`
	PeakProductivity   float64         `json:"peak_productivity"`
	LowHour            int             `json:"low_hour"`
	LowProductivity    float64         `json:"low_productivity"`
	OptimalRange       HourRange       `json:"optimal_range"`
}

// SummarizeProductivity averages productivity per hour and reports the best
// and worst hours plus the span covering the top four. Samples without a
// timestamp are ignored; an empty input yields the zero value.
func SummarizeProductivity(samples []ActivitySample) ProductivityStats {
	buckets := make(map[int][]float64)
	for _, s := range samples {
		if s.Timestamp.IsZero() {
			continue
		}
		hour := s.Timestamp.Hour()
		buckets[hour] = append(buckets[hour], s.ProductivityScore)
	}
	if len(buckets) == 0 {
		return ProductivityStats{}
	}

	hourly := make(map[int]float64, len(buckets))
	for hour, scores := range buckets {
		hourly[hour] = mean(scores)
	}

	stats := ProductivityStats{HourlyProductivity: hourly}
	first := true
	for hour, avg := range hourly {
		if first || avg > stats.PeakProductivity || (avg == stats.PeakProductivity && hour < stats.PeakHour) {
			stats.PeakHour, stats.PeakProductivity = hour, avg
		}
		if first || avg < stats.LowProductivity || (avg == stats.LowProductivity && hour < stats.LowHour) {
			stats.LowHour, stats.LowProductivity = hour, avg
		}
		first = false
	}
	stats.OptimalRange = optimalRange(hourly)
	return stats
}

// optimalRange spans the four most productive hours.
func optimalRange(hourly map[int]float64) HourRange {
	type hourAvg struct {
		hour int
		avg  float64
	}
	ranked := make([]hourAvg, 0, len(hourly))
	for hour, avg := range hourly {
		ranked = append(ranked, hourAvg{hour, avg})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].avg != ranked[j].avg {
			return ranked[i].avg > ranked[j].avg
		}
		return ranked[i].hour < ranked[j].hour
	})
	if len(ranked) > 4 {
		ranked = ranked[:4]
	}

	top := make([]int, len(ranked))
	total := 0.0
	for i, h := range ranked {
		top[i] = h.hour
		total += h.avg
	}
	sort.Ints(top)

	return HourRange{
		StartHour:       top[0],
		EndHour:         top[len(top)-1],
		AvgProductivity: total / float64(len(top)),
	}
}
