package engine

import (
	"log"
	"math"
	"sort"
	"time"
)

// Energy classification thresholds for the average of productivity and focus
// scores. Heuristic constants, tuned by observation rather than derivation.
const (
	peakThreshold   = 85.0
	highThreshold   = 70.0
	mediumThreshold = 50.0
)

// EnergyProfileAnalyzer converts activity samples into an hour-of-day and
// day-of-week energy map. The zero value is ready to use.
type EnergyProfileAnalyzer struct {
	Logger *log.Logger // defaults to log.Default()
}

func (a *EnergyProfileAnalyzer) logger() *log.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return log.Default()
}

// AnalyzeEnergyPatterns buckets samples by hour and weekday, averages the
// combined productivity/focus score per bucket, and classifies each bucket
// into an energy level. Samples without a usable timestamp are skipped with a
// warning; an empty input yields the default profile.
func (a *EnergyProfileAnalyzer) AnalyzeEnergyPatterns(samples []ActivitySample) EnergyProfile {
	if len(samples) == 0 {
		return DefaultEnergyProfile()
	}

	hourly := make(map[int][]float64)
	daily := make(map[time.Weekday][]float64)

	for _, s := range samples {
		if s.Timestamp.IsZero() {
			a.logger().Printf("energy analysis: skipping sample with missing timestamp")
			continue
		}
		score := (s.ProductivityScore + s.FocusScore) / 2
		hourly[s.Timestamp.Hour()] = append(hourly[s.Timestamp.Hour()], score)
		daily[s.Timestamp.Weekday()] = append(daily[s.Timestamp.Weekday()], score)
	}

	hourlyEnergy := make(map[int]EnergyLevel, len(hourly))
	for hour, scores := range hourly {
		hourlyEnergy[hour] = classifyEnergy(mean(scores))
	}

	dailyEnergy := make(map[time.Weekday]EnergyLevel, len(daily))
	for day, scores := range daily {
		dailyEnergy[day] = classifyEnergy(mean(scores))
	}

	return EnergyProfile{
		HourlyEnergy: hourlyEnergy,
		DailyEnergy:  dailyEnergy,
		PeakHours:    findPeakHours(hourlyEnergy),
		LowHours:     findLowHours(hourlyEnergy),
		Archetype:    determineArchetype(hourlyEnergy),
		WeeklyRhythm: analyzeWeeklyRhythm(dailyEnergy),
	}
}

// DefaultEnergyProfile is the fallback for users with no recorded activity:
// medium energy across standard working hours, no extremes.
func DefaultEnergyProfile() EnergyProfile {
	hourly := make(map[int]EnergyLevel, 8)
	for hour := 9; hour < 17; hour++ {
		hourly[hour] = EnergyMedium
	}
	daily := make(map[time.Weekday]EnergyLevel, 7)
	for day := time.Sunday; day <= time.Saturday; day++ {
		daily[day] = EnergyMedium
	}
	return EnergyProfile{
		HourlyEnergy: hourly,
		DailyEnergy:  daily,
		PeakHours:    []int{},
		LowHours:     []int{},
		Archetype:    ArchetypeBalanced,
		WeeklyRhythm: RhythmConsistent,
	}
}

func classifyEnergy(score float64) EnergyLevel {
	switch {
	case score >= peakThreshold:
		return EnergyPeak
	case score >= highThreshold:
		return EnergyHigh
	case score >= mediumThreshold:
		return EnergyMedium
	default:
		return EnergyLow
	}
}

func findPeakHours(hourly map[int]EnergyLevel) []int {
	hours := []int{}
	for hour, level := range hourly {
		if level >= EnergyHigh {
			hours = append(hours, hour)
		}
	}
	sort.Ints(hours)
	return hours
}

func findLowHours(hourly map[int]EnergyLevel) []int {
	hours := []int{}
	for hour, level := range hourly {
		if level == EnergyLow {
			hours = append(hours, hour)
		}
	}
	sort.Ints(hours)
	return hours
}

// determineArchetype compares mean energy over the morning (6-12), afternoon
// (12-18), and evening (18-22) ranges. Ties favor morning, then afternoon.
// Hours with no observations count as low.
func determineArchetype(hourly map[int]EnergyLevel) Archetype {
	morning := meanLevelOverHours(hourly, 6, 12)
	afternoon := meanLevelOverHours(hourly, 12, 18)
	evening := meanLevelOverHours(hourly, 18, 22)

	if morning >= afternoon && morning >= evening {
		return ArchetypeMorning
	}
	if afternoon >= evening {
		return ArchetypeAfternoon
	}
	return ArchetypeEvening
}

func meanLevelOverHours(hourly map[int]EnergyLevel, startHour, endHour int) float64 {
	total := 0.0
	for hour := startHour; hour < endHour; hour++ {
		level, ok := hourly[hour]
		if !ok {
			level = EnergyLow
		}
		total += float64(level)
	}
	return total / float64(endHour-startHour)
}

// analyzeWeeklyRhythm compares the mean weekday level against the mean
// weekend level. A difference under half a level counts as consistent.
func analyzeWeeklyRhythm(daily map[time.Weekday]EnergyLevel) WeeklyRhythm {
	weekdaySum, weekendSum := 0.0, 0.0
	for day, level := range daily {
		if day == time.Saturday || day == time.Sunday {
			weekendSum += float64(level)
		} else {
			weekdaySum += float64(level)
		}
	}
	weekdayMean := weekdaySum / 5
	weekendMean := weekendSum / 2

	switch {
	case math.Abs(weekdayMean-weekendMean) < 0.5:
		return RhythmConsistent
	case weekdayMean > weekendMean:
		return RhythmWeekdayFocused
	default:
		return RhythmWeekendRecovery
	}
}

// EnergyOverRange averages the hourly levels across [startHour, endHour) and
// rounds to the nearest level. Hours without data count as medium.
func (p EnergyProfile) EnergyOverRange(startHour, endHour int) EnergyLevel {
	if endHour <= startHour {
		return EnergyMedium
	}
	total := 0.0
	for hour := startHour; hour < endHour; hour++ {
		level, ok := p.HourlyEnergy[hour]
		if !ok {
			level = EnergyMedium
		}
		total += float64(level)
	}
	avg := math.Round(total / float64(endHour-startHour))
	if avg < float64(EnergyLow) {
		avg = float64(EnergyLow)
	}
	if avg > float64(EnergyPeak) {
		avg = float64(EnergyPeak)
	}
	return EnergyLevel(avg)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}
