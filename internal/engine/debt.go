package engine

import (
	"log"
	"math"
	"time"
)

// productiveScoreFloor is the productivity score at or above which a sample
// counts toward actual productive hours.
const productiveScoreFloor = 50.0

// DefaultLookbackDays is the default time-debt lookback window.
const DefaultLookbackDays = 7

// TimeDebtCalculator quantifies how many hours of obligated work are owed
// versus banked relative to a weekly target. The zero value uses the default
// 40-hour weekly target.
type TimeDebtCalculator struct {
	WeeklyTargetHours float64     // defaults to 40
	Logger            *log.Logger // defaults to log.Default()
}

func (c *TimeDebtCalculator) weeklyTarget() float64 {
	if c.WeeklyTargetHours > 0 {
		return c.WeeklyTargetHours
	}
	return DefaultPreferences().WeeklyTargetHours
}

func (c *TimeDebtCalculator) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Default()
}

// CalculateCurrentDebt totals productive hours over the sample window and
// compares them against the expected hours for the days represented. Samples
// below the productivity floor, with zero duration, or without a timestamp do
// not count. periodDays is the fallback day count when no dated samples exist.
func (c *TimeDebtCalculator) CalculateCurrentDebt(now time.Time, samples []ActivitySample, periodDays int) TimeDebt {
	weekly := c.weeklyTarget()
	daily := weekly / 7

	if periodDays <= 0 {
		periodDays = DefaultLookbackDays
	}
	if len(samples) == 0 {
		return TimeDebt{
			DailyTargetHours:  daily,
			WeeklyTargetHours: weekly,
			ComputedAt:        now,
		}
	}

	totalProductiveHours := 0.0
	productiveDays := make(map[string]struct{})

	for _, s := range samples {
		if s.DurationSeconds <= 0 || s.ProductivityScore < productiveScoreFloor {
			continue
		}
		if s.Timestamp.IsZero() {
			c.logger().Printf("debt calculation: skipping sample with missing timestamp")
			continue
		}
		productiveDays[s.Timestamp.Format("2006-01-02")] = struct{}{}
		totalProductiveHours += s.DurationSeconds / 3600
	}

	actualDays := len(productiveDays)
	if actualDays == 0 {
		actualDays = periodDays
	}
	expectedHours := float64(actualDays) * daily

	netBalance := totalProductiveHours - expectedHours
	return TimeDebt{
		DeficitHours:      math.Max(0, -netBalance),
		SurplusHours:      math.Max(0, netBalance),
		NetBalance:        netBalance,
		DailyTargetHours:  daily,
		WeeklyTargetHours: weekly,
		ComputedAt:        now,
	}
}

// ProjectFutureDebt extrapolates the current deficit linearly, assuming the
// pattern that produced it continues. Keys are the fixed horizons (in days)
// that fall within daysAhead.
func (c *TimeDebtCalculator) ProjectFutureDebt(debt TimeDebt, daysAhead int) map[int]float64 {
	dailyDeficit := debt.DeficitHours / 7

	projections := make(map[int]float64)
	for _, days := range []int{1, 3, 7, 14, 30} {
		if days <= daysAhead {
			projections[days] = debt.DeficitHours + dailyDeficit*float64(days)
		}
	}
	return projections
}

// CalculateMakeupSchedule proposes sessions that repay the deficit according
// to the chosen strategy. No deficit means no sessions.
func (c *TimeDebtCalculator) CalculateMakeupSchedule(debt TimeDebt, strategy MakeupStrategy) []MakeupSession {
	if debt.DeficitHours <= 0 {
		return nil
	}

	sessions := []MakeupSession{}
	remaining := debt.DeficitHours

	switch strategy {
	case StrategyImmediate:
		// Concentrate into the next few days, at most two hours per day.
		dailyMakeup := math.Min(2.0, remaining/3)
		daysNeeded := int(remaining/dailyMakeup) + 1
		for day := 0; day < daysNeeded; day++ {
			hours := math.Min(dailyMakeup, remaining)
			if hours <= 0 {
				break
			}
			sessions = append(sessions, MakeupSession{
				DayOffset:   day + 1,
				Hours:       hours,
				Type:        "intensive_makeup",
				Flexibility: 0.3,
			})
			remaining -= hours
		}

	case StrategyDistributed:
		// Spread evenly across two weeks, skipping insignificant shares.
		dailyMakeup := remaining / 14
		for day := 0; day < 14; day++ {
			if dailyMakeup > 0.5 {
				sessions = append(sessions, MakeupSession{
					DayOffset:   day + 1,
					Hours:       dailyMakeup,
					Type:        "distributed_makeup",
					Flexibility: 0.7,
				})
			}
		}

	case StrategyDelayed:
		// Five sessions on next week's weekdays.
		dailyMakeup := remaining / 5
		for day := 7; day < 12; day++ {
			sessions = append(sessions, MakeupSession{
				DayOffset:   day,
				Hours:       dailyMakeup,
				Type:        "delayed_makeup",
				Flexibility: 0.8,
			})
		}
	}

	return sessions
}
