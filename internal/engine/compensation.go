package engine

import (
	"fmt"
	"log"
	"math"
	"time"
)

// CompensationEngine composes the analyzer, the debt calculator, and the
// scheduler into a single plan. Each call is a pure function of its inputs;
// the caller supplies the current time so runs are reproducible.
type CompensationEngine struct {
	prefs    Preferences
	analyzer EnergyProfileAnalyzer
	debt     TimeDebtCalculator
}

// NewCompensationEngine creates an engine with the given preferences. Zero
// preference fields fall back to the documented defaults.
func NewCompensationEngine(prefs Preferences, logger *log.Logger) *CompensationEngine {
	prefs = prefs.withDefaults()
	return &CompensationEngine{
		prefs:    prefs,
		analyzer: EnergyProfileAnalyzer{Logger: logger},
		debt:     TimeDebtCalculator{WeeklyTargetHours: prefs.WeeklyTargetHours, Logger: logger},
	}
}

// AnalyzeAndCompensate runs the full pipeline: infer the energy profile,
// quantify time debt, derive candidate slots for the coming week, synthesize
// makeup tasks for any deficit, schedule everything, and package the plan.
func (e *CompensationEngine) AnalyzeAndCompensate(now time.Time, samples []ActivitySample, userTasks []CompensationTask) CompensationPlan {
	profile := e.analyzer.AnalyzeEnergyPatterns(samples)
	debt := e.debt.CalculateCurrentDebt(now, samples, DefaultLookbackDays)

	slots := e.generateAvailableSlots(now, profile)
	debtTasks := e.createDebtCompensationTasks(now, debt)

	allTasks := make([]CompensationTask, 0, len(userTasks)+len(debtTasks))
	allTasks = append(allTasks, userTasks...)
	allTasks = append(allTasks, debtTasks...)

	schedule := GenerateOptimalSchedule(allTasks, slots)

	return CompensationPlan{
		EnergyProfile:     profile,
		TimeDebt:          debt,
		CompensationTasks: debtTasks,
		Schedule:          schedule,
		Insights:          compensationInsights(profile, debt, schedule),
		Recommendations:   compensationRecommendations(profile, debt, schedule),
		NextActions:       nextActions(schedule, debt),
	}
}

// generateAvailableSlots builds the candidate pool for the next seven days:
// one work-hours slot per day rated by the profile, plus a fixed evening
// personal slot.
func (e *CompensationEngine) generateAvailableSlots(now time.Time, profile EnergyProfile) []TimeSlot {
	workStart := e.prefs.WorkHoursStart
	workEnd := e.prefs.WorkHoursEnd

	slots := make([]TimeSlot, 0, 14)
	for dayOffset := 0; dayOffset < 7; dayOffset++ {
		day := now.AddDate(0, 0, dayOffset)
		year, month, date := day.Date()

		workStartTime := time.Date(year, month, date, workStart, 0, 0, 0, now.Location())
		workEndTime := time.Date(year, month, date, workEnd, 0, 0, 0, now.Location())
		slots = append(slots, TimeSlot{
			StartTime:       workStartTime,
			EndTime:         workEndTime,
			DurationHours:   float64(workEnd - workStart),
			AvailableEnergy: profile.EnergyOverRange(workStart, workEnd),
			ContextType:     "work",
			QualityScore:    0.9,
		})

		eveningStart := time.Date(year, month, date, 19, 0, 0, 0, now.Location())
		eveningEnd := time.Date(year, month, date, 21, 0, 0, 0, now.Location())
		slots = append(slots, TimeSlot{
			StartTime:       eveningStart,
			EndTime:         eveningEnd,
			DurationHours:   2,
			AvailableEnergy: profile.EnergyOverRange(19, 21),
			ContextType:     "personal",
			QualityScore:    0.6,
		})
	}
	return slots
}

// createDebtCompensationTasks chunks the deficit into makeup sessions no
// longer than the per-day makeup cap, due within a week.
func (e *CompensationEngine) createDebtCompensationTasks(now time.Time, debt TimeDebt) []CompensationTask {
	if debt.DeficitHours <= 0 {
		return nil
	}

	chunkSize := e.prefs.MaxDailyMakeup
	chunksNeeded := int(debt.DeficitHours/chunkSize) + 1
	deadline := now.AddDate(0, 0, 7)

	tasks := []CompensationTask{}
	for i := 0; i < chunksNeeded; i++ {
		remaining := debt.DeficitHours - float64(i)*chunkSize
		hours := math.Min(chunkSize, remaining)
		if hours <= 0 {
			break
		}
		tasks = append(tasks, CompensationTask{
			ID:                     fmt.Sprintf("debt_compensation_%d", i+1),
			Title:                  fmt.Sprintf("Time Makeup Session %d", i+1),
			EstimatedDurationHours: hours,
			Priority:               PriorityHigh,
			RequiredEnergy:         EnergyMedium,
			Deadline:               &deadline,
			Context:                "work",
			Flexibility:            0.7,
			CompensationFor:        fmt.Sprintf("time_debt_%.1fh", hours),
		})
	}
	return tasks
}

func compensationInsights(profile EnergyProfile, debt TimeDebt, schedule ScheduleResult) []string {
	insights := []string{}

	if debt.DeficitHours > 4 {
		insights = append(insights,
			fmt.Sprintf("Significant time deficit of %.1f hours detected", debt.DeficitHours))
	} else if debt.SurplusHours > 2 {
		insights = append(insights,
			fmt.Sprintf("Time surplus of %.1f hours - ahead of target", debt.SurplusHours))
	}

	if len(profile.PeakHours) > 0 {
		insights = append(insights,
			fmt.Sprintf("Peak energy hours are %02d:00-%02d:00",
				profile.PeakHours[0], profile.PeakHours[len(profile.PeakHours)-1]))
	}

	if len(schedule.Scheduled) > 0 {
		insights = append(insights,
			fmt.Sprintf("%d tasks scheduled with %.0f%% efficiency",
				len(schedule.Scheduled), schedule.ScheduleEfficiency*100))
	}
	if len(schedule.Unscheduled) > 0 {
		insights = append(insights,
			fmt.Sprintf("%d tasks couldn't be scheduled - need more available time",
				len(schedule.Unscheduled)))
	}

	return insights
}

func compensationRecommendations(profile EnergyProfile, debt TimeDebt, schedule ScheduleResult) []string {
	recommendations := []string{}

	if debt.DeficitHours > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("Schedule %.1f hours of makeup time this week", debt.DeficitHours),
			"Focus on high-productivity tasks during makeup sessions")
	}

	switch profile.Archetype {
	case ArchetypeMorning:
		recommendations = append(recommendations,
			"Schedule demanding tasks before 11 AM when your energy peaks")
	case ArchetypeEvening:
		recommendations = append(recommendations,
			"Save complex work for after 3 PM when you hit your stride")
	}

	if schedule.ScheduleEfficiency < 0.7 {
		recommendations = append(recommendations,
			"Consider adjusting task timing to match your energy levels")
	}
	if len(schedule.Unscheduled) > 0 {
		recommendations = append(recommendations,
			"Block additional time slots to accommodate all tasks")
	}

	return recommendations
}

func nextActions(schedule ScheduleResult, debt TimeDebt) []string {
	actions := []string{}

	if len(schedule.Scheduled) > 0 {
		var next *ScheduleEntry
		for id := range schedule.Scheduled {
			entry := schedule.Scheduled[id]
			switch {
			case next == nil,
				entry.StartTime.Before(next.StartTime),
				entry.StartTime.Equal(next.StartTime) && entry.Task.ID < next.Task.ID:
				next = &entry
			}
		}
		actions = append(actions,
			fmt.Sprintf("Next: %s at %s", next.Task.Title, next.StartTime.Format("15:04")))
	}

	if debt.DeficitHours > 0 {
		actions = append(actions,
			"Review and prioritize compensation tasks",
			"Block time in calendar for makeup sessions")
	}

	actions = append(actions, "Review energy patterns after completing scheduled tasks")
	return actions
}
