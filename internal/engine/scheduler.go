package engine

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// energyMatchFloor is the minimum energy-match score a slot must reach to be
// eligible for a task. Heuristic constant.
const energyMatchFloor = 0.6

// slotEpsilon absorbs float error when deciding whether a slot is fully
// consumed.
const slotEpsilon = 1e-9

// contextCompatibility maps a task context to the slot contexts it may use.
// The table is intentionally asymmetric; task contexts not listed here match
// only a slot of exactly the same context.
var contextCompatibility = map[string][]string{
	"work":     {"work", "mixed"},
	"personal": {"personal", "mixed"},
	"health":   {"personal", "health", "mixed"},
	"admin":    {"personal", "work", "mixed"},
}

// GenerateOptimalSchedule assigns tasks to slots with a single greedy pass:
// tasks ordered by deadline, then priority, then required energy; slots
// ordered by quality, then energy, then smallest sufficient duration. Each
// placement consumes slot time; tasks that fit nowhere come back in
// Unscheduled. The input slices are not modified.
func GenerateOptimalSchedule(tasks []CompensationTask, slots []TimeSlot) ScheduleResult {
	sortedTasks := sortTasksForScheduling(tasks)
	pool := sortSlotsForScheduling(slots)

	scheduled := make(map[string]ScheduleEntry)
	unscheduled := []CompensationTask{}
	totalHours := 0.0

	for _, task := range sortedTasks {
		idx := findSlotIndex(task, pool)
		if idx < 0 {
			unscheduled = append(unscheduled, task)
			continue
		}

		slot := pool[idx] // snapshot before consumption
		match := EnergyMatch(task.RequiredEnergy, slot.AvailableEnergy)
		scheduled[task.ID] = ScheduleEntry{
			Task:            task,
			Slot:            slot,
			StartTime:       slot.StartTime,
			EndTime:         slot.StartTime.Add(hoursToDuration(task.EstimatedDurationHours)),
			EnergyMatch:     match,
			EfficiencyScore: efficiencyScore(task, slot),
		}
		totalHours += task.EstimatedDurationHours
		pool = consumeSlot(pool, idx, task.EstimatedDurationHours)
	}

	return ScheduleResult{
		Scheduled:           scheduled,
		Unscheduled:         unscheduled,
		TotalScheduledHours: totalHours,
		ScheduleEfficiency:  overallEfficiency(scheduled),
		Recommendations:     schedulingRecommendations(scheduled, unscheduled),
	}
}

// sortTasksForScheduling orders tasks by earliest deadline (no deadline
// last), then highest priority, then highest energy requirement.
func sortTasksForScheduling(tasks []CompensationTask) []CompensationTask {
	sorted := make([]CompensationTask, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		di, dj := deadlineKey(sorted[i]), deadlineKey(sorted[j])
		if di != dj {
			return di < dj
		}
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority > sorted[j].Priority
		}
		return sorted[i].RequiredEnergy > sorted[j].RequiredEnergy
	})
	return sorted
}

func deadlineKey(t CompensationTask) float64 {
	if t.Deadline == nil {
		return math.Inf(1)
	}
	return float64(t.Deadline.UnixNano())
}

// sortSlotsForScheduling orders slots by quality and energy descending, then
// duration ascending so ties prefer the smallest sufficient slot and conserve
// large ones.
func sortSlotsForScheduling(slots []TimeSlot) []TimeSlot {
	sorted := make([]TimeSlot, len(slots))
	copy(sorted, slots)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].QualityScore != sorted[j].QualityScore {
			return sorted[i].QualityScore > sorted[j].QualityScore
		}
		if sorted[i].AvailableEnergy != sorted[j].AvailableEnergy {
			return sorted[i].AvailableEnergy > sorted[j].AvailableEnergy
		}
		return sorted[i].DurationHours < sorted[j].DurationHours
	})
	return sorted
}

// findSlotIndex returns the first slot, in pool order, where the task fits:
// enough remaining time, an acceptable energy match, a compatible context,
// and room before the deadline.
func findSlotIndex(task CompensationTask, pool []TimeSlot) int {
	for i, slot := range pool {
		if slot.DurationHours < task.EstimatedDurationHours {
			continue
		}
		if EnergyMatch(task.RequiredEnergy, slot.AvailableEnergy) < energyMatchFloor {
			continue
		}
		if !contextCompatible(task.Context, slot.ContextType) {
			continue
		}
		if task.Deadline != nil {
			end := slot.StartTime.Add(hoursToDuration(task.EstimatedDurationHours))
			if end.After(*task.Deadline) {
				continue
			}
		}
		return i
	}
	return -1
}

// consumeSlot takes used hours from the slot at idx, removing it from the
// pool once exhausted.
func consumeSlot(pool []TimeSlot, idx int, usedHours float64) []TimeSlot {
	if pool[idx].DurationHours <= usedHours+slotEpsilon {
		return append(pool[:idx], pool[idx+1:]...)
	}
	pool[idx].StartTime = pool[idx].StartTime.Add(hoursToDuration(usedHours))
	pool[idx].DurationHours -= usedHours
	return pool
}

// EnergyMatch scores how well a slot's available energy suits a task's
// requirement. An overqualified slot is penalized mildly, an underqualified
// one more steeply.
func EnergyMatch(required, available EnergyLevel) float64 {
	if available >= required {
		return 1.0 - 0.2*float64(available-required)
	}
	return 0.6 - 0.3*float64(required-available)
}

func contextCompatible(taskContext, slotContext string) bool {
	compatible, ok := contextCompatibility[taskContext]
	if !ok {
		return slotContext == taskContext
	}
	for _, c := range compatible {
		if c == slotContext {
			return true
		}
	}
	return false
}

// efficiencyScore rates a task-slot pairing at match time, before the slot is
// consumed.
func efficiencyScore(task CompensationTask, slot TimeSlot) float64 {
	match := EnergyMatch(task.RequiredEnergy, slot.AvailableEnergy)
	timeEfficiency := math.Min(1.0, slot.DurationHours/task.EstimatedDurationHours)
	return 0.4*match + 0.3*timeEfficiency + 0.3*slot.QualityScore
}

func overallEfficiency(scheduled map[string]ScheduleEntry) float64 {
	if len(scheduled) == 0 {
		return 0
	}
	total := 0.0
	for _, entry := range scheduled {
		total += entry.EfficiencyScore
	}
	return total / float64(len(scheduled))
}

func schedulingRecommendations(scheduled map[string]ScheduleEntry, unscheduled []CompensationTask) []string {
	recommendations := []string{}

	if len(unscheduled) > 0 {
		urgent := 0
		for _, t := range unscheduled {
			if t.Priority == PriorityUrgent {
				urgent++
			}
		}
		if urgent > 0 {
			recommendations = append(recommendations,
				fmt.Sprintf("%d urgent tasks couldn't be scheduled - consider clearing time", urgent))
		}
		recommendations = append(recommendations,
			fmt.Sprintf("%d tasks need rescheduling - try extending available time slots", len(unscheduled)))
	}

	if len(scheduled) > 0 {
		if overallEfficiency(scheduled) < 0.7 {
			recommendations = append(recommendations,
				"Consider adjusting energy requirements or time slots for better efficiency")
		}
		mismatches := 0
		for _, entry := range scheduled {
			if entry.EnergyMatch < 0.7 {
				mismatches++
			}
		}
		if mismatches > 0 {
			recommendations = append(recommendations,
				fmt.Sprintf("%d tasks scheduled during suboptimal energy periods", mismatches))
		}
	}

	return recommendations
}

func hoursToDuration(hours float64) time.Duration {
	return time.Duration(hours * float64(time.Hour))
}
