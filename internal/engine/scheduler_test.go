package engine

import (
	"math"
	"testing"
	"time"
)

func ptrTime(t time.Time) *time.Time {
	return &t
}

func workSlot(start time.Time, hours float64, energy EnergyLevel) TimeSlot {
	return TimeSlot{
		StartTime:       start,
		EndTime:         start.Add(time.Duration(hours * float64(time.Hour))),
		DurationHours:   hours,
		AvailableEnergy: energy,
		ContextType:     "work",
		QualityScore:    0.9,
	}
}

func TestEnergyMatch(t *testing.T) {
	tests := []struct {
		required, available EnergyLevel
		want                float64
	}{
		{EnergyMedium, EnergyMedium, 1.0},
		{EnergyMedium, EnergyHigh, 0.8},
		{EnergyMedium, EnergyPeak, 0.6},
		{EnergyLow, EnergyPeak, 0.4},
		{EnergyHigh, EnergyMedium, 0.3},
		{EnergyPeak, EnergyMedium, 0.0},
		{EnergyPeak, EnergyLow, -0.3},
	}

	for _, tt := range tests {
		if got := EnergyMatch(tt.required, tt.available); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("EnergyMatch(%v, %v) = %.2f, want %.2f", tt.required, tt.available, got, tt.want)
		}
	}
}

func TestEnergyMatch_OverqualifiedMonotone(t *testing.T) {
	// Widening the overqualification gap must never improve the score.
	for required := EnergyLow; required <= EnergyPeak; required++ {
		prev := math.Inf(1)
		for available := required; available <= EnergyPeak; available++ {
			got := EnergyMatch(required, available)
			if got > prev {
				t.Errorf("EnergyMatch(%v, %v) = %.2f rose above %.2f", required, available, got, prev)
			}
			prev = got
		}
	}
}

func TestContextCompatible(t *testing.T) {
	tests := []struct {
		taskCtx, slotCtx string
		want             bool
	}{
		{"work", "work", true},
		{"work", "mixed", true},
		{"work", "personal", false},
		{"personal", "personal", true},
		{"personal", "work", false},
		{"health", "personal", true},
		{"health", "health", true},
		{"health", "work", false},
		{"admin", "personal", true},
		{"admin", "work", true},
		{"admin", "health", false},
		{"hobby", "hobby", true}, // unknown contexts match only themselves
		{"hobby", "mixed", false},
	}

	for _, tt := range tests {
		if got := contextCompatible(tt.taskCtx, tt.slotCtx); got != tt.want {
			t.Errorf("contextCompatible(%q, %q) = %v, want %v", tt.taskCtx, tt.slotCtx, got, tt.want)
		}
	}
}

func TestGenerateOptimalSchedule_NoSlots(t *testing.T) {
	tasks := []CompensationTask{
		{ID: "a", Title: "A", EstimatedDurationHours: 1, Priority: PriorityHigh, RequiredEnergy: EnergyMedium, Context: "work"},
		{ID: "b", Title: "B", EstimatedDurationHours: 2, Priority: PriorityLow, RequiredEnergy: EnergyLow, Context: "personal"},
	}

	result := GenerateOptimalSchedule(tasks, nil)

	if len(result.Scheduled) != 0 {
		t.Errorf("scheduled %d tasks with no slots", len(result.Scheduled))
	}
	if len(result.Unscheduled) != len(tasks) {
		t.Errorf("unscheduled = %d, want %d", len(result.Unscheduled), len(tasks))
	}
	if result.ScheduleEfficiency != 0 {
		t.Errorf("efficiency = %.2f, want 0", result.ScheduleEfficiency)
	}
}

func TestGenerateOptimalSchedule_ExactFitConsumesSlot(t *testing.T) {
	start := time.Date(2024, 12, 2, 9, 0, 0, 0, time.UTC)
	tasks := []CompensationTask{
		{ID: "first", Title: "First", EstimatedDurationHours: 2, Priority: PriorityHigh, RequiredEnergy: EnergyMedium, Context: "work"},
		{ID: "second", Title: "Second", EstimatedDurationHours: 1, Priority: PriorityLow, RequiredEnergy: EnergyMedium, Context: "work"},
	}
	slots := []TimeSlot{workSlot(start, 2, EnergyMedium)}

	result := GenerateOptimalSchedule(tasks, slots)

	if _, ok := result.Scheduled["first"]; !ok {
		t.Fatal("first task should be scheduled")
	}
	// The slot was exactly consumed, so the second task has nowhere to go.
	if len(result.Unscheduled) != 1 || result.Unscheduled[0].ID != "second" {
		t.Errorf("unscheduled = %v, want [second]", result.Unscheduled)
	}
	// The caller's slot list is untouched.
	if slots[0].DurationHours != 2 {
		t.Errorf("input slot mutated: %+v", slots[0])
	}
}

func TestGenerateOptimalSchedule_PartialConsumption(t *testing.T) {
	start := time.Date(2024, 12, 2, 9, 0, 0, 0, time.UTC)
	tasks := []CompensationTask{
		{ID: "a", Title: "A", EstimatedDurationHours: 3, Priority: PriorityHigh, RequiredEnergy: EnergyMedium, Context: "work"},
		{ID: "b", Title: "B", EstimatedDurationHours: 3, Priority: PriorityLow, RequiredEnergy: EnergyMedium, Context: "work"},
	}
	slots := []TimeSlot{workSlot(start, 8, EnergyMedium)}

	result := GenerateOptimalSchedule(tasks, slots)

	if len(result.Scheduled) != 2 {
		t.Fatalf("scheduled %d tasks, want 2", len(result.Scheduled))
	}
	if got := result.Scheduled["a"].StartTime; !got.Equal(start) {
		t.Errorf("task a starts at %v, want %v", got, start)
	}
	if got, want := result.Scheduled["b"].StartTime, start.Add(3*time.Hour); !got.Equal(want) {
		t.Errorf("task b starts at %v, want %v", got, want)
	}
	if math.Abs(result.TotalScheduledHours-6) > 1e-9 {
		t.Errorf("total scheduled hours = %.2f, want 6", result.TotalScheduledHours)
	}
}

func TestGenerateOptimalSchedule_DeadlineInfeasible(t *testing.T) {
	// Duration and energy would fit, but the task cannot finish before its
	// deadline, so it must not be placed.
	now := time.Date(2024, 12, 2, 9, 0, 0, 0, time.UTC)
	tasks := []CompensationTask{{
		ID:                     "rush",
		Title:                  "Rush job",
		EstimatedDurationHours: 2,
		Priority:               PriorityUrgent,
		RequiredEnergy:         EnergyPeak,
		Deadline:               ptrTime(now.Add(time.Hour)),
		Context:                "work",
	}}
	slots := []TimeSlot{workSlot(now, 4, EnergyPeak)}

	result := GenerateOptimalSchedule(tasks, slots)

	if len(result.Unscheduled) != 1 || result.Unscheduled[0].ID != "rush" {
		t.Fatalf("deadline-infeasible task should be unscheduled, got %+v", result)
	}
	if _, ok := result.Scheduled["rush"]; ok {
		t.Error("task appears in both scheduled and unscheduled")
	}
}

func TestGenerateOptimalSchedule_EnergyTieBreak(t *testing.T) {
	// Same priority and deadline: the higher-energy task is ordered first
	// and takes the only slot.
	now := time.Date(2024, 12, 2, 9, 0, 0, 0, time.UTC)
	deadline := ptrTime(now.AddDate(0, 0, 3))
	tasks := []CompensationTask{
		{ID: "low", Title: "Low", EstimatedDurationHours: 2, Priority: PriorityMedium, RequiredEnergy: EnergyLow, Deadline: deadline, Context: "work"},
		{ID: "high", Title: "High", EstimatedDurationHours: 2, Priority: PriorityMedium, RequiredEnergy: EnergyHigh, Deadline: deadline, Context: "work"},
	}
	slots := []TimeSlot{workSlot(now, 2, EnergyHigh)}

	result := GenerateOptimalSchedule(tasks, slots)

	if _, ok := result.Scheduled["high"]; !ok {
		t.Errorf("high-energy task should win the slot, scheduled = %v", result.Scheduled)
	}
	if len(result.Unscheduled) != 1 || result.Unscheduled[0].ID != "low" {
		t.Errorf("unscheduled = %v, want [low]", result.Unscheduled)
	}
}

func TestGenerateOptimalSchedule_DeadlineOrdering(t *testing.T) {
	now := time.Date(2024, 12, 2, 9, 0, 0, 0, time.UTC)
	tasks := []CompensationTask{
		{ID: "later", Title: "Later", EstimatedDurationHours: 2, Priority: PriorityUrgent, RequiredEnergy: EnergyMedium, Deadline: ptrTime(now.AddDate(0, 0, 5)), Context: "work"},
		{ID: "sooner", Title: "Sooner", EstimatedDurationHours: 2, Priority: PriorityLow, RequiredEnergy: EnergyMedium, Deadline: ptrTime(now.AddDate(0, 0, 1)), Context: "work"},
		{ID: "never", Title: "No deadline", EstimatedDurationHours: 2, Priority: PriorityUrgent, RequiredEnergy: EnergyMedium, Context: "work"},
	}

	sorted := sortTasksForScheduling(tasks)
	wantOrder := []string{"sooner", "later", "never"}
	for i, want := range wantOrder {
		if sorted[i].ID != want {
			t.Errorf("position %d = %s, want %s", i, sorted[i].ID, want)
		}
	}
}

func TestGenerateOptimalSchedule_SlotOrdering(t *testing.T) {
	now := time.Date(2024, 12, 2, 9, 0, 0, 0, time.UTC)
	slots := []TimeSlot{
		{StartTime: now, DurationHours: 8, AvailableEnergy: EnergyHigh, ContextType: "work", QualityScore: 0.9},
		{StartTime: now, DurationHours: 2, AvailableEnergy: EnergyHigh, ContextType: "work", QualityScore: 0.9},
		{StartTime: now, DurationHours: 2, AvailableEnergy: EnergyPeak, ContextType: "work", QualityScore: 0.9},
		{StartTime: now, DurationHours: 2, AvailableEnergy: EnergyPeak, ContextType: "work", QualityScore: 0.95},
	}

	sorted := sortSlotsForScheduling(slots)

	// Highest quality first, then highest energy, then smallest duration.
	if sorted[0].QualityScore != 0.95 {
		t.Errorf("first slot quality = %.2f, want 0.95", sorted[0].QualityScore)
	}
	if sorted[1].AvailableEnergy != EnergyPeak {
		t.Errorf("second slot energy = %v, want peak", sorted[1].AvailableEnergy)
	}
	if sorted[2].DurationHours != 2 || sorted[3].DurationHours != 8 {
		t.Errorf("duration tie-break wrong: %v then %v", sorted[2].DurationHours, sorted[3].DurationHours)
	}
}

func TestEfficiencyScore(t *testing.T) {
	task := CompensationTask{ID: "t", EstimatedDurationHours: 2, RequiredEnergy: EnergyMedium, Context: "work"}
	slot := workSlot(time.Date(2024, 12, 2, 9, 0, 0, 0, time.UTC), 4, EnergyMedium)

	// 0.4*1.0 (energy) + 0.3*1.0 (time, capped) + 0.3*0.9 (quality) = 0.97
	if got := efficiencyScore(task, slot); math.Abs(got-0.97) > 1e-9 {
		t.Errorf("efficiencyScore = %.4f, want 0.97", got)
	}
}

func TestSchedulingRecommendations_UrgentUnscheduled(t *testing.T) {
	tasks := []CompensationTask{
		{ID: "u", Title: "Urgent", EstimatedDurationHours: 2, Priority: PriorityUrgent, RequiredEnergy: EnergyMedium, Context: "work"},
	}

	result := GenerateOptimalSchedule(tasks, nil)

	if len(result.Recommendations) == 0 {
		t.Fatal("expected recommendations for an unscheduled urgent task")
	}
	if got := result.Recommendations[0]; got != "1 urgent tasks couldn't be scheduled - consider clearing time" {
		t.Errorf("unexpected first recommendation: %q", got)
	}
}
