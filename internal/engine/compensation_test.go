package engine

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"time"
)

func TestGenerateAvailableSlots(t *testing.T) {
	now := time.Date(2024, 12, 2, 8, 30, 0, 0, time.UTC)
	e := NewCompensationEngine(Preferences{}, nil)
	profile := DefaultEnergyProfile()

	slots := e.generateAvailableSlots(now, profile)

	if len(slots) != 14 {
		t.Fatalf("got %d slots, want 14 (work + evening per day for a week)", len(slots))
	}

	work, evening := slots[0], slots[1]
	if work.StartTime.Hour() != 9 || work.EndTime.Hour() != 17 {
		t.Errorf("work slot spans %v-%v, want 09:00-17:00", work.StartTime, work.EndTime)
	}
	if work.DurationHours != 8 || work.ContextType != "work" || work.QualityScore != 0.9 {
		t.Errorf("unexpected work slot: %+v", work)
	}
	if work.AvailableEnergy != EnergyMedium {
		t.Errorf("work slot energy = %v, want medium from the default profile", work.AvailableEnergy)
	}
	if evening.StartTime.Hour() != 19 || evening.DurationHours != 2 {
		t.Errorf("unexpected evening slot: %+v", evening)
	}
	if evening.ContextType != "personal" || evening.QualityScore != 0.6 {
		t.Errorf("unexpected evening slot: %+v", evening)
	}

	// Day 3's work slot lands three calendar days out.
	if got, want := slots[6].StartTime, time.Date(2024, 12, 5, 9, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("day-3 work slot starts at %v, want %v", got, want)
	}
}

func TestCreateDebtCompensationTasks(t *testing.T) {
	now := time.Date(2024, 12, 2, 8, 0, 0, 0, time.UTC)
	e := NewCompensationEngine(Preferences{MaxDailyMakeup: 2}, nil)

	t.Run("no deficit yields no tasks", func(t *testing.T) {
		if got := e.createDebtCompensationTasks(now, TimeDebt{SurplusHours: 1}); len(got) != 0 {
			t.Errorf("got %d tasks, want none", len(got))
		}
	})

	t.Run("deficit chunks into cap-sized sessions", func(t *testing.T) {
		tasks := e.createDebtCompensationTasks(now, TimeDebt{DeficitHours: 5})
		if len(tasks) != 3 {
			t.Fatalf("got %d tasks, want 3 (2+2+1)", len(tasks))
		}

		total := 0.0
		for i, task := range tasks {
			if task.ID != fmt.Sprintf("debt_compensation_%d", i+1) {
				t.Errorf("task %d id = %q", i, task.ID)
			}
			if !strings.HasPrefix(task.Title, "Time Makeup Session") {
				t.Errorf("task %d title = %q", i, task.Title)
			}
			if task.Priority != PriorityHigh || task.RequiredEnergy != EnergyMedium {
				t.Errorf("task %d has priority %v energy %v", i, task.Priority, task.RequiredEnergy)
			}
			if task.Deadline == nil || !task.Deadline.Equal(now.AddDate(0, 0, 7)) {
				t.Errorf("task %d deadline = %v, want now+7d", i, task.Deadline)
			}
			if task.Context != "work" || task.Flexibility != 0.7 {
				t.Errorf("task %d context/flexibility = %q/%.1f", i, task.Context, task.Flexibility)
			}
			total += task.EstimatedDurationHours
		}
		if math.Abs(total-5) > 1e-9 {
			t.Errorf("chunked total = %.2fh, want 5", total)
		}
		if tasks[2].EstimatedDurationHours != 1 {
			t.Errorf("last chunk = %.2fh, want 1", tasks[2].EstimatedDurationHours)
		}
	})
}

func TestAnalyzeAndCompensate_NoData(t *testing.T) {
	now := time.Date(2024, 12, 2, 8, 0, 0, 0, time.UTC)
	e := NewCompensationEngine(Preferences{}, nil)

	plan := e.AnalyzeAndCompensate(now, nil, nil)

	if plan.EnergyProfile.Archetype != ArchetypeBalanced {
		t.Errorf("archetype = %q, want balanced default", plan.EnergyProfile.Archetype)
	}
	if plan.TimeDebt.DeficitHours != 0 {
		t.Errorf("deficit = %.2f, want 0 for empty samples", plan.TimeDebt.DeficitHours)
	}
	if len(plan.CompensationTasks) != 0 {
		t.Errorf("synthesized %d debt tasks with no deficit", len(plan.CompensationTasks))
	}
	if len(plan.Schedule.Scheduled) != 0 || len(plan.Schedule.Unscheduled) != 0 {
		t.Errorf("unexpected schedule: %+v", plan.Schedule)
	}
	if len(plan.NextActions) == 0 {
		t.Error("next actions should never be empty")
	}
}

func TestAnalyzeAndCompensate_DeficitPipeline(t *testing.T) {
	// One productive day of two hours against a 40-hour weekly target leaves
	// a deficit of 40/7 - 2 ≈ 3.71h, which chunks into two makeup tasks.
	now := time.Date(2024, 12, 2, 8, 0, 0, 0, time.UTC)
	samples := []ActivitySample{{
		Timestamp:         now.Add(-24 * time.Hour),
		ProductivityScore: 90,
		FocusScore:        90,
		DurationSeconds:   2 * 3600,
	}}
	userTask := CompensationTask{
		ID: "report", Title: "Quarterly report", EstimatedDurationHours: 3,
		Priority: PriorityUrgent, RequiredEnergy: EnergyMedium, Context: "work",
	}

	e := NewCompensationEngine(Preferences{}, nil)
	plan := e.AnalyzeAndCompensate(now, samples, []CompensationTask{userTask})

	if plan.TimeDebt.DeficitHours <= 0 {
		t.Fatalf("expected a deficit, got %+v", plan.TimeDebt)
	}
	if len(plan.CompensationTasks) != 2 {
		t.Errorf("got %d debt tasks, want 2", len(plan.CompensationTasks))
	}

	// Every task lands exactly once, in either the schedule or the leftovers.
	seen := map[string]int{}
	for id := range plan.Schedule.Scheduled {
		seen[id]++
	}
	for _, task := range plan.Schedule.Unscheduled {
		seen[task.ID]++
	}
	wantIDs := []string{"report", "debt_compensation_1", "debt_compensation_2"}
	for _, id := range wantIDs {
		if seen[id] != 1 {
			t.Errorf("task %s appears %d times across schedule and unscheduled, want 1", id, seen[id])
		}
	}

	if _, ok := plan.Schedule.Scheduled["report"]; !ok {
		t.Error("urgent user task should be scheduled into the week's work slots")
	}

	foundDebtLine := false
	for _, r := range plan.Recommendations {
		if strings.Contains(r, "makeup time this week") {
			foundDebtLine = true
		}
	}
	if !foundDebtLine {
		t.Errorf("recommendations missing debt guidance: %v", plan.Recommendations)
	}
	if len(plan.NextActions) == 0 || !strings.HasPrefix(plan.NextActions[0], "Next: ") {
		t.Errorf("next actions should lead with the earliest entry: %v", plan.NextActions)
	}
}

func TestAnalyzeAndCompensate_Deterministic(t *testing.T) {
	now := time.Date(2024, 12, 2, 8, 0, 0, 0, time.UTC)
	samples := []ActivitySample{{
		Timestamp:         now.Add(-3 * time.Hour),
		ProductivityScore: 88,
		FocusScore:        92,
		DurationSeconds:   3600,
	}}

	e := NewCompensationEngine(Preferences{}, nil)
	first := e.AnalyzeAndCompensate(now, samples, nil)
	second := e.AnalyzeAndCompensate(now, samples, nil)

	if first.TimeDebt != second.TimeDebt {
		t.Errorf("time debt differs between identical runs:\n%+v\n%+v", first.TimeDebt, second.TimeDebt)
	}
	if len(first.Schedule.Scheduled) != len(second.Schedule.Scheduled) {
		t.Errorf("schedule size differs between identical runs")
	}
	if strings.Join(first.NextActions, "|") != strings.Join(second.NextActions, "|") {
		t.Errorf("next actions differ: %v vs %v", first.NextActions, second.NextActions)
	}
}
