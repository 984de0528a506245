package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidInput = errors.New("invalid input parameters")

// EnergyLevel classifies how much energy a time period offers (or a task
// demands). The numeric rank is part of the contract: comparisons and
// averaging all operate on it.
type EnergyLevel int

const (
	EnergyLow EnergyLevel = iota + 1
	EnergyMedium
	EnergyHigh
	EnergyPeak
)

func (e EnergyLevel) String() string {
	switch e {
	case EnergyLow:
		return "low"
	case EnergyMedium:
		return "medium"
	case EnergyHigh:
		return "high"
	case EnergyPeak:
		return "peak"
	default:
		return fmt.Sprintf("EnergyLevel(%d)", int(e))
	}
}

// ParseEnergyLevel parses a level name as used in config files and CLI flags.
func ParseEnergyLevel(s string) (EnergyLevel, error) {
	switch strings.ToLower(s) {
	case "low":
		return EnergyLow, nil
	case "medium":
		return EnergyMedium, nil
	case "high":
		return EnergyHigh, nil
	case "peak":
		return EnergyPeak, nil
	default:
		return 0, fmt.Errorf("unknown energy level %q: %w", s, ErrInvalidInput)
	}
}

// TaskPriority orders tasks for scheduling. Urgent is highest.
type TaskPriority int

const (
	PriorityLow TaskPriority = iota + 1
	PriorityMedium
	PriorityHigh
	PriorityUrgent
)

func (p TaskPriority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityUrgent:
		return "urgent"
	default:
		return fmt.Sprintf("TaskPriority(%d)", int(p))
	}
}

// ParsePriority parses a priority name as used in config files and CLI flags.
func ParsePriority(s string) (TaskPriority, error) {
	switch strings.ToLower(s) {
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	case "urgent":
		return PriorityUrgent, nil
	default:
		return 0, fmt.Errorf("unknown priority %q: %w", s, ErrInvalidInput)
	}
}

// MakeupStrategy selects how time-debt makeup sessions are spread out.
type MakeupStrategy string

const (
	StrategyImmediate   MakeupStrategy = "immediate"   // concentrate in the next few days
	StrategyDistributed MakeupStrategy = "distributed" // spread evenly over two weeks
	StrategyDelayed     MakeupStrategy = "delayed"     // push into next week's weekdays
)

// Archetype describes when during the day the user tends to have energy.
type Archetype string

const (
	ArchetypeMorning   Archetype = "morning"
	ArchetypeAfternoon Archetype = "afternoon"
	ArchetypeEvening   Archetype = "evening"
	ArchetypeBalanced  Archetype = "balanced" // default when no data is available
)

// WeeklyRhythm describes how energy is distributed across the week.
type WeeklyRhythm string

const (
	RhythmConsistent      WeeklyRhythm = "consistent"
	RhythmWeekdayFocused  WeeklyRhythm = "weekday_focused"
	RhythmWeekendRecovery WeeklyRhythm = "weekend_recovery"
)

// ActivitySample is one timestamped productivity measurement, produced by the
// activity-capture layer. Samples are immutable inputs; the engine re-buckets
// them by hour and weekday, so their order does not matter.
type ActivitySample struct {
	Timestamp         time.Time `json:"timestamp"`
	ProductivityScore float64   `json:"productivity_score"` // 0-100
	FocusScore        float64   `json:"focus_score"`        // 0-100
	DurationSeconds   float64   `json:"duration_seconds"`
}

// Validate rejects contract violations at construction time rather than
// mid-algorithm.
func (s ActivitySample) Validate() error {
	if s.ProductivityScore < 0 || s.ProductivityScore > 100 {
		return fmt.Errorf("productivity score %.1f out of range [0,100]: %w", s.ProductivityScore, ErrInvalidInput)
	}
	if s.FocusScore < 0 || s.FocusScore > 100 {
		return fmt.Errorf("focus score %.1f out of range [0,100]: %w", s.FocusScore, ErrInvalidInput)
	}
	if s.DurationSeconds < 0 {
		return fmt.Errorf("negative duration %.1fs: %w", s.DurationSeconds, ErrInvalidInput)
	}
	return nil
}

// EnergyProfile is the derived daily/weekly energy rhythm. It is recomputed
// from scratch on every analysis call and never mutated in place.
type EnergyProfile struct {
	HourlyEnergy map[int]EnergyLevel          `json:"hourly_energy"`
	DailyEnergy  map[time.Weekday]EnergyLevel `json:"daily_energy"`
	PeakHours    []int                        `json:"peak_hours"`
	LowHours     []int                        `json:"low_hours"`
	Archetype    Archetype                    `json:"energy_archetype"`
	WeeklyRhythm WeeklyRhythm                 `json:"weekly_rhythm"`
}

// TimeDebt is the signed deviation between actual productive hours and the
// configured target over a lookback window. DeficitHours and SurplusHours are
// the positive and negative parts of NetBalance; at most one is nonzero.
type TimeDebt struct {
	DeficitHours      float64   `json:"deficit_hours"`
	SurplusHours      float64   `json:"surplus_hours"`
	NetBalance        float64   `json:"net_balance"`
	DailyTargetHours  float64   `json:"daily_target_hours"`
	WeeklyTargetHours float64   `json:"weekly_target_hours"`
	ComputedAt        time.Time `json:"computed_at"`
}

// MakeupSession is one proposed block of debt-repayment work.
type MakeupSession struct {
	DayOffset   int     `json:"day_offset"` // days from now, 1-based
	Hours       float64 `json:"hours"`
	Type        string  `json:"type"`
	Flexibility float64 `json:"flexibility"` // 0-1
}

// CompensationTask is an obligation to be placed into a time slot. Tasks come
// from two places: user-authored tasks and debt-makeup tasks synthesized by
// the CompensationEngine. Both are scheduled identically.
type CompensationTask struct {
	ID                     string       `json:"id"`
	Title                  string       `json:"title"`
	EstimatedDurationHours float64      `json:"estimated_duration_hours"`
	Priority               TaskPriority `json:"priority"`
	RequiredEnergy         EnergyLevel  `json:"required_energy"`
	Deadline               *time.Time   `json:"deadline,omitempty"`
	Context                string       `json:"context"` // work, personal, health, admin
	Flexibility            float64      `json:"flexibility"`
	CompensationFor        string       `json:"compensation_for,omitempty"`
}

// Validate rejects contract violations at construction time.
func (t CompensationTask) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("task id is empty: %w", ErrInvalidInput)
	}
	if t.EstimatedDurationHours <= 0 {
		return fmt.Errorf("task %s: duration %.2fh must be positive: %w", t.ID, t.EstimatedDurationHours, ErrInvalidInput)
	}
	if t.Flexibility < 0 || t.Flexibility > 1 {
		return fmt.Errorf("task %s: flexibility %.2f out of range [0,1]: %w", t.ID, t.Flexibility, ErrInvalidInput)
	}
	return nil
}

// TimeSlot is a contiguous span of available time. Slots are consumed during
// a scheduling run: taking part of a slot advances StartTime and shrinks
// DurationHours, and a fully consumed slot leaves the candidate pool. A slot
// list belongs to exactly one scheduling run.
type TimeSlot struct {
	StartTime       time.Time   `json:"start_time"`
	EndTime         time.Time   `json:"end_time"`
	DurationHours   float64     `json:"duration_hours"`
	AvailableEnergy EnergyLevel `json:"available_energy"`
	ContextType     string      `json:"context_type"`
	QualityScore    float64     `json:"quality_score"` // 0-1
}

// ScheduleEntry records one task placed into a slot. Slot is a snapshot of
// the slot as it was at match time, before consumption.
type ScheduleEntry struct {
	Task            CompensationTask `json:"task"`
	Slot            TimeSlot         `json:"slot"`
	StartTime       time.Time        `json:"start_time"`
	EndTime         time.Time        `json:"end_time"`
	EnergyMatch     float64          `json:"energy_match_score"`
	EfficiencyScore float64          `json:"efficiency_score"`
}

// ScheduleResult is the outcome of one scheduling run. A task appears either
// in Scheduled (keyed by task ID) or in Unscheduled, never both.
type ScheduleResult struct {
	Scheduled           map[string]ScheduleEntry `json:"scheduled"`
	Unscheduled         []CompensationTask       `json:"unscheduled"`
	TotalScheduledHours float64                  `json:"total_scheduled_hours"`
	ScheduleEfficiency  float64                  `json:"schedule_efficiency"`
	Recommendations     []string                 `json:"recommendations"`
}

// Preferences carries the user-tunable knobs the engine consults. The zero
// value is usable; unset fields fall back to the documented defaults.
type Preferences struct {
	WorkHoursStart    int     `json:"work_hours_start"`    // default 9
	WorkHoursEnd      int     `json:"work_hours_end"`      // default 17
	MaxDailyMakeup    float64 `json:"max_daily_makeup"`    // hours, default 2.0
	WeeklyTargetHours float64 `json:"weekly_target_hours"` // default 40
}

// DefaultPreferences returns the documented defaults.
func DefaultPreferences() Preferences {
	return Preferences{
		WorkHoursStart:    9,
		WorkHoursEnd:      17,
		MaxDailyMakeup:    2.0,
		WeeklyTargetHours: 40,
	}
}

func (p Preferences) withDefaults() Preferences {
	def := DefaultPreferences()
	if p.WorkHoursStart == 0 && p.WorkHoursEnd == 0 {
		p.WorkHoursStart = def.WorkHoursStart
		p.WorkHoursEnd = def.WorkHoursEnd
	}
	if p.MaxDailyMakeup <= 0 {
		p.MaxDailyMakeup = def.MaxDailyMakeup
	}
	if p.WeeklyTargetHours <= 0 {
		p.WeeklyTargetHours = def.WeeklyTargetHours
	}
	return p
}

// CompensationPlan is the full output of CompensationEngine.AnalyzeAndCompensate.
// All fields are plain data, safe to serialize by the surrounding application.
type CompensationPlan struct {
	EnergyProfile     EnergyProfile      `json:"energy_profile"`
	TimeDebt          TimeDebt           `json:"time_debt"`
	CompensationTasks []CompensationTask `json:"compensation_tasks"`
	Schedule          ScheduleResult     `json:"schedule"`
	Insights          []string           `json:"insights"`
	Recommendations   []string           `json:"recommendations"`
	NextActions       []string           `json:"next_actions"`
}
