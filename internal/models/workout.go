package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of the single in-progress workout.
type SessionStatus string

const (
	StatusIdle      SessionStatus = "idle"
	StatusActive    SessionStatus = "active"
	StatusPaused    SessionStatus = "paused"
	StatusCompleted SessionStatus = "completed"
)

// SetType tags how a set was performed.
type SetType string

const (
	SetNormal  SetType = "normal"
	SetWarmup  SetType = "warmup"
	SetDrop    SetType = "drop"
	SetFailure SetType = "failure"
)

// WorkoutType is the training format of a template or session.
type WorkoutType string

const (
	TypeStrength WorkoutType = "strength"
	TypeCircuit  WorkoutType = "circuit"
	TypeEMOM     WorkoutType = "emom"
	TypeAMRAP    WorkoutType = "amrap"
)

// WorkoutSet is a single performed (or pending) set within an exercise.
// Sets are appended in order and never reordered.
type WorkoutSet struct {
	ID        uuid.UUID `json:"id"`
	Weight    float64   `json:"weight"`
	Reps      int       `json:"reps"`
	RPE       float64   `json:"rpe,omitempty"` // 0 = not recorded
	Type      SetType   `json:"type"`
	Completed bool      `json:"completed"`
}

// Volume is weight × reps for this set.
func (s WorkoutSet) Volume() float64 {
	return s.Weight * float64(s.Reps)
}

// WorkoutExercise is one exercise slot in a session, carrying the catalog
// exercise's static metadata by value.
type WorkoutExercise struct {
	ID         uuid.UUID    `json:"id"`
	ExerciseID string       `json:"exercise_id"`
	Title      string       `json:"title"`
	Category   string       `json:"category,omitempty"`
	Equipment  string       `json:"equipment,omitempty"`
	Notes      string       `json:"notes,omitempty"`
	Sets       []WorkoutSet `json:"sets"`
}

// RestTimer is the optional rest countdown attached to an active session.
// Remaining time is tracked in milliseconds, like ElapsedMs, so ticks shorter
// than a second still drain it.
type RestTimer struct {
	RemainingMs int64 `json:"remaining_ms"`
	ExerciseIdx int   `json:"exercise_idx"`
	SetIdx      int   `json:"set_idx"`
}

// Session is the single mutable in-progress workout. It is created by
// materializing a template (or starting blank), mutated by the tracker while
// active or paused, and consumed by the completion pipeline.
type Session struct {
	ID         uuid.UUID         `json:"id"`
	Title      string            `json:"title"`
	Type       WorkoutType       `json:"type"`
	TemplateID string            `json:"template_id,omitempty"`
	Status     SessionStatus     `json:"status"`
	Exercises  []WorkoutExercise `json:"exercises"`
	StartTime  time.Time         `json:"start_time"`
	EndTime    *time.Time        `json:"end_time,omitempty"`
	ElapsedMs  int64             `json:"elapsed_ms"`
	Completed  bool              `json:"completed"`
	Rest       *RestTimer        `json:"rest,omitempty"`
}

// TotalVolume sums weight × reps over completed sets.
func (s *Session) TotalVolume() float64 {
	var v float64
	for _, ex := range s.Exercises {
		for _, set := range ex.Sets {
			if set.Completed {
				v += set.Volume()
			}
		}
	}
	return v
}

// AvgRPE is the mean RPE over completed sets that recorded one, 0 if none did.
func (s *Session) AvgRPE() float64 {
	var sum float64
	var n int
	for _, ex := range s.Exercises {
		for _, set := range ex.Sets {
			if set.Completed && set.RPE > 0 {
				sum += set.RPE
				n++
			}
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Clone returns a deep copy so snapshots and frozen records never alias the
// live session's slices.
func (s *Session) Clone() *Session {
	cp := *s
	cp.Exercises = make([]WorkoutExercise, len(s.Exercises))
	for i, ex := range s.Exercises {
		cp.Exercises[i] = ex
		cp.Exercises[i].Sets = append([]WorkoutSet(nil), ex.Sets...)
	}
	if s.EndTime != nil {
		t := *s.EndTime
		cp.EndTime = &t
	}
	if s.Rest != nil {
		r := *s.Rest
		cp.Rest = &r
	}
	return &cp
}

// Workout is a frozen, persisted workout record. Volume and RPE are computed
// once at completion so analytics scans never recompute them.
type Workout struct {
	ID           uuid.UUID         `json:"id"`
	Title        string            `json:"title"`
	Type         WorkoutType       `json:"type"`
	TemplateID   string            `json:"template_id,omitempty"`
	StartTime    time.Time         `json:"start_time"`
	EndTime      *time.Time        `json:"end_time,omitempty"`
	DurationSec  int64             `json:"duration_sec"`
	TotalVolume  float64           `json:"total_volume"`
	AvgRPE       float64           `json:"avg_rpe"`
	Exercises    []WorkoutExercise `json:"exercises"`
	Source       string            `json:"source"` // "local" or "nostr"
	NostrEventID string            `json:"nostr_event_id,omitempty"`
}

// Exercise is a catalog entry referenced by templates and sessions.
type Exercise struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category,omitempty"`
	Equipment string    `json:"equipment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
