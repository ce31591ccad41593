package models

import "time"

// TemplateExercise is one exercise slot in a template with its targets.
type TemplateExercise struct {
	ExerciseID string `json:"exercise_id"`
	Title      string `json:"title"`
	Category   string `json:"category,omitempty"`
	Equipment  string `json:"equipment,omitempty"`
	TargetSets int    `json:"target_sets"`
	TargetReps int    `json:"target_reps"`
	Notes      string `json:"notes,omitempty"`
}

// Template is a reusable workout blueprint. A started session takes a value
// copy, so templates are never mutated by an in-progress workout.
type Template struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Type        WorkoutType        `json:"type"`
	Category    string             `json:"category,omitempty"`
	Exercises   []TemplateExercise `json:"exercises"`
	Rounds      int                `json:"rounds,omitempty"`
	DurationSec int                `json:"duration_sec,omitempty"`
	IntervalSec int                `json:"interval_sec,omitempty"`
	RestSec     int                `json:"rest_sec,omitempty"`
	Tags        []string           `json:"tags,omitempty"`
	Public      bool               `json:"public"`
	Source      string             `json:"source"` // "local" or "nostr"
	CreatedAt   time.Time          `json:"created_at"`
}
