package workout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// State-machine violations are caller bugs and fail fast rather than no-op.
var (
	ErrSessionInProgress = errors.New("a workout session is already in progress")
	ErrNoSession         = errors.New("no workout session in progress")
	ErrNotActive         = errors.New("session is not active")
	ErrNotPaused         = errors.New("session is not paused")
	ErrNotCompleting     = errors.New("session is not being completed")
	ErrIndexOutOfRange   = errors.New("exercise or set index out of range")
)

// SnapshotStore persists the in-progress session for crash recovery.
// LoadSnapshot returns (nil, nil) when no snapshot exists.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, s *models.Session) error
	LoadSnapshot(ctx context.Context) (*models.Session, error)
	ClearSnapshot(ctx context.Context) error
}

// SetPatch is a partial update to one set. Nil fields are left unchanged.
type SetPatch struct {
	Weight    *float64        `json:"weight,omitempty"`
	Reps      *int            `json:"reps,omitempty"`
	RPE       *float64        `json:"rpe,omitempty"`
	Type      *models.SetType `json:"type,omitempty"`
	Completed *bool           `json:"completed,omitempty"`
}

// Tracker owns the single in-progress workout session and enforces the
// idle → active ⇄ paused → completed lifecycle. All mutation goes through it;
// the clock is driven externally via Tick, the tracker never schedules time
// itself.
type Tracker struct {
	mu        sync.Mutex
	session   *models.Session
	snapshots SnapshotStore
	log       *slog.Logger
	now       func() time.Time
}

// NewTracker creates an idle tracker. snapshots may be nil to disable autosave.
func NewTracker(snapshots SnapshotStore, log *slog.Logger) *Tracker {
	return &Tracker{snapshots: snapshots, log: log, now: time.Now}
}

// Start installs a fresh session. Exactly one session may be in progress;
// starting over an active or paused one is rejected.
func (t *Tracker) Start(s *models.Session) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session != nil {
		return ErrSessionInProgress
	}
	if s == nil {
		return fmt.Errorf("start: nil session")
	}
	s.Status = models.StatusActive
	t.session = s
	return nil
}

// Pause freezes elapsed-time accrual.
func (t *Tracker) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return ErrNoSession
	}
	if t.session.Status != models.StatusActive {
		return ErrNotActive
	}
	t.session.Status = models.StatusPaused
	return nil
}

// Resume restarts elapsed-time accrual.
func (t *Tracker) Resume() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return ErrNoSession
	}
	if t.session.Status != models.StatusPaused {
		return ErrNotPaused
	}
	t.session.Status = models.StatusActive
	return nil
}

// Tick advances the elapsed clock by delta. Legal only while active; the
// caller owns the cadence and must stop ticking otherwise. A running rest
// countdown is decremented by the same delta and cleared when it expires.
func (t *Tracker) Tick(delta time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return ErrNoSession
	}
	if t.session.Status != models.StatusActive {
		return ErrNotActive
	}
	t.session.ElapsedMs += delta.Milliseconds()
	if r := t.session.Rest; r != nil {
		r.RemainingMs -= delta.Milliseconds()
		if r.RemainingMs <= 0 {
			t.session.Rest = nil
		}
	}
	return nil
}

// UpdateTitle renames the in-progress session.
func (t *Tracker) UpdateTitle(title string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.mutable(); err != nil {
		return err
	}
	t.session.Title = title
	return nil
}

// AddExercise appends an exercise slot with no sets.
func (t *Tracker) AddExercise(ex models.Exercise) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.mutable(); err != nil {
		return err
	}
	t.session.Exercises = append(t.session.Exercises, models.WorkoutExercise{
		ID:         uuid.New(),
		ExerciseID: ex.ID,
		Title:      ex.Title,
		Category:   ex.Category,
		Equipment:  ex.Equipment,
		Sets:       []models.WorkoutSet{},
	})
	return nil
}

// AddSet appends a set to the given exercise, seeded from the previous set's
// weight and reps as a convenience, or zeroed when it is the first.
func (t *Tracker) AddSet(exerciseIdx int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.mutable(); err != nil {
		return err
	}
	if exerciseIdx < 0 || exerciseIdx >= len(t.session.Exercises) {
		return ErrIndexOutOfRange
	}
	ex := &t.session.Exercises[exerciseIdx]
	set := models.WorkoutSet{ID: uuid.New(), Type: models.SetNormal}
	if n := len(ex.Sets); n > 0 {
		set.Weight = ex.Sets[n-1].Weight
		set.Reps = ex.Sets[n-1].Reps
	}
	ex.Sets = append(ex.Sets, set)
	return nil
}

// UpdateSet applies a partial update to one set. Used for weight/reps/RPE
// edits and for toggling completion.
func (t *Tracker) UpdateSet(exerciseIdx, setIdx int, patch SetPatch) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.mutable(); err != nil {
		return err
	}
	if exerciseIdx < 0 || exerciseIdx >= len(t.session.Exercises) {
		return ErrIndexOutOfRange
	}
	ex := &t.session.Exercises[exerciseIdx]
	if setIdx < 0 || setIdx >= len(ex.Sets) {
		return ErrIndexOutOfRange
	}
	set := &ex.Sets[setIdx]
	if patch.Weight != nil {
		set.Weight = *patch.Weight
	}
	if patch.Reps != nil {
		set.Reps = *patch.Reps
	}
	if patch.RPE != nil {
		set.RPE = *patch.RPE
	}
	if patch.Type != nil {
		set.Type = *patch.Type
	}
	if patch.Completed != nil {
		set.Completed = *patch.Completed
	}
	return nil
}

// StartRest begins a rest countdown tied to the set that triggered it.
func (t *Tracker) StartRest(exerciseIdx, setIdx, seconds int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.mutable(); err != nil {
		return err
	}
	t.session.Rest = &models.RestTimer{
		RemainingMs: int64(seconds) * 1000,
		ExerciseIdx: exerciseIdx,
		SetIdx:      setIdx,
	}
	return nil
}

// BeginCompletion transitions active/paused → completed, stamps the end time
// once, and returns a frozen deep copy for the completion pipeline. The
// tracker holds the session until FinishCompletion or AbortCompletion so a
// failed local persist leaves it recoverable.
func (t *Tracker) BeginCompletion() (*models.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return nil, ErrNoSession
	}
	switch t.session.Status {
	case models.StatusActive, models.StatusPaused:
	default:
		return nil, ErrNotActive
	}
	end := t.now()
	t.session.Status = models.StatusCompleted
	t.session.EndTime = &end
	t.session.Completed = true
	return t.session.Clone(), nil
}

// AbortCompletion reverts a failed completion back to paused so the caller
// can retry. Completed is the only legal source state.
func (t *Tracker) AbortCompletion() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return ErrNoSession
	}
	if t.session.Status != models.StatusCompleted {
		return ErrNotCompleting
	}
	t.session.Status = models.StatusPaused
	t.session.EndTime = nil
	t.session.Completed = false
	return nil
}

// FinishCompletion drops the in-memory session and clears the autosave
// snapshot after the pipeline has durably persisted the workout.
func (t *Tracker) FinishCompletion(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return ErrNoSession
	}
	if t.session.Status != models.StatusCompleted {
		return ErrNotCompleting
	}
	t.session = nil
	return t.clearSnapshot(ctx)
}

// Discard drops the session and its snapshot without persisting a record.
func (t *Tracker) Discard(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return ErrNoSession
	}
	switch t.session.Status {
	case models.StatusActive, models.StatusPaused:
	default:
		return ErrNotActive
	}
	t.session = nil
	return t.clearSnapshot(ctx)
}

// Current returns a copy of the in-progress session, or nil when idle.
func (t *Tracker) Current() *models.Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return nil
	}
	return t.session.Clone()
}

// Status reports the lifecycle state, StatusIdle when no session exists.
func (t *Tracker) Status() models.SessionStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return models.StatusIdle
	}
	return t.session.Status
}

// Snapshot writes the current session to the snapshot store. No-op when idle.
// The write stays under the lock so a save in flight can never land after
// Discard or FinishCompletion has cleared the snapshot.
func (t *Tracker) Snapshot(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil || t.snapshots == nil {
		return nil
	}
	return t.snapshots.SaveSnapshot(ctx, t.session.Clone())
}

// Restore installs the last autosaved session, if any, with status forced to
// paused: a restart loses the live clock, so the user must explicitly resume.
// Recovery is best effort, last snapshot wins.
func (t *Tracker) Restore(ctx context.Context) (bool, error) {
	if t.snapshots == nil {
		return false, nil
	}
	s, err := t.snapshots.LoadSnapshot(ctx)
	if err != nil {
		return false, fmt.Errorf("loading snapshot: %w", err)
	}
	if s == nil {
		return false, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session != nil {
		return false, ErrSessionInProgress
	}
	s.Status = models.StatusPaused
	t.session = s
	return true, nil
}

func (t *Tracker) mutable() error {
	if t.session == nil {
		return ErrNoSession
	}
	switch t.session.Status {
	case models.StatusActive, models.StatusPaused:
		return nil
	default:
		return ErrNotActive
	}
}

func (t *Tracker) clearSnapshot(ctx context.Context) error {
	if t.snapshots == nil {
		return nil
	}
	if err := t.snapshots.ClearSnapshot(ctx); err != nil {
		return fmt.Errorf("clearing snapshot: %w", err)
	}
	return nil
}
