package workout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// memSnapshots is an in-memory SnapshotStore.
type memSnapshots struct {
	saved   *models.Session
	cleared int
}

func (m *memSnapshots) SaveSnapshot(_ context.Context, s *models.Session) error {
	m.saved = s.Clone()
	return nil
}

func (m *memSnapshots) LoadSnapshot(_ context.Context) (*models.Session, error) {
	if m.saved == nil {
		return nil, nil
	}
	return m.saved.Clone(), nil
}

func (m *memSnapshots) ClearSnapshot(_ context.Context) error {
	m.saved = nil
	m.cleared++
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startedTracker(t *testing.T, snaps SnapshotStore) *Tracker {
	t.Helper()
	tr := NewTracker(snaps, testLogger())
	s, err := Materialize(benchTemplate(), time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.Start(s); err != nil {
		t.Fatal(err)
	}
	return tr
}

// TestSingleSessionInvariant verifies at most one session may be in progress.
func TestSingleSessionInvariant(t *testing.T) {
	tr := startedTracker(t, nil)
	if err := tr.Start(Blank("Second", time.Now())); !errors.Is(err, ErrSessionInProgress) {
		t.Errorf("second Start error = %v, want ErrSessionInProgress", err)
	}
}

// TestStatusGuard verifies mutations fail fast while idle.
func TestStatusGuard(t *testing.T) {
	tr := NewTracker(nil, testLogger())

	cases := []struct {
		name string
		call func() error
	}{
		{"tick", func() error { return tr.Tick(time.Second) }},
		{"pause", func() error { return tr.Pause() }},
		{"resume", func() error { return tr.Resume() }},
		{"updateTitle", func() error { return tr.UpdateTitle("x") }},
		{"addSet", func() error { return tr.AddSet(0) }},
		{"updateSet", func() error { return tr.UpdateSet(0, 0, SetPatch{}) }},
		{"discard", func() error { return tr.Discard(context.Background()) }},
	}
	for _, tc := range cases {
		if err := tc.call(); !errors.Is(err, ErrNoSession) {
			t.Errorf("%s while idle: error = %v, want ErrNoSession", tc.name, err)
		}
	}
}

// TestTickRequiresActive verifies the clock only advances while active and
// elapsed time is frozen while paused.
func TestTickRequiresActive(t *testing.T) {
	tr := startedTracker(t, nil)

	if err := tr.Tick(time.Second); err != nil {
		t.Fatalf("tick while active: %v", err)
	}
	if got := tr.Current().ElapsedMs; got != 1000 {
		t.Errorf("elapsed = %d, want 1000", got)
	}

	if err := tr.Pause(); err != nil {
		t.Fatal(err)
	}
	if err := tr.Tick(time.Second); !errors.Is(err, ErrNotActive) {
		t.Errorf("tick while paused: error = %v, want ErrNotActive", err)
	}
	if got := tr.Current().ElapsedMs; got != 1000 {
		t.Errorf("elapsed after paused tick = %d, want 1000", got)
	}

	if err := tr.Resume(); err != nil {
		t.Fatal(err)
	}
	if err := tr.Tick(2 * time.Second); err != nil {
		t.Fatal(err)
	}
	if got := tr.Current().ElapsedMs; got != 3000 {
		t.Errorf("elapsed after resume = %d, want 3000", got)
	}
}

// TestPauseResumeGuards verifies pause/resume are rejected outside their
// legal source states.
func TestPauseResumeGuards(t *testing.T) {
	tr := startedTracker(t, nil)

	if err := tr.Resume(); !errors.Is(err, ErrNotPaused) {
		t.Errorf("resume while active: error = %v, want ErrNotPaused", err)
	}
	if err := tr.Pause(); err != nil {
		t.Fatal(err)
	}
	if err := tr.Pause(); !errors.Is(err, ErrNotActive) {
		t.Errorf("pause while paused: error = %v, want ErrNotActive", err)
	}
}

// TestAddSetSeeding verifies a new set copies the previous set's weight and
// reps, and a first set starts zeroed.
func TestAddSetSeeding(t *testing.T) {
	tr := NewTracker(nil, testLogger())
	if err := tr.Start(Blank("Legs", time.Now())); err != nil {
		t.Fatal(err)
	}
	if err := tr.AddExercise(models.Exercise{ID: "squat", Title: "Squat"}); err != nil {
		t.Fatal(err)
	}

	if err := tr.AddSet(0); err != nil {
		t.Fatal(err)
	}
	first := tr.Current().Exercises[0].Sets[0]
	if first.Weight != 0 || first.Reps != 0 {
		t.Errorf("first set = %v/%d, want 0/0", first.Weight, first.Reps)
	}

	w, r := 100.0, 5
	if err := tr.UpdateSet(0, 0, SetPatch{Weight: &w, Reps: &r}); err != nil {
		t.Fatal(err)
	}
	if err := tr.AddSet(0); err != nil {
		t.Fatal(err)
	}
	second := tr.Current().Exercises[0].Sets[1]
	if second.Weight != 100 || second.Reps != 5 {
		t.Errorf("seeded set = %v/%d, want 100/5", second.Weight, second.Reps)
	}
	if second.Completed {
		t.Error("seeded set completed = true, want false")
	}
}

// TestCompletionIsTerminal verifies a frozen session cannot be completed or
// mutated again.
func TestCompletionIsTerminal(t *testing.T) {
	tr := startedTracker(t, &memSnapshots{})
	tr.now = func() time.Time { return time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC) }

	frozen, err := tr.BeginCompletion()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if frozen.EndTime == nil || !frozen.Completed {
		t.Fatal("frozen session missing end time or completed flag")
	}

	if _, err := tr.BeginCompletion(); !errors.Is(err, ErrNotActive) {
		t.Errorf("second BeginCompletion error = %v, want ErrNotActive", err)
	}
	if err := tr.AddSet(0); !errors.Is(err, ErrNotActive) {
		t.Errorf("mutation after freeze error = %v, want ErrNotActive", err)
	}
}

// TestAbortCompletion verifies a failed completion reverts to paused with the
// end time cleared, so a retry stamps a fresh one.
func TestAbortCompletion(t *testing.T) {
	tr := startedTracker(t, nil)

	if _, err := tr.BeginCompletion(); err != nil {
		t.Fatal(err)
	}
	if err := tr.AbortCompletion(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cur := tr.Current()
	if cur.Status != models.StatusPaused {
		t.Errorf("status = %q, want %q", cur.Status, models.StatusPaused)
	}
	if cur.EndTime != nil || cur.Completed {
		t.Error("aborted session still frozen")
	}

	if _, err := tr.BeginCompletion(); err != nil {
		t.Errorf("retry after abort: %v", err)
	}
}

// TestFinishCompletionClearsSnapshot verifies finishing drops the session and
// its autosave snapshot.
func TestFinishCompletionClearsSnapshot(t *testing.T) {
	snaps := &memSnapshots{}
	tr := startedTracker(t, snaps)
	ctx := context.Background()

	if err := tr.Snapshot(ctx); err != nil {
		t.Fatal(err)
	}
	if snaps.saved == nil {
		t.Fatal("snapshot not saved")
	}

	if _, err := tr.BeginCompletion(); err != nil {
		t.Fatal(err)
	}
	if err := tr.FinishCompletion(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tr.Status() != models.StatusIdle {
		t.Errorf("status = %q, want idle", tr.Status())
	}
	if snaps.saved != nil {
		t.Error("snapshot not cleared")
	}
}

// TestDiscardClearsSnapshot verifies discarding drops the session and its
// snapshot without persisting anything.
func TestDiscardClearsSnapshot(t *testing.T) {
	snaps := &memSnapshots{}
	tr := startedTracker(t, snaps)
	ctx := context.Background()

	if err := tr.Snapshot(ctx); err != nil {
		t.Fatal(err)
	}
	if err := tr.Discard(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Status() != models.StatusIdle {
		t.Errorf("status = %q, want idle", tr.Status())
	}
	if snaps.saved != nil {
		t.Error("snapshot not cleared")
	}
}

// gatedSnapshots blocks inside SaveSnapshot until released, exposing writes
// that overlap with a concurrent discard.
type gatedSnapshots struct {
	memSnapshots
	entered chan struct{}
	release chan struct{}
}

func (g *gatedSnapshots) SaveSnapshot(ctx context.Context, s *models.Session) error {
	g.entered <- struct{}{}
	<-g.release
	return g.memSnapshots.SaveSnapshot(ctx, s)
}

// TestDiscardDuringAutosave verifies an autosave already writing its snapshot
// cannot resurrect a session discarded while the write was in flight: after
// both settle the snapshot is gone and a restart restores nothing.
func TestDiscardDuringAutosave(t *testing.T) {
	snaps := &gatedSnapshots{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	tr := startedTracker(t, snaps)
	ctx := context.Background()

	saveDone := make(chan error, 1)
	go func() { saveDone <- tr.Snapshot(ctx) }()
	<-snaps.entered

	discardDone := make(chan error, 1)
	go func() { discardDone <- tr.Discard(ctx) }()

	close(snaps.release)
	if err := <-saveDone; err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if err := <-discardDone; err != nil {
		t.Fatalf("discard: %v", err)
	}

	if snaps.saved != nil {
		t.Fatal("snapshot survived discard")
	}
	tr2 := NewTracker(snaps, testLogger())
	restored, err := tr2.Restore(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if restored {
		t.Error("restored = true after discard, want false")
	}
}

// TestRestore verifies crash recovery installs the last snapshot paused.
func TestRestore(t *testing.T) {
	snaps := &memSnapshots{}
	tr := startedTracker(t, snaps)
	ctx := context.Background()

	if err := tr.Tick(5 * time.Second); err != nil {
		t.Fatal(err)
	}
	if err := tr.Snapshot(ctx); err != nil {
		t.Fatal(err)
	}

	// Fresh tracker simulating a restart.
	tr2 := NewTracker(snaps, testLogger())
	restored, err := tr2.Restore(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !restored {
		t.Fatal("restored = false, want true")
	}

	cur := tr2.Current()
	if cur.Status != models.StatusPaused {
		t.Errorf("restored status = %q, want paused", cur.Status)
	}
	if cur.ElapsedMs != 5000 {
		t.Errorf("restored elapsed = %d, want 5000", cur.ElapsedMs)
	}
}

// TestRestoreNoSnapshot verifies restore is a no-op with nothing saved.
func TestRestoreNoSnapshot(t *testing.T) {
	tr := NewTracker(&memSnapshots{}, testLogger())
	restored, err := tr.Restore(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if restored {
		t.Error("restored = true, want false")
	}
}

// TestRestTimerCountdown verifies the rest countdown is driven by the session
// clock and clears itself at zero.
func TestRestTimerCountdown(t *testing.T) {
	tr := startedTracker(t, nil)

	if err := tr.StartRest(0, 0, 3); err != nil {
		t.Fatal(err)
	}
	if err := tr.Tick(2 * time.Second); err != nil {
		t.Fatal(err)
	}
	cur := tr.Current()
	if cur.Rest == nil || cur.Rest.RemainingMs != 1000 {
		t.Fatalf("rest = %+v, want 1s remaining", cur.Rest)
	}

	if err := tr.Tick(time.Second); err != nil {
		t.Fatal(err)
	}
	if tr.Current().Rest != nil {
		t.Error("rest timer not cleared at zero")
	}
}

// TestRestTimerSubSecondTicks verifies ticks shorter than a second still
// drain the rest countdown.
func TestRestTimerSubSecondTicks(t *testing.T) {
	tr := startedTracker(t, nil)

	if err := tr.StartRest(0, 0, 1); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := tr.Tick(250 * time.Millisecond); err != nil {
			t.Fatal(err)
		}
	}
	cur := tr.Current()
	if cur.Rest == nil || cur.Rest.RemainingMs != 250 {
		t.Fatalf("rest = %+v, want 250ms remaining", cur.Rest)
	}

	if err := tr.Tick(250 * time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if tr.Current().Rest != nil {
		t.Error("rest timer not cleared at zero")
	}
}
