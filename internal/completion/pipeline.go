// Package completion turns a frozen workout session into a persisted record.
// Only the local write must succeed; Nostr publication, the social post, and
// template sync are each independently fallible and their outcomes are
// reported to the caller rather than aborting later steps.
package completion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/liftlog/internal/models"
	liftnostr "github.com/claude/liftlog/internal/nostr"
	"github.com/google/uuid"
)

// Step names used in Result.Steps.
const (
	StepLocalSave     = "local_save"
	StepPublishRecord = "publish_record"
	StepSocialPost    = "social_post"
	StepTemplateSync  = "template_sync"
)

// Store is the slice of local storage the pipeline needs.
type Store interface {
	SaveWorkout(ctx context.Context, w *models.Workout) error
	SetWorkoutEventID(ctx context.Context, workoutID uuid.UUID, eventID string) error
	GetTemplate(ctx context.Context, id string) (*models.Template, error)
	SaveTemplate(ctx context.Context, t *models.Template) error
	UpdateTemplateExercises(ctx context.Context, templateID string, exs []models.TemplateExercise) error
}

// StepOutcome records how one pipeline step went.
type StepOutcome struct {
	Step    string `json:"step"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
	EventID string `json:"event_id,omitempty"`
}

// Result is the authoritative outcome of a completion. Workout is always the
// locally persisted record; Steps reports the best-effort remote work.
type Result struct {
	Workout *models.Workout `json:"workout"`
	Steps   []StepOutcome   `json:"steps"`
}

// Pipeline freezes sessions into workout records. publisher may be nil, in
// which case all remote steps are skipped.
type Pipeline struct {
	store     Store
	publisher liftnostr.Publisher
	log       *slog.Logger
}

// New creates a completion pipeline.
func New(store Store, publisher liftnostr.Publisher, log *slog.Logger) *Pipeline {
	return &Pipeline{store: store, publisher: publisher, log: log}
}

// Complete runs the pipeline on a frozen session. It returns an error only
// when the local save fails; every later step records its outcome and the
// locally persisted workout is returned regardless.
func (p *Pipeline) Complete(ctx context.Context, session *models.Session, opts models.CompletionOptions) (*Result, error) {
	if session == nil || !session.Completed || session.EndTime == nil {
		return nil, fmt.Errorf("complete: session is not frozen")
	}

	w := freeze(session)
	res := &Result{Workout: w}

	// Step 1: the one must-succeed write.
	if err := p.store.SaveWorkout(ctx, w); err != nil {
		return nil, fmt.Errorf("persisting workout: %w", err)
	}
	res.Steps = append(res.Steps, StepOutcome{Step: StepLocalSave})

	res.Steps = append(res.Steps, p.publishRecord(ctx, w, opts))
	recordID := res.Steps[len(res.Steps)-1].EventID

	res.Steps = append(res.Steps, p.socialPost(ctx, recordID, opts))
	res.Steps = append(res.Steps, p.syncTemplate(ctx, session, opts))

	return res, nil
}

func (p *Pipeline) publishRecord(ctx context.Context, w *models.Workout, opts models.CompletionOptions) StepOutcome {
	out := StepOutcome{Step: StepPublishRecord}
	if !p.shouldPublish(opts) {
		out.Skipped = true
		return out
	}

	id, err := p.publisher.Publish(ctx, liftnostr.WorkoutRecordEvent(w))
	if err != nil {
		p.log.Warn("workout record publish failed", "workout", w.ID, "error", err)
		out.Error = err.Error()
		return out
	}

	out.EventID = id
	w.NostrEventID = id
	if err := p.store.SetWorkoutEventID(ctx, w.ID, id); err != nil {
		p.log.Warn("recording event id failed", "workout", w.ID, "error", err)
	}
	return out
}

func (p *Pipeline) socialPost(ctx context.Context, recordEventID string, opts models.CompletionOptions) StepOutcome {
	out := StepOutcome{Step: StepSocialPost}
	if !opts.ShareOnSocial || recordEventID == "" || p.publisher == nil {
		out.Skipped = true
		return out
	}

	msg := opts.SocialMessage
	if msg == "" {
		msg = "Just finished a workout! 💪"
	}
	id, err := p.publisher.Publish(ctx, liftnostr.SocialPostEvent(msg, recordEventID))
	if err != nil {
		p.log.Warn("social post publish failed", "record", recordEventID, "error", err)
		out.Error = err.Error()
		return out
	}
	out.EventID = id
	return out
}

func (p *Pipeline) syncTemplate(ctx context.Context, session *models.Session, opts models.CompletionOptions) StepOutcome {
	out := StepOutcome{Step: StepTemplateSync}
	switch opts.TemplateAction {
	case models.TemplateUpdateExisting:
		if session.TemplateID == "" {
			out.Skipped = true
			return out
		}
		if err := p.store.UpdateTemplateExercises(ctx, session.TemplateID, exerciseConfigs(session)); err != nil {
			p.log.Warn("template update failed", "template", session.TemplateID, "error", err)
			out.Error = err.Error()
			return out
		}
		if p.shouldPublish(opts) {
			tpl, err := p.store.GetTemplate(ctx, session.TemplateID)
			if err != nil {
				p.log.Warn("loading updated template failed", "template", session.TemplateID, "error", err)
				return out
			}
			p.publishTemplate(ctx, tpl, &out)
		}
	case models.TemplateSaveAsNew:
		name := opts.NewTemplateName
		if name == "" {
			name = session.Title
		}
		src, err := p.store.GetTemplate(ctx, session.TemplateID)
		tpl := &models.Template{
			ID:        uuid.NewString(),
			Title:     name,
			Type:      session.Type,
			Exercises: exerciseConfigs(session),
			Source:    "local",
			CreatedAt: time.Now(),
		}
		if err == nil && src != nil {
			tpl.Category = src.Category
			tpl.Rounds = src.Rounds
			tpl.DurationSec = src.DurationSec
			tpl.IntervalSec = src.IntervalSec
			tpl.RestSec = src.RestSec
			tpl.Tags = src.Tags
		}
		if err := p.store.SaveTemplate(ctx, tpl); err != nil {
			p.log.Warn("template fork failed", "title", name, "error", err)
			out.Error = err.Error()
			return out
		}
		if p.shouldPublish(opts) {
			p.publishTemplate(ctx, tpl, &out)
		}
	default:
		out.Skipped = true
	}
	return out
}

func (p *Pipeline) shouldPublish(opts models.CompletionOptions) bool {
	return opts.StorageType == models.StorageLocalAndRemote && p.publisher != nil
}

// publishTemplate mirrors a locally synced template to the relays as an
// addressable template event. The local write already succeeded, so a failed
// publish only lands on the step outcome.
func (p *Pipeline) publishTemplate(ctx context.Context, tpl *models.Template, out *StepOutcome) {
	id, err := p.publisher.Publish(ctx, liftnostr.TemplateEvent(tpl))
	if err != nil {
		p.log.Warn("template publish failed", "template", tpl.ID, "error", err)
		out.Error = err.Error()
		return
	}
	out.EventID = id
}

// freeze converts a completed session into its persisted record, computing
// duration, volume, and average RPE once.
func freeze(s *models.Session) *models.Workout {
	w := &models.Workout{
		ID:          s.ID,
		Title:       s.Title,
		Type:        s.Type,
		TemplateID:  s.TemplateID,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		TotalVolume: s.TotalVolume(),
		AvgRPE:      s.AvgRPE(),
		Exercises:   s.Clone().Exercises,
		Source:      "local",
	}
	if s.EndTime != nil {
		w.DurationSec = int64(s.EndTime.Sub(s.StartTime).Seconds())
	}
	return w
}

// exerciseConfigs derives template exercise configs from the performed
// session: one config per exercise, target sets = sets performed, target
// reps = the last set's reps.
func exerciseConfigs(s *models.Session) []models.TemplateExercise {
	configs := make([]models.TemplateExercise, 0, len(s.Exercises))
	for _, ex := range s.Exercises {
		cfg := models.TemplateExercise{
			ExerciseID: ex.ExerciseID,
			Title:      ex.Title,
			Category:   ex.Category,
			Equipment:  ex.Equipment,
			Notes:      ex.Notes,
			TargetSets: len(ex.Sets),
		}
		if n := len(ex.Sets); n > 0 {
			cfg.TargetReps = ex.Sets[n-1].Reps
		}
		configs = append(configs, cfg)
	}
	return configs
}
