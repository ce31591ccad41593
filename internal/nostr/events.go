// Package nostr builds and publishes the NIP-101e-shaped events liftlog
// shares: workout records (kind 1301), workout templates (kind 33402), and
// plain notes quoting a workout record. Signing and transport are delegated
// to go-nostr; this package only assembles kind/content/tag triples.
package nostr

import (
	"fmt"
	"strconv"

	"github.com/claude/liftlog/internal/models"
	"github.com/nbd-wtf/go-nostr"
)

const (
	KindNote            = 1
	KindWorkoutRecord   = 1301
	KindWorkoutTemplate = 33402
)

// WorkoutRecordEvent builds an unsigned kind-1301 workout record. The tag
// order is fixed: identifier, title, type, timestamps, one exercise tag per
// completed set, then a template back-reference when the session came from
// one. Uncompleted sets are never published.
func WorkoutRecordEvent(w *models.Workout) nostr.Event {
	tags := nostr.Tags{
		{"d", w.ID.String()},
		{"title", w.Title},
		{"type", string(w.Type)},
		{"start", strconv.FormatInt(w.StartTime.Unix(), 10)},
	}
	if w.EndTime != nil {
		tags = append(tags, nostr.Tag{"end", strconv.FormatInt(w.EndTime.Unix(), 10)})
	}
	tags = append(tags, nostr.Tag{"completed", "true"})

	for _, ex := range w.Exercises {
		for _, set := range ex.Sets {
			if !set.Completed {
				continue
			}
			tags = append(tags, nostr.Tag{
				"exercise",
				ex.ExerciseID,
				formatFloat(set.Weight),
				strconv.Itoa(set.Reps),
				formatFloat(set.RPE),
				string(set.Type),
			})
		}
	}

	if w.TemplateID != "" {
		tags = append(tags, nostr.Tag{
			"template",
			fmt.Sprintf("%d::%s", KindWorkoutTemplate, w.TemplateID),
		})
	}

	return nostr.Event{
		Kind:      KindWorkoutRecord,
		CreatedAt: nostr.Now(),
		Content:   "",
		Tags:      tags,
	}
}

// TemplateEvent builds an unsigned kind-33402 workout template event.
func TemplateEvent(t *models.Template) nostr.Event {
	tags := nostr.Tags{
		{"d", t.ID},
		{"title", t.Title},
		{"type", string(t.Type)},
	}
	for _, ex := range t.Exercises {
		tags = append(tags, nostr.Tag{
			"exercise",
			ex.ExerciseID,
			strconv.Itoa(ex.TargetSets),
			strconv.Itoa(ex.TargetReps),
		})
	}
	for _, tag := range t.Tags {
		tags = append(tags, nostr.Tag{"t", tag})
	}

	return nostr.Event{
		Kind:      KindWorkoutTemplate,
		CreatedAt: nostr.Now(),
		Content:   "",
		Tags:      tags,
	}
}

// SocialPostEvent builds an unsigned kind-1 note quoting a published workout
// record by event id.
func SocialPostEvent(message, recordEventID string) nostr.Event {
	return nostr.Event{
		Kind:      KindNote,
		CreatedAt: nostr.Now(),
		Content:   message,
		Tags: nostr.Tags{
			{"q", recordEventID},
		},
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
