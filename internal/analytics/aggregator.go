// Package analytics computes summary statistics, personal records, and
// per-exercise progress over the persisted workout history.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// Period selects the aggregation time window, resolved against "now" at call
// time.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
	PeriodAll   Period = "all"
)

// Valid reports whether p is a recognized period.
func (p Period) Valid() bool {
	switch p {
	case PeriodWeek, PeriodMonth, PeriodYear, PeriodAll:
		return true
	}
	return false
}

// Window resolves the period to [since, until). A workout starting exactly at
// the lower bound is included.
func (p Period) Window(now time.Time) (time.Time, time.Time) {
	until := now.Add(time.Nanosecond) // include workouts starting exactly at now
	switch p {
	case PeriodWeek:
		return now.AddDate(0, 0, -7), until
	case PeriodMonth:
		return now.AddDate(0, -1, 0), until
	case PeriodYear:
		return now.AddDate(-1, 0, 0), until
	default:
		return time.Unix(0, 0), until
	}
}

// ProgressMetric selects the scalar computed per session in ExerciseProgress.
type ProgressMetric string

const (
	MetricWeight ProgressMetric = "weight"
	MetricReps   ProgressMetric = "reps"
	MetricVolume ProgressMetric = "volume"
)

// WorkoutStats summarizes all workouts in a window.
type WorkoutStats struct {
	TotalWorkouts     int            `json:"total_workouts"`
	TotalDuration     time.Duration  `json:"total_duration"`
	TotalVolume       float64        `json:"total_volume"`
	AvgIntensity      float64        `json:"avg_intensity"`
	FrequencyByDay    [7]int         `json:"frequency_by_day"` // index 0 = Sunday
	ExerciseFrequency map[string]int `json:"exercise_frequency"`
}

// PreviousRecord is the superseded maximum a personal record replaced.
type PreviousRecord struct {
	Weight float64   `json:"weight"`
	Date   time.Time `json:"date"`
}

// PersonalRecord is the current historical maximum single-set weight for one
// exercise, with a back-reference to what it superseded.
type PersonalRecord struct {
	ExerciseID string          `json:"exercise_id"`
	Title      string          `json:"title"`
	Weight     float64         `json:"weight"`
	Reps       int             `json:"reps"`
	Date       time.Time       `json:"date"`
	Previous   *PreviousRecord `json:"previous,omitempty"`
}

// ProgressPoint is one session's scalar in a progress time series.
type ProgressPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// WorkoutSource is the read-only slice of storage the aggregator scans.
type WorkoutSource interface {
	ListWorkouts(ctx context.Context, since, until time.Time) ([]models.Workout, error)
}

// Aggregator memoizes analytics over the workout history. The cache is an
// unbounded map keyed by method+arguments and is invalidated wholesale when
// new workout data lands.
type Aggregator struct {
	src WorkoutSource
	now func() time.Time

	mu    sync.Mutex
	cache map[string]any
}

// New creates an aggregator over the given source.
func New(src WorkoutSource) *Aggregator {
	return &Aggregator{
		src:   src,
		now:   time.Now,
		cache: make(map[string]any),
	}
}

// InvalidateCache drops all memoized results. Call after any workout write.
func (a *Aggregator) InvalidateCache() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cache = make(map[string]any)
}

func (a *Aggregator) cached(key string) (any, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	v, ok := a.cache[key]
	return v, ok
}

func (a *Aggregator) store(key string, v any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cache[key] = v
}

// WorkoutStats aggregates totals over the period's window.
func (a *Aggregator) WorkoutStats(ctx context.Context, period Period) (*WorkoutStats, error) {
	if !period.Valid() {
		return nil, fmt.Errorf("invalid period %q", period)
	}
	key := "stats|" + string(period)
	if v, ok := a.cached(key); ok {
		return v.(*WorkoutStats), nil
	}

	now := a.now()
	since, until := period.Window(now)
	workouts, err := a.src.ListWorkouts(ctx, since, until)
	if err != nil {
		return nil, fmt.Errorf("listing workouts: %w", err)
	}

	stats := &WorkoutStats{ExerciseFrequency: make(map[string]int)}
	var rpeSum float64
	for _, w := range workouts {
		stats.TotalWorkouts++
		end := now
		if w.EndTime != nil {
			end = *w.EndTime
		}
		stats.TotalDuration += end.Sub(w.StartTime)
		stats.TotalVolume += w.TotalVolume
		rpeSum += w.AvgRPE
		stats.FrequencyByDay[int(w.StartTime.Weekday())]++

		seen := make(map[string]bool)
		for _, ex := range w.Exercises {
			if !seen[ex.ExerciseID] {
				seen[ex.ExerciseID] = true
				stats.ExerciseFrequency[ex.ExerciseID]++
			}
		}
	}
	if stats.TotalWorkouts > 0 {
		stats.AvgIntensity = rpeSum / float64(stats.TotalWorkouts)
	}

	a.store(key, stats)
	return stats, nil
}

// PersonalRecords scans the full history oldest-first, tracking the maximum
// single-set weight per exercise. Each new maximum records the one it
// superseded; intermediate non-maximums never appear. Results are sorted by
// record date descending, filtered to exerciseIDs when given (during the
// scan), and truncated to limit when positive.
func (a *Aggregator) PersonalRecords(ctx context.Context, exerciseIDs []string, limit int) ([]PersonalRecord, error) {
	key := fmt.Sprintf("prs|%s|%d", strings.Join(exerciseIDs, ","), limit)
	if v, ok := a.cached(key); ok {
		return v.([]PersonalRecord), nil
	}

	workouts, err := a.allWorkouts(ctx)
	if err != nil {
		return nil, err
	}

	var allowed map[string]bool
	if len(exerciseIDs) > 0 {
		allowed = make(map[string]bool, len(exerciseIDs))
		for _, id := range exerciseIDs {
			allowed[id] = true
		}
	}

	records := make(map[string]*PersonalRecord)
	for _, w := range workouts {
		for _, ex := range w.Exercises {
			if allowed != nil && !allowed[ex.ExerciseID] {
				continue
			}
			for _, set := range ex.Sets {
				if !set.Completed || set.Weight <= 0 {
					continue
				}
				cur := records[ex.ExerciseID]
				if cur == nil {
					records[ex.ExerciseID] = &PersonalRecord{
						ExerciseID: ex.ExerciseID,
						Title:      ex.Title,
						Weight:     set.Weight,
						Reps:       set.Reps,
						Date:       w.StartTime,
					}
					continue
				}
				if set.Weight > cur.Weight {
					records[ex.ExerciseID] = &PersonalRecord{
						ExerciseID: ex.ExerciseID,
						Title:      ex.Title,
						Weight:     set.Weight,
						Reps:       set.Reps,
						Date:       w.StartTime,
						Previous:   &PreviousRecord{Weight: cur.Weight, Date: cur.Date},
					}
				}
			}
		}
	}

	result := make([]PersonalRecord, 0, len(records))
	for _, r := range records {
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].ExerciseID < result[j].ExerciseID
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	a.store(key, result)
	return result, nil
}

// ExerciseProgress produces a chronological time series for one exercise,
// one point per session that touches it.
func (a *Aggregator) ExerciseProgress(ctx context.Context, exerciseID string, metric ProgressMetric, period Period) ([]ProgressPoint, error) {
	if !period.Valid() {
		return nil, fmt.Errorf("invalid period %q", period)
	}
	switch metric {
	case MetricWeight, MetricReps, MetricVolume:
	default:
		return nil, fmt.Errorf("invalid metric %q", metric)
	}

	key := fmt.Sprintf("progress|%s|%s|%s", exerciseID, metric, period)
	if v, ok := a.cached(key); ok {
		return v.([]ProgressPoint), nil
	}

	since, until := period.Window(a.now())
	workouts, err := a.src.ListWorkouts(ctx, since, until)
	if err != nil {
		return nil, fmt.Errorf("listing workouts: %w", err)
	}

	var points []ProgressPoint
	for _, w := range workouts {
		value, touched := sessionMetric(&w, exerciseID, metric)
		if !touched {
			continue
		}
		points = append(points, ProgressPoint{Date: w.StartTime, Value: value})
	}

	a.store(key, points)
	return points, nil
}

func sessionMetric(w *models.Workout, exerciseID string, metric ProgressMetric) (float64, bool) {
	var value float64
	var touched bool
	for _, ex := range w.Exercises {
		if ex.ExerciseID != exerciseID {
			continue
		}
		for _, set := range ex.Sets {
			if !set.Completed {
				continue
			}
			touched = true
			switch metric {
			case MetricWeight:
				if set.Weight > value {
					value = set.Weight
				}
			case MetricReps:
				if r := float64(set.Reps); r > value {
					value = r
				}
			case MetricVolume:
				value += set.Volume()
			}
		}
	}
	return value, touched
}

func (a *Aggregator) allWorkouts(ctx context.Context) ([]models.Workout, error) {
	since, until := PeriodAll.Window(a.now())
	workouts, err := a.src.ListWorkouts(ctx, since, until)
	if err != nil {
		return nil, fmt.Errorf("listing workouts: %w", err)
	}
	// PR chronology requires oldest-first ordering regardless of source.
	sort.Slice(workouts, func(i, j int) bool {
		return workouts[i].StartTime.Before(workouts[j].StartTime)
	})
	return workouts, nil
}
