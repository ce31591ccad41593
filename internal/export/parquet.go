// Package export flattens the workout history into columnar files for
// external analysis tooling.
package export

import (
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// setRow is one performed set, denormalized with its workout and exercise.
type setRow struct {
	WorkoutID    string  `parquet:"name=workout_id, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	WorkoutTitle string  `parquet:"name=workout_title, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	WorkoutType  string  `parquet:"name=workout_type, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	StartUTCISO  string  `parquet:"name=start_utc_iso, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	DurationSec  int64   `parquet:"name=duration_sec, type=INT64"`
	ExerciseID   string  `parquet:"name=exercise_id, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	ExerciseName string  `parquet:"name=exercise_name, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	SetNumber    int64   `parquet:"name=set_number, type=INT64"`
	Weight       float64 `parquet:"name=weight, type=DOUBLE"`
	Reps         int64   `parquet:"name=reps, type=INT64"`
	RPE          float64 `parquet:"name=rpe, type=DOUBLE"`
	SetType      string  `parquet:"name=set_type, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Completed    bool    `parquet:"name=completed, type=BOOLEAN"`
}

// MarshalSetHistory writes every set of every workout to a parquet byte
// buffer, one row per set, chronological by workout.
func MarshalSetHistory(workouts []models.Workout) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, new(setRow), 4)
	if err != nil {
		return nil, fmt.Errorf("creating parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, w := range workouts {
		for _, ex := range w.Exercises {
			for i, set := range ex.Sets {
				row := setRow{
					WorkoutID:    w.ID.String(),
					WorkoutTitle: w.Title,
					WorkoutType:  string(w.Type),
					StartUTCISO:  w.StartTime.UTC().Format(time.RFC3339),
					DurationSec:  w.DurationSec,
					ExerciseID:   ex.ExerciseID,
					ExerciseName: ex.Title,
					SetNumber:    int64(i + 1),
					Weight:       set.Weight,
					Reps:         int64(set.Reps),
					RPE:          set.RPE,
					SetType:      string(set.Type),
					Completed:    set.Completed,
				}
				if err := pw.Write(row); err != nil {
					_ = pw.WriteStop()
					return nil, fmt.Errorf("writing parquet row: %w", err)
				}
			}
		}
	}

	if err := pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("finalizing parquet: %w", err)
	}
	if err := fw.Close(); err != nil {
		return nil, fmt.Errorf("closing parquet buffer: %w", err)
	}
	return append([]byte(nil), fw.Bytes()...), nil
}
