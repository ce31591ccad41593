package mcp

import (
	"context"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/analytics"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolGetWorkoutStats = mcp.NewTool("get_workout_stats",
	mcp.WithDescription("Aggregate training statistics for a period: total workouts, duration, volume, average intensity (RPE), per-weekday frequency, and exercise distribution."),
	mcp.WithString("period", mcp.Description("Aggregation period. Defaults to 'month'."), mcp.Enum("week", "month", "year", "all")),
)

var toolGetPersonalRecords = mcp.NewTool("get_personal_records",
	mcp.WithDescription("Current personal records (max single-set weight) per exercise, each with the previous record it superseded."),
	mcp.WithString("exercises", mcp.Description("Comma-separated exercise ids to filter by. Defaults to all exercises.")),
	mcp.WithNumber("limit", mcp.Description("Maximum number of records, newest first. Defaults to all.")),
)

var toolGetExerciseProgress = mcp.NewTool("get_exercise_progress",
	mcp.WithDescription("Chronological progress series for one exercise: max weight, max reps, or total volume per session."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise id")),
	mcp.WithString("metric", mcp.Description("Scalar per session. Defaults to 'weight'."), mcp.Enum("weight", "reps", "volume")),
	mcp.WithString("period", mcp.Description("Aggregation period. Defaults to 'all'."), mcp.Enum("week", "month", "year", "all")),
)

var toolGetWorkouts = mcp.NewTool("get_workouts",
	mcp.WithDescription("Workout history with exercises and sets in a date range."),
	mcp.WithString("start", mcp.Description("Start date (RFC 3339 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
)

var toolListTemplates = mcp.NewTool("list_templates",
	mcp.WithDescription("All saved workout templates with their exercise configurations."),
)

// defaultTimeRange returns start/end defaulting to the last 30 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -30)
	}
	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// --- Tool handlers ---

func (h *handlers) getWorkoutStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	period := analytics.Period(req.GetString("period", "month"))

	stats, err := h.stats.WorkoutStats(ctx, period)
	if err != nil {
		h.log.Error("mcp get_workout_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPersonalRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var exerciseIDs []string
	if v := req.GetString("exercises", ""); v != "" {
		exerciseIDs = strings.Split(v, ",")
	}
	limit := req.GetInt("limit", 0)

	records, err := h.stats.PersonalRecords(ctx, exerciseIDs, limit)
	if err != nil {
		h.log.Error("mcp get_personal_records", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(records)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getExerciseProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	metric := analytics.ProgressMetric(req.GetString("metric", "weight"))
	period := analytics.Period(req.GetString("period", "all"))

	points, err := h.stats.ExerciseProgress(ctx, exercise, metric, period)
	if err != nil {
		h.log.Error("mcp get_exercise_progress", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(points)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	workouts, err := h.db.ListWorkouts(ctx, start, end)
	if err != nil {
		h.log.Error("mcp get_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	templates, err := h.db.ListTemplates(ctx)
	if err != nil {
		h.log.Error("mcp list_templates", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(templates)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
