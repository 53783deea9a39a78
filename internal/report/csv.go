package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"assessment_backend/internal/model"
)

var csvHeader = []string{
	"student email", "status", "score", "max score", "percentage",
	"result", "started", "completed", "time taken (minutes)", "feedback",
}

// WriteCSV writes one row per attempt. Fields holding a comma, quote or
// newline, or starting with white space, are quoted with inner quotes doubled.
func WriteCSV(w io.Writer, attempts []model.AssessmentAttempt) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i := range attempts {
		if err := cw.Write(csvRow(&attempts[i])); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(a *model.AssessmentAttempt) []string {
	email := ""
	if a.User != nil {
		email = a.User.Email
	}
	score, percentage := "", ""
	if a.Score != nil {
		score = formatNumber(*a.Score)
		percentage = formatNumber(round2(a.Percentage()))
	}
	completed, taken := "", ""
	if a.EndTime != nil {
		completed = formatTime(*a.EndTime)
	}
	if d, ok := a.Duration(); ok {
		taken = formatNumber(round2(d.Minutes()))
	}
	return []string{
		email,
		string(a.Status),
		score,
		formatNumber(a.MaxScore),
		percentage,
		Result(a),
		formatTime(a.StartTime),
		completed,
		taken,
		a.Feedback,
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
