// Package report aggregates attempts into instructor facing statistics and
// exports.
package report

import (
	"math"
	"strings"

	"assessment_backend/internal/model"
)

// Statistics is recomputed on demand from the full attempt set. Rates are
// percentages in [0,100]; AverageTime is in minutes.
type Statistics struct {
	TotalAttempts  int     `json:"total_attempts"`
	AverageScore   float64 `json:"average_score"`
	PassRate       float64 `json:"pass_rate"`
	CompletionRate float64 `json:"completion_rate"`
	AverageTime    float64 `json:"average_time"`

	Completed  int `json:"completed"`
	WithScore  int `json:"with_score"`
	Passed     int `json:"passed"`
	InProgress int `json:"in_progress"`
}

// Compute aggregates at full precision and rounds only the returned values.
func Compute(attempts []model.AssessmentAttempt) Statistics {
	var (
		st          = Statistics{TotalAttempts: len(attempts)}
		scoreSum    float64
		durationSum float64
		timed       int
	)
	for i := range attempts {
		a := &attempts[i]
		switch a.Status {
		case model.AttemptSubmitted, model.AttemptGraded:
			st.Completed++
		case model.AttemptInProgress:
			st.InProgress++
		}
		if a.Score != nil {
			st.WithScore++
			scoreSum += *a.Score
			if a.IsPassed != nil && *a.IsPassed {
				st.Passed++
			}
		}
		if d, ok := a.Duration(); ok {
			timed++
			durationSum += d.Minutes()
		}
	}

	st.AverageScore = round2(ratio(scoreSum, st.WithScore))
	st.PassRate = round2(percent(st.Passed, st.WithScore))
	st.CompletionRate = round2(percent(st.Completed, st.TotalAttempts))
	st.AverageTime = round2(ratio(durationSum, timed))
	return st
}

func ratio(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return clamp(float64(part) / float64(whole) * 100)
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}

const (
	ResultPassed  = "passed"
	ResultFailed  = "failed"
	ResultPending = "pending"
)

// Result labels an attempt passed, failed or pending.
func Result(a *model.AssessmentAttempt) string {
	switch {
	case a.IsPassed == nil:
		return ResultPending
	case *a.IsPassed:
		return ResultPassed
	default:
		return ResultFailed
	}
}

// Filter selects attempts for listing, statistics and export. Zero fields
// match everything.
type Filter struct {
	Status model.AttemptStatus `form:"status"`
	Result string              `form:"result"`
	Search string              `form:"search"`
}

func (f Filter) Match(a *model.AssessmentAttempt) bool {
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.Result != "" && Result(a) != strings.ToLower(f.Result) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if a.User == nil {
			return false
		}
		if !strings.Contains(strings.ToLower(a.User.Email), q) && !strings.Contains(strings.ToLower(a.User.Name), q) {
			return false
		}
	}
	return true
}

func (f Filter) Apply(attempts []model.AssessmentAttempt) []model.AssessmentAttempt {
	out := make([]model.AssessmentAttempt, 0, len(attempts))
	for i := range attempts {
		if f.Match(&attempts[i]) {
			out = append(out, attempts[i])
		}
	}
	return out
}
