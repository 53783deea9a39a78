package report

import (
	"testing"
	"time"

	"assessment_backend/internal/model"
)

func f64(v float64) *float64 { return &v }
func boolp(v bool) *bool      { return &v }

func attempt(status model.AttemptStatus, score *float64, passed *bool, minutes int) model.AssessmentAttempt {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := model.AssessmentAttempt{Status: status, StartTime: start, Score: score, IsPassed: passed, MaxScore: 10}
	if minutes > 0 {
		end := start.Add(time.Duration(minutes) * time.Minute)
		a.EndTime = &end
	}
	return a
}

func TestCompute_MixedAttempts(t *testing.T) {
	attempts := []model.AssessmentAttempt{
		attempt(model.AttemptGraded, f64(9), boolp(true), 10),
		attempt(model.AttemptGraded, f64(7), boolp(true), 20),
		attempt(model.AttemptGraded, f64(3), boolp(false), 30),
		attempt(model.AttemptInProgress, nil, nil, 0),
	}
	st := Compute(attempts)
	if st.TotalAttempts != 4 {
		t.Fatalf("total = %d", st.TotalAttempts)
	}
	if st.CompletionRate != 75 {
		t.Fatalf("completion rate = %v, want 75", st.CompletionRate)
	}
	if st.PassRate != 66.67 {
		t.Fatalf("pass rate = %v, want 66.67", st.PassRate)
	}
	if st.AverageScore != 6.33 {
		t.Fatalf("average score = %v, want 6.33", st.AverageScore)
	}
	if st.AverageTime != 20 {
		t.Fatalf("average time = %v, want 20", st.AverageTime)
	}
}

func TestCompute_EmptyAndPendingSets(t *testing.T) {
	st := Compute(nil)
	if st.AverageScore != 0 || st.PassRate != 0 || st.CompletionRate != 0 || st.AverageTime != 0 {
		t.Fatalf("empty set must be all zeros, got %+v", st)
	}

	st = Compute([]model.AssessmentAttempt{
		attempt(model.AttemptSubmitted, nil, nil, 5),
		attempt(model.AttemptSubmitted, nil, nil, 0),
	})
	if st.AverageScore != 0 || st.PassRate != 0 {
		t.Fatalf("no scored attempts must give zero averages, got %+v", st)
	}
	if st.CompletionRate != 100 {
		t.Fatalf("completion rate = %v", st.CompletionRate)
	}
}

func TestCompute_FullPrecisionMean(t *testing.T) {
	// Rounding each score first would give 0.44.
	attempts := []model.AssessmentAttempt{
		attempt(model.AttemptGraded, f64(1.0/3), boolp(false), 0),
		attempt(model.AttemptGraded, f64(1.0/3), boolp(false), 0),
		attempt(model.AttemptGraded, f64(2.0/3+0.005), boolp(false), 0),
	}
	if got := Compute(attempts).AverageScore; got != 0.45 {
		t.Fatalf("average = %v, want 0.45", got)
	}
}

func TestFilter(t *testing.T) {
	a := attempt(model.AttemptGraded, f64(9), boolp(true), 10)
	a.User = &model.User{Email: "Ada@example.com", Name: "Ada"}
	b := attempt(model.AttemptSubmitted, nil, nil, 10)
	b.User = &model.User{Email: "bob@example.com", Name: "Bob"}
	all := []model.AssessmentAttempt{a, b}

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"no filter", Filter{}, 2},
		{"status", Filter{Status: model.AttemptGraded}, 1},
		{"passed", Filter{Result: "passed"}, 1},
		{"pending", Filter{Result: "Pending"}, 1},
		{"failed", Filter{Result: "failed"}, 0},
		{"search email case folded", Filter{Search: "ada@"}, 1},
		{"search miss", Filter{Search: "carol"}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := len(tc.filter.Apply(all)); got != tc.want {
				t.Fatalf("got %d attempts, want %d", got, tc.want)
			}
		})
	}
}
