package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"assessment_backend/internal/model"
)

func TestWriteCSV(t *testing.T) {
	a := attempt(model.AttemptGraded, f64(7.5), boolp(true), 12)
	a.User = &model.User{Email: "ada@example.com"}
	a.Feedback = "Good, but \"cite\" sources\nnext time"
	pending := attempt(model.AttemptInProgress, nil, nil, 0)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, []model.AssessmentAttempt{a, pending}); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "student email,status,score,max score,percentage,result,started,completed,time taken (minutes),feedback\n") {
		t.Fatalf("unexpected header: %q", out)
	}
	if !strings.Contains(out, `"Good, but ""cite"" sources`+"\n"+`next time"`) {
		t.Fatalf("feedback not quoted: %q", out)
	}

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(rows))
	}
	want := []string{"ada@example.com", "GRADED", "7.5", "10", "75", "passed",
		"2026-03-01T09:00:00Z", "2026-03-01T09:12:00Z", "12", a.Feedback}
	for i, v := range want {
		if rows[1][i] != v {
			t.Fatalf("column %s = %q, want %q", csvHeader[i], rows[1][i], v)
		}
	}
	if rows[2][2] != "" || rows[2][5] != "pending" || rows[2][7] != "" || rows[2][8] != "" {
		t.Fatalf("pending row should leave score and completion blank: %v", rows[2])
	}
}

func TestWriteCSV_QuotesLeadingSpace(t *testing.T) {
	a := attempt(model.AttemptGraded, f64(5), boolp(false), 3)
	a.User = &model.User{Email: "ada@example.com"}
	a.Feedback = " see notes"

	var buf bytes.Buffer
	if err := WriteCSV(&buf, []model.AssessmentAttempt{a}); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if !strings.Contains(buf.String(), `," see notes"`) {
		t.Fatalf("leading space not quoted: %q", buf.String())
	}
}
