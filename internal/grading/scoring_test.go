package grading

import (
	"encoding/json"
	"math"
	"testing"

	"assessment_backend/internal/model"
)

func choiceQuestion(points float64, multiple bool, correct ...string) model.Question {
	opts := []model.ChoiceOption{}
	for _, text := range []string{"A", "B", "C", "D"} {
		isCorrect := false
		for _, c := range correct {
			if c == text {
				isCorrect = true
			}
		}
		opts = append(opts, model.ChoiceOption{Text: text, IsCorrect: isCorrect})
	}
	t := model.QuestionSingleChoice
	if multiple {
		t = model.QuestionMultiChoice
	}
	return model.Question{ID: "q-choice", Text: "pick", Type: t, Points: points,
		Data: model.ChoiceData{Options: opts, AllowMultiple: multiple}}
}

func matchingQuestion(partial bool) model.Question {
	return model.Question{ID: "q-match", Text: "match", Type: model.QuestionMatching, Points: 6,
		Data: model.MatchingData{AllowPartialCredit: partial, Pairs: []model.MatchingPair{
			{LeftItem: "Go", RightItem: "Google"},
			{LeftItem: "Rust", RightItem: "Mozilla"},
			{LeftItem: "Swift", RightItem: "Apple"},
		}}}
}

func fillBlankQuestion(partial, caseSensitive bool) model.Question {
	return model.Question{ID: "q-fill", Text: "fill", Type: model.QuestionFillBlank, Points: 4,
		Data: model.FillBlankData{
			Template:           "Go was announced by [Google] in [2009|two thousand nine].",
			AllowPartialCredit: partial,
			CaseSensitive:      caseSensitive,
		}}
}

func raw(s string) json.RawMessage { return json.RawMessage(s) }

func awarded(t *testing.T, r Result) float64 {
	t.Helper()
	if r.Awarded == nil {
		t.Fatalf("expected awarded points, got pending")
	}
	return *r.Awarded
}

func TestEngine_AllOrNothingTypes(t *testing.T) {
	e := NewEngine()
	tf := model.Question{ID: "q-tf", Text: "tf", Type: model.QuestionTrueFalse, Points: 10,
		Data: model.TrueFalseData{CorrectAnswer: true}}
	short := model.Question{ID: "q-short", Text: "capital", Type: model.QuestionShortAnswer, Points: 2,
		Data: model.ShortAnswerData{AcceptableAnswers: []string{"Paris", "Paris, France"}}}
	shortCS := short
	shortCS.Data = model.ShortAnswerData{AcceptableAnswers: []string{"Paris"}, CaseSensitive: true}

	tests := []struct {
		name    string
		q       model.Question
		answer  string
		want    float64
		correct bool
	}{
		{"true_false string match", tf, `"true"`, 10, true},
		{"true_false bool match", tf, `true`, 10, true},
		{"true_false mismatch", tf, `"false"`, 0, false},
		{"true_false garbage", tf, `"yes"`, 0, false},
		{"single correct", choiceQuestion(3, false, "B"), `"B"`, 3, true},
		{"single wrong", choiceQuestion(3, false, "B"), `"C"`, 0, false},
		{"single wrong shape", choiceQuestion(3, false, "B"), `["B"]`, 0, false},
		{"short case folded", short, `"  paris "`, 2, true},
		{"short second alternative", short, `"paris, france"`, 2, true},
		{"short inner spacing differs", short, `"paris,   france"`, 0, false},
		{"short wrong", short, `"Lyon"`, 0, false},
		{"short case sensitive miss", shortCS, `"paris"`, 0, false},
		{"short case sensitive hit", shortCS, `"Paris"`, 2, true},
		{"multi exact set", choiceQuestion(4, true, "A", "D"), `["D","A"]`, 4, true},
		{"multi missing one", choiceQuestion(4, true, "A", "D"), `["A"]`, 0, false},
		{"multi extra one", choiceQuestion(4, true, "A", "D"), `["A","B","D"]`, 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := e.Grade(tc.q, raw(tc.answer))
			if got := awarded(t, r); got != tc.want {
				t.Fatalf("awarded = %v, want %v", got, tc.want)
			}
			if r.IsCorrect == nil || *r.IsCorrect != tc.correct {
				t.Fatalf("is_correct = %v, want %v", r.IsCorrect, tc.correct)
			}
			if r.NeedsManual {
				t.Fatalf("auto-gradable question flagged manual")
			}
		})
	}
}

func TestEngine_PartialMultiChoiceOption(t *testing.T) {
	q := choiceQuestion(4, true, "A", "B", "D")
	e := NewEngine(WithPartialMultiChoice(true))

	if got := awarded(t, e.Grade(q, raw(`["A","B"]`))); math.Abs(got-4.0*2/3) > 1e-9 {
		t.Fatalf("partial multi = %v, want %v", got, 4.0*2/3)
	}
	if got := awarded(t, e.Grade(q, raw(`["A","C"]`))); got != 0 {
		t.Fatalf("false positive must zero the question, got %v", got)
	}
	if got := awarded(t, NewEngine().Grade(q, raw(`["A","B"]`))); got != 0 {
		t.Fatalf("default policy is all-or-nothing, got %v", got)
	}
}

func TestEngine_MatchingPartialCreditIsMonotonic(t *testing.T) {
	e := NewEngine()
	answers := []string{
		`{"Go":"Apple","Rust":"Google","Swift":"Mozilla"}`,
		`{"Go":"Google"}`,
		`{"Go":"Google","Rust":"Mozilla","Swift":"Google"}`,
		`{"Go":"Google","Rust":"Mozilla","Swift":"Apple"}`,
	}
	prev := -1.0
	for i, a := range answers {
		got := awarded(t, e.Grade(matchingQuestion(true), raw(a)))
		if got < prev {
			t.Fatalf("answer %d: awarded %v dropped below %v", i, got, prev)
		}
		if want := 6.0 * float64(i) / 3; math.Abs(got-want) > 1e-9 {
			t.Fatalf("answer %d: awarded %v, want %v", i, got, want)
		}
		prev = got
	}

	if got := awarded(t, e.Grade(matchingQuestion(false), raw(answers[2]))); got != 0 {
		t.Fatalf("without partial credit two of three pairs must score 0, got %v", got)
	}
}

func TestEngine_FillBlank(t *testing.T) {
	e := NewEngine()
	tests := []struct {
		name          string
		partial       bool
		caseSensitive bool
		answer        string
		want          float64
	}{
		{"all correct", false, false, `["google","2009"]`, 4},
		{"alternative accepted", false, false, `["Google","Two Thousand Nine"]`, 4},
		{"one wrong no partial", false, false, `["Google","2010"]`, 0},
		{"one wrong partial", true, false, `["Google","2010"]`, 2},
		{"case sensitive miss", true, true, `["google","2009"]`, 2},
		{"short list partial", true, false, `["Google"]`, 2},
		{"outer space trimmed inner kept", true, false, `[" Google ","two  thousand nine"]`, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := awarded(t, e.Grade(fillBlankQuestion(tc.partial, tc.caseSensitive), raw(tc.answer)))
			if got != tc.want {
				t.Fatalf("awarded = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEngine_ManualTypesStayPending(t *testing.T) {
	e := NewEngine()
	essay := model.Question{ID: "q-essay", Text: "why", Type: model.QuestionEssay, Points: 5, Data: model.EssayData{}}
	code := model.Question{ID: "q-code", Text: "write", Type: model.QuestionCode, Points: 5, Data: model.CodeData{Language: "go"}}
	for _, q := range []model.Question{essay, code} {
		r := e.Grade(q, raw(`"anything"`))
		if r.Awarded != nil || !r.NeedsManual || r.MaxPoints != 5 {
			t.Fatalf("%s: expected pending manual result, got %+v", q.Type, r)
		}
	}
}

func TestEngine_GradeAllScenarios(t *testing.T) {
	e := NewEngine()
	tf := model.Question{ID: "tf", Text: "tf", Type: model.QuestionTrueFalse, Points: 10,
		Data: model.TrueFalseData{CorrectAnswer: true}}

	out := e.GradeAll([]model.Question{tf}, model.Answers{"tf": raw(`"true"`)})
	if out.Score == nil || *out.Score != 10 || out.MaxScore != 10 {
		t.Fatalf("single true_false: score=%v max=%v", out.Score, out.MaxScore)
	}
	if p := Passed(out.Score, out.MaxScore, 50); p == nil || !*p {
		t.Fatalf("expected pass")
	}

	tf5 := tf
	tf5.Points = 5
	essay := model.Question{ID: "essay", Text: "why", Type: model.QuestionEssay, Points: 5, Data: model.EssayData{}}
	out = e.GradeAll([]model.Question{essay, tf5}, model.Answers{"tf": raw(`true`), "essay": raw(`"because"`)})
	if !out.Pending() || out.MaxScore != 10 {
		t.Fatalf("hybrid: expected pending score with max 10, got %v / %v", out.Score, out.MaxScore)
	}
	if Passed(out.Score, out.MaxScore, 50) != nil {
		t.Fatalf("is_passed must stay nil while pending")
	}

	out = e.GradeAll([]model.Question{tf}, model.Answers{})
	if out.Score == nil || *out.Score != 0 {
		t.Fatalf("unanswered question must score zero, got %v", out.Score)
	}
}

func TestPassed_ZeroMaxScore(t *testing.T) {
	zero := 0.0
	if p := Passed(&zero, 0, 0); p == nil || !*p {
		t.Fatalf("zero max with zero pass mark passes")
	}
	if p := Passed(&zero, 0, 1); p == nil || *p {
		t.Fatalf("zero max with positive pass mark fails")
	}
	eight := 8.0
	if p := Passed(&eight, 10, 80); p == nil || !*p {
		t.Fatalf("80%% meets an 80%% pass mark")
	}
	if p := Passed(&eight, 10, 80.5); p == nil || *p {
		t.Fatalf("80%% misses an 80.5%% pass mark")
	}
}
