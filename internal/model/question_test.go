package model

import (
	"encoding/json"
	"errors"
	"math/rand"
	"testing"
	"time"
)

func TestQuestionValidate(t *testing.T) {
	minW, maxW := 10, 5
	tests := []struct {
		name string
		q    Question
		ok   bool
	}{
		{"single ok", Question{Text: "q", Type: QuestionSingleChoice, Points: 1,
			Data: ChoiceData{Options: []ChoiceOption{{Text: "a", IsCorrect: true}, {Text: "b"}}}}, true},
		{"single two correct", Question{Text: "q", Type: QuestionSingleChoice, Points: 1,
			Data: ChoiceData{Options: []ChoiceOption{{Text: "a", IsCorrect: true}, {Text: "b", IsCorrect: true}}}}, false},
		{"multi none correct", Question{Text: "q", Type: QuestionMultiChoice, Points: 1,
			Data: ChoiceData{AllowMultiple: true, Options: []ChoiceOption{{Text: "a"}, {Text: "b"}}}}, false},
		{"one option", Question{Text: "q", Type: QuestionSingleChoice, Points: 1,
			Data: ChoiceData{Options: []ChoiceOption{{Text: "a", IsCorrect: true}}}}, false},
		{"negative points", Question{Text: "q", Type: QuestionTrueFalse, Points: -1, Data: TrueFalseData{}}, false},
		{"variant mismatch", Question{Text: "q", Type: QuestionEssay, Points: 1, Data: TrueFalseData{}}, false},
		{"missing variant", Question{Text: "q", Type: QuestionTrueFalse, Points: 1}, false},
		{"unknown type", Question{Text: "q", Type: "ranking", Points: 1, Data: TrueFalseData{}}, false},
		{"short answer empty list", Question{Text: "q", Type: QuestionShortAnswer, Points: 1, Data: ShortAnswerData{}}, false},
		{"matching duplicate left", Question{Text: "q", Type: QuestionMatching, Points: 1,
			Data: MatchingData{Pairs: []MatchingPair{{LeftItem: "a", RightItem: "1"}, {LeftItem: "a", RightItem: "2"}}}}, false},
		{"fill blank without blank", Question{Text: "q", Type: QuestionFillBlank, Points: 1,
			Data: FillBlankData{Template: "no blanks here"}}, false},
		{"fill blank ok", Question{Text: "q", Type: QuestionFillBlank, Points: 1,
			Data: FillBlankData{Template: "x [y] z"}}, true},
		{"essay bounds inverted", Question{Text: "q", Type: QuestionEssay, Points: 1,
			Data: EssayData{MinWords: &minW, MaxWords: &maxW}}, false},
		{"code needs language", Question{Text: "q", Type: QuestionCode, Points: 1, Data: CodeData{}}, false},
		{"zero points allowed", Question{Text: "q", Type: QuestionCode, Points: 0, Data: CodeData{Language: "go"}}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.q.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok {
				if err == nil {
					t.Fatalf("expected error")
				}
				if !errors.Is(err, ErrInvalidQuestion) {
					t.Fatalf("error %v does not wrap ErrInvalidQuestion", err)
				}
			}
		})
	}
}

func TestQuestionJSONDecodesVariant(t *testing.T) {
	in := `{"id":"q1","text":"Match","type":"matching","points":3,
		"type_specific_data":{"pairs":[{"left_item":"a","right_item":"1"}],"allow_partial_credit":true}}`
	var q Question
	if err := json.Unmarshal([]byte(in), &q); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	d, ok := q.Data.(MatchingData)
	if !ok {
		t.Fatalf("expected MatchingData, got %T", q.Data)
	}
	if !d.AllowPartialCredit || len(d.Pairs) != 1 || d.Pairs[0].RightItem != "1" {
		t.Fatalf("unexpected payload %+v", d)
	}

	var multi Question
	if err := json.Unmarshal([]byte(`{"type":"multi_choice","type_specific_data":{"options":[]}}`), &multi); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if multi.EffectiveType() != QuestionMultiChoice {
		t.Fatalf("multi_choice must imply allow_multiple")
	}

	var bad Question
	if err := json.Unmarshal([]byte(`{"type":"ranking"}`), &bad); !errors.Is(err, ErrInvalidQuestion) {
		t.Fatalf("unknown type should fail with ErrInvalidQuestion, got %v", err)
	}
}

func TestParseBlanks(t *testing.T) {
	blanks := ParseBlanks("The [cat|kitten] sat on the [mat]. [ | ] is ignored")
	if len(blanks) != 2 {
		t.Fatalf("expected 2 blanks, got %d", len(blanks))
	}
	if got := blanks[0].Alternatives; len(got) != 2 || got[0] != "cat" || got[1] != "kitten" {
		t.Fatalf("unexpected alternatives %v", got)
	}
	if blanks[1].Index != 1 || blanks[1].Alternatives[0] != "mat" {
		t.Fatalf("unexpected second blank %+v", blanks[1])
	}
	if got := MaskTemplate("a [b|c] d"); got != "a ____ d" {
		t.Fatalf("MaskTemplate = %q", got)
	}
}

func TestPublicStripsAnswerKeys(t *testing.T) {
	q := Question{ID: "m", Text: "q", Type: QuestionMatching, Points: 2, Data: MatchingData{
		ShuffleItems: true,
		Pairs: []MatchingPair{
			{LeftItem: "a", RightItem: "1"}, {LeftItem: "b", RightItem: "2"}, {LeftItem: "c", RightItem: "3"},
		},
	}}
	p := q.Public(rand.New(rand.NewSource(1)))
	if len(p.LeftItems) != 3 || len(p.RightItems) != 3 {
		t.Fatalf("unexpected items %+v", p)
	}
	seen := map[string]bool{}
	for _, r := range p.RightItems {
		seen[r] = true
	}
	if !seen["1"] || !seen["2"] || !seen["3"] {
		t.Fatalf("shuffle lost items: %v", p.RightItems)
	}

	fill := Question{ID: "f", Text: "q", Type: QuestionFillBlank, Data: FillBlankData{Template: "x [secret] y"}}
	pf := fill.Public(nil)
	if pf.Template != "x ____ y" || pf.BlankCount != 1 {
		t.Fatalf("unexpected fill view %+v", pf)
	}
}

func TestDeadlineFor(t *testing.T) {
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	if DeadlineFor(start, nil) != nil {
		t.Fatalf("untimed attempt has no deadline")
	}
	one := 1
	d := DeadlineFor(start, &one)
	if d == nil || !d.Equal(start.Add(time.Minute)) {
		t.Fatalf("deadline = %v", d)
	}
	a := AssessmentAttempt{Status: AttemptInProgress, Deadline: d}
	if a.Expired(start.Add(59*time.Second), 0) {
		t.Fatalf("not expired before deadline")
	}
	if !a.Expired(start.Add(61*time.Second), 0) {
		t.Fatalf("expired after deadline")
	}
	if a.Expired(start.Add(61*time.Second), 5*time.Second) {
		t.Fatalf("grace must extend the deadline")
	}
}
