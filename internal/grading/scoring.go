package grading

import (
	"encoding/json"

	"assessment_backend/internal/model"
)

// Result is the outcome of grading one answer. Awarded is nil while the
// question waits for a human grader.
type Result struct {
	QuestionID  string
	Awarded     *float64
	MaxPoints   float64
	IsCorrect   *bool
	NeedsManual bool
}

// Strategy grades a single answer of one question type. raw is never blank
// when Grade is called; malformed answers score zero.
type Strategy interface {
	Grade(q model.Question, raw json.RawMessage) Result
}

type Option func(*config)

type config struct {
	partialMulti bool
}

// WithPartialMultiChoice awards multi_choice credit proportional to the
// correct options picked, provided no wrong option is picked.
func WithPartialMultiChoice(enabled bool) Option {
	return func(c *config) { c.partialMulti = enabled }
}

// Engine routes by question type to the matching Strategy.
type Engine struct {
	strategies map[model.QuestionType]Strategy
}

func NewEngine(opts ...Option) *Engine {
	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}
	return &Engine{
		strategies: map[model.QuestionType]Strategy{
			model.QuestionSingleChoice: singleChoiceStrategy{},
			model.QuestionMultiChoice:  multiChoiceStrategy{allowPartial: cfg.partialMulti},
			model.QuestionTrueFalse:    trueFalseStrategy{},
			model.QuestionShortAnswer:  shortAnswerStrategy{},
			model.QuestionMatching:     matchingStrategy{},
			model.QuestionFillBlank:    fillBlankStrategy{},
			model.QuestionEssay:        manualStrategy{},
			model.QuestionCode:         manualStrategy{},
		},
	}
}

// Grade scores one answer. A blank answer to an auto-gradable question is zero.
func (e *Engine) Grade(q model.Question, raw json.RawMessage) Result {
	s, ok := e.strategies[q.EffectiveType()]
	if !ok || !q.AutoGradable() {
		return manualStrategy{}.Grade(q, raw)
	}
	if IsBlank(raw) {
		return scored(q, 0, false)
	}
	r := s.Grade(q, raw)
	r.QuestionID = q.ID
	return r
}

// Outcome is the graded attempt: one result per question in question order.
type Outcome struct {
	Results  []Result
	Score    *float64
	MaxScore float64
}

func (o Outcome) Pending() bool {
	return o.Score == nil
}

// GradeAll scores every question. Questions missing from answers are unanswered.
func (e *Engine) GradeAll(questions []model.Question, answers model.Answers) Outcome {
	out := Outcome{Results: make([]Result, 0, len(questions))}
	awarded := make([]*float64, 0, len(questions))
	for _, q := range questions {
		r := e.Grade(q, answers[q.ID])
		out.Results = append(out.Results, r)
		out.MaxScore += q.Points
		awarded = append(awarded, r.Awarded)
	}
	out.Score = Total(awarded)
	return out
}

// Total sums awarded points, or returns nil when any of them is pending.
func Total(awarded []*float64) *float64 {
	var sum float64
	for _, a := range awarded {
		if a == nil {
			return nil
		}
		sum += *a
	}
	return &sum
}

// Passed derives is_passed. It is nil while the score is pending. A zero
// max score counts as 0% and passes only a zero pass mark.
func Passed(score *float64, maxScore, passMark float64) *bool {
	if score == nil {
		return nil
	}
	var ok bool
	if maxScore <= 0 {
		ok = passMark <= 0
	} else {
		ok = *score*100 >= passMark*maxScore
	}
	return &ok
}

func scored(q model.Question, points float64, correct bool) Result {
	return Result{QuestionID: q.ID, Awarded: &points, MaxPoints: q.Points, IsCorrect: &correct}
}

// proportional awards points*hit/total; all-or-nothing when partial is off.
func proportional(q model.Question, hit, total int, partial bool) Result {
	if total == 0 {
		return scored(q, 0, false)
	}
	if hit == total {
		return scored(q, q.Points, true)
	}
	if !partial {
		return scored(q, 0, false)
	}
	return scored(q, q.Points*float64(hit)/float64(total), false)
}

type singleChoiceStrategy struct{}

func (singleChoiceStrategy) Grade(q model.Question, raw json.RawMessage) Result {
	d, _ := q.Data.(model.ChoiceData)
	v, err := DecodeText(raw)
	if err != nil {
		return scored(q, 0, false)
	}
	for _, o := range d.Options {
		if o.IsCorrect && o.Text == v {
			return scored(q, q.Points, true)
		}
	}
	return scored(q, 0, false)
}

type multiChoiceStrategy struct{ allowPartial bool }

func (s multiChoiceStrategy) Grade(q model.Question, raw json.RawMessage) Result {
	d, _ := q.Data.(model.ChoiceData)
	picked, err := DecodeStringList(raw)
	if err != nil {
		return scored(q, 0, false)
	}
	correct := toSet(d.CorrectOptions())
	chosen := toSet(picked)
	if setEqual(correct, chosen) {
		return scored(q, q.Points, true)
	}
	if !s.allowPartial || len(correct) == 0 {
		return scored(q, 0, false)
	}
	hit := 0
	for c := range chosen {
		if !correct[c] {
			return scored(q, 0, false)
		}
		hit++
	}
	return scored(q, q.Points*float64(hit)/float64(len(correct)), false)
}

type trueFalseStrategy struct{}

func (trueFalseStrategy) Grade(q model.Question, raw json.RawMessage) Result {
	d, _ := q.Data.(model.TrueFalseData)
	v, err := DecodeBool(raw)
	if err != nil || v != d.CorrectAnswer {
		return scored(q, 0, false)
	}
	return scored(q, q.Points, true)
}

type shortAnswerStrategy struct{}

func (shortAnswerStrategy) Grade(q model.Question, raw json.RawMessage) Result {
	d, _ := q.Data.(model.ShortAnswerData)
	v, err := DecodeText(raw)
	if err != nil {
		return scored(q, 0, false)
	}
	for _, a := range d.AcceptableAnswers {
		if textEqual(v, a, d.CaseSensitive) {
			return scored(q, q.Points, true)
		}
	}
	return scored(q, 0, false)
}

type matchingStrategy struct{}

func (matchingStrategy) Grade(q model.Question, raw json.RawMessage) Result {
	d, _ := q.Data.(model.MatchingData)
	m, err := DecodeStringMap(raw)
	if err != nil {
		return scored(q, 0, false)
	}
	hit := 0
	for _, p := range d.Pairs {
		if got, ok := m[p.LeftItem]; ok && got == p.RightItem {
			hit++
		}
	}
	return proportional(q, hit, len(d.Pairs), d.AllowPartialCredit)
}

type fillBlankStrategy struct{}

func (fillBlankStrategy) Grade(q model.Question, raw json.RawMessage) Result {
	d, _ := q.Data.(model.FillBlankData)
	blanks := model.ParseBlanks(d.Template)
	given, err := DecodeStringList(raw)
	if err != nil {
		return scored(q, 0, false)
	}
	hit := 0
	for i, b := range blanks {
		if i >= len(given) {
			break
		}
		for _, alt := range b.Alternatives {
			if textEqual(given[i], alt, d.CaseSensitive) {
				hit++
				break
			}
		}
	}
	return proportional(q, hit, len(blanks), d.AllowPartialCredit)
}

type manualStrategy struct{}

func (manualStrategy) Grade(q model.Question, _ json.RawMessage) Result {
	return Result{QuestionID: q.ID, MaxPoints: q.Points, NeedsManual: true}
}

func toSet(list []string) map[string]bool {
	out := make(map[string]bool, len(list))
	for _, v := range list {
		out[v] = true
	}
	return out
}

func setEqual(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
