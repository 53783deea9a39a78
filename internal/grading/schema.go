package grading

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"assessment_backend/internal/model"
)

// Shape is the part of a question answer capture needs. It can be derived
// from a full Question or from the learner view, so server and client build
// the same schema.
type Shape struct {
	ID         string
	Type       model.QuestionType
	Options    []string
	LeftItems  []string
	RightItems []string
	BlankCount int
	MaxWords   *int
}

func ShapeOf(q model.Question) Shape {
	s := Shape{ID: q.ID, Type: q.EffectiveType()}
	switch d := q.Data.(type) {
	case model.ChoiceData:
		for _, o := range d.Options {
			s.Options = append(s.Options, o.Text)
		}
	case model.MatchingData:
		for _, p := range d.Pairs {
			s.LeftItems = append(s.LeftItems, p.LeftItem)
			s.RightItems = append(s.RightItems, p.RightItem)
		}
	case model.FillBlankData:
		s.BlankCount = len(model.ParseBlanks(d.Template))
	case model.EssayData:
		s.MaxWords = d.MaxWords
	}
	return s
}

func ShapeOfPublic(p model.PublicQuestion) Shape {
	s := Shape{
		ID:         p.ID,
		Type:       p.Type,
		Options:    p.Options,
		LeftItems:  p.LeftItems,
		RightItems: p.RightItems,
		BlankCount: p.BlankCount,
	}
	if p.Type == model.QuestionSingleChoice && p.AllowMultiple {
		s.Type = model.QuestionMultiChoice
	}
	if p.Essay != nil {
		s.MaxWords = p.Essay.MaxWords
	}
	return s
}

// Validator checks the shape of one non-blank answer.
type Validator func(raw json.RawMessage) error

// Schema holds one validator per question id. It is built once per
// assessment and never mutated afterwards.
type Schema struct {
	validators map[string]Validator
}

// ValidationErrors maps question id to what is wrong with its answer.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	ids := make([]string, 0, len(v))
	for id := range v {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id+": "+v[id])
	}
	return "invalid answers: " + strings.Join(parts, "; ")
}

// Fields exposes the per-question messages to the HTTP layer.
func (v ValidationErrors) Fields() map[string]string {
	return v
}

func BuildAnswerSchema(questions []model.Question) *Schema {
	shapes := make([]Shape, 0, len(questions))
	for _, q := range questions {
		shapes = append(shapes, ShapeOf(q))
	}
	return BuildSchema(shapes)
}

func BuildPublicAnswerSchema(questions []model.PublicQuestion) *Schema {
	shapes := make([]Shape, 0, len(questions))
	for _, q := range questions {
		shapes = append(shapes, ShapeOfPublic(q))
	}
	return BuildSchema(shapes)
}

func BuildSchema(shapes []Shape) *Schema {
	s := &Schema{validators: make(map[string]Validator, len(shapes))}
	for _, sh := range shapes {
		s.validators[sh.ID] = validatorFor(sh)
	}
	return s
}

func (s *Schema) Has(questionID string) bool {
	_, ok := s.validators[questionID]
	return ok
}

// ValidateOne checks a single answer. A blank answer is unanswered, not invalid.
func (s *Schema) ValidateOne(questionID string, raw json.RawMessage) error {
	v, ok := s.validators[questionID]
	if !ok {
		return fmt.Errorf("unknown question %q", questionID)
	}
	if IsBlank(raw) {
		return nil
	}
	return v(raw)
}

// Validate returns nil when every present answer has the right shape.
func (s *Schema) Validate(answers model.Answers) ValidationErrors {
	var errs ValidationErrors
	for id, raw := range answers {
		if err := s.ValidateOne(id, raw); err != nil {
			if errs == nil {
				errs = ValidationErrors{}
			}
			errs[id] = err.Error()
		}
	}
	return errs
}

// Sanitize keeps the well formed answers and reports the dropped ones.
func (s *Schema) Sanitize(answers model.Answers) (model.Answers, ValidationErrors) {
	errs := s.Validate(answers)
	clean := make(model.Answers, len(answers))
	for id, raw := range answers {
		if _, bad := errs[id]; bad || IsBlank(raw) {
			continue
		}
		clean[id] = raw
	}
	return clean, errs
}

func validatorFor(sh Shape) Validator {
	switch sh.Type {
	case model.QuestionSingleChoice:
		return func(raw json.RawMessage) error {
			v, err := requiredText(raw)
			if err != nil {
				return err
			}
			if !contains(sh.Options, v) {
				return fmt.Errorf("%q is not one of the options", v)
			}
			return nil
		}
	case model.QuestionMultiChoice:
		return func(raw json.RawMessage) error {
			list, err := DecodeStringList(raw)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				return errors.New("select at least one option")
			}
			seen := make(map[string]bool, len(list))
			for _, v := range list {
				if !contains(sh.Options, v) {
					return fmt.Errorf("%q is not one of the options", v)
				}
				if seen[v] {
					return fmt.Errorf("option %q selected twice", v)
				}
				seen[v] = true
			}
			return nil
		}
	case model.QuestionTrueFalse:
		return func(raw json.RawMessage) error {
			_, err := DecodeBool(raw)
			return err
		}
	case model.QuestionShortAnswer, model.QuestionCode:
		return func(raw json.RawMessage) error {
			_, err := requiredText(raw)
			return err
		}
	case model.QuestionEssay:
		return func(raw json.RawMessage) error {
			v, err := requiredText(raw)
			if err != nil {
				return err
			}
			if sh.MaxWords != nil && wordCount(v) > *sh.MaxWords {
				return fmt.Errorf("answer exceeds %d words", *sh.MaxWords)
			}
			return nil
		}
	case model.QuestionMatching:
		return func(raw json.RawMessage) error {
			m, err := DecodeStringMap(raw)
			if err != nil {
				return err
			}
			if len(m) == 0 {
				return errors.New("match at least one item")
			}
			for left, right := range m {
				if !contains(sh.LeftItems, left) {
					return fmt.Errorf("unknown item %q", left)
				}
				if !contains(sh.RightItems, right) {
					return fmt.Errorf("unknown match %q", right)
				}
			}
			return nil
		}
	case model.QuestionFillBlank:
		return func(raw json.RawMessage) error {
			list, err := DecodeStringList(raw)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				return errors.New("answer required")
			}
			if len(list) != sh.BlankCount {
				return fmt.Errorf("expected %d blanks, got %d", sh.BlankCount, len(list))
			}
			return nil
		}
	}
	return func(json.RawMessage) error {
		return fmt.Errorf("unsupported question type %q", sh.Type)
	}
}

func requiredText(raw json.RawMessage) (string, error) {
	v, err := DecodeText(raw)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(v) == "" {
		return "", errors.New("answer required")
	}
	return v, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
