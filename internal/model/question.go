package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type QuestionType string

const (
	QuestionSingleChoice QuestionType = "single_choice"
	QuestionMultiChoice  QuestionType = "multi_choice"
	QuestionTrueFalse    QuestionType = "true_false"
	QuestionShortAnswer  QuestionType = "short_answer"
	QuestionMatching     QuestionType = "matching"
	QuestionFillBlank    QuestionType = "fill_blank"
	QuestionEssay        QuestionType = "essay"
	QuestionCode         QuestionType = "code"
)

func (t QuestionType) Valid() bool {
	switch t {
	case QuestionSingleChoice, QuestionMultiChoice, QuestionTrueFalse, QuestionShortAnswer,
		QuestionMatching, QuestionFillBlank, QuestionEssay, QuestionCode:
		return true
	}
	return false
}

// AutoGradable reports whether answers of this type can be scored from the answer key.
func (t QuestionType) AutoGradable() bool {
	return t.Valid() && t != QuestionEssay && t != QuestionCode
}

var ErrInvalidQuestion = errors.New("invalid question")

var validate = validator.New()

// QuestionData is the type specific payload of a question. Exactly one
// implementation belongs to each QuestionType.
type QuestionData interface {
	questionData()
}

type ChoiceOption struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"is_correct"`
}

// ChoiceData backs both single_choice and multi_choice; AllowMultiple tells them apart.
type ChoiceData struct {
	Options       []ChoiceOption `json:"options" validate:"min=2,dive"`
	AllowMultiple bool           `json:"allow_multiple"`
}

type TrueFalseData struct {
	CorrectAnswer bool `json:"correct_answer"`
}

type ShortAnswerData struct {
	AcceptableAnswers []string `json:"acceptable_answers" validate:"min=1,dive,required"`
	CaseSensitive     bool     `json:"case_sensitive"`
}

type MatchingPair struct {
	LeftItem  string `json:"left_item" validate:"required"`
	RightItem string `json:"right_item" validate:"required"`
}

type MatchingData struct {
	Pairs              []MatchingPair `json:"pairs" validate:"min=1,dive"`
	ShuffleItems       bool           `json:"shuffle_items"`
	AllowPartialCredit bool           `json:"allow_partial_credit"`
}

// FillBlankData holds a template such as "Go was created at [Google] in [2007|2009]".
type FillBlankData struct {
	Template           string `json:"template" validate:"required"`
	CaseSensitive      bool   `json:"case_sensitive"`
	AllowPartialCredit bool   `json:"allow_partial_credit"`
}

type EssayData struct {
	MinWords        *int   `json:"min_words,omitempty" validate:"omitempty,gte=0"`
	MaxWords        *int   `json:"max_words,omitempty" validate:"omitempty,gte=1"`
	Rubric          string `json:"rubric,omitempty"`
	AllowFileUpload bool   `json:"allow_file_upload"`
}

type CodeData struct {
	Language                 string  `json:"language" validate:"required"`
	TemplateCode             string  `json:"template_code,omitempty"`
	MaxFileSizeMB            float64 `json:"max_file_size_mb" validate:"gte=0"`
	AllowMultipleFiles       bool    `json:"allow_multiple_files"`
	EnableSyntaxHighlighting bool    `json:"enable_syntax_highlighting"`
}

func (ChoiceData) questionData()      {}
func (TrueFalseData) questionData()   {}
func (ShortAnswerData) questionData() {}
func (MatchingData) questionData()    {}
func (FillBlankData) questionData()   {}
func (EssayData) questionData()       {}
func (CodeData) questionData()        {}

// Question is one item of an assessment. Data always holds the variant matching Type.
type Question struct {
	ID       string       `json:"id"`
	Text     string       `json:"text" validate:"required"`
	Type     QuestionType `json:"type"`
	Points   float64      `json:"points" validate:"gte=0"`
	Feedback string       `json:"feedback,omitempty"`
	Order    int          `json:"order"`
	Data     QuestionData `json:"-"`
}

type questionJSON struct {
	ID               string          `json:"id"`
	Text             string          `json:"text"`
	Type             QuestionType    `json:"type"`
	Points           float64         `json:"points"`
	Feedback         string          `json:"feedback,omitempty"`
	Order            int             `json:"order"`
	TypeSpecificData json.RawMessage `json:"type_specific_data"`
}

func (q Question) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(q.Data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(questionJSON{
		ID:               q.ID,
		Text:             q.Text,
		Type:             q.Type,
		Points:           q.Points,
		Feedback:         q.Feedback,
		Order:            q.Order,
		TypeSpecificData: data,
	})
}

func (q *Question) UnmarshalJSON(b []byte) error {
	var raw questionJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	data, err := DecodeQuestionData(raw.Type, raw.TypeSpecificData)
	if err != nil {
		return err
	}
	*q = Question{
		ID:       raw.ID,
		Text:     raw.Text,
		Type:     raw.Type,
		Points:   raw.Points,
		Feedback: raw.Feedback,
		Order:    raw.Order,
		Data:     data,
	}
	return nil
}

// DecodeQuestionData decodes the variant payload selected by t.
func DecodeQuestionData(t QuestionType, raw json.RawMessage) (QuestionData, error) {
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}
	var (
		data QuestionData
		err  error
	)
	switch t {
	case QuestionSingleChoice, QuestionMultiChoice:
		var d ChoiceData
		err = json.Unmarshal(raw, &d)
		if t == QuestionMultiChoice {
			d.AllowMultiple = true
		}
		data = d
	case QuestionTrueFalse:
		var d TrueFalseData
		err = json.Unmarshal(raw, &d)
		data = d
	case QuestionShortAnswer:
		var d ShortAnswerData
		err = json.Unmarshal(raw, &d)
		data = d
	case QuestionMatching:
		var d MatchingData
		err = json.Unmarshal(raw, &d)
		data = d
	case QuestionFillBlank:
		var d FillBlankData
		err = json.Unmarshal(raw, &d)
		data = d
	case QuestionEssay:
		var d EssayData
		err = json.Unmarshal(raw, &d)
		data = d
	case QuestionCode:
		var d CodeData
		err = json.Unmarshal(raw, &d)
		data = d
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidQuestion, t)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: type_specific_data: %v", ErrInvalidQuestion, err)
	}
	return data, nil
}

// EffectiveType folds single_choice with allow_multiple into multi_choice.
func (q Question) EffectiveType() QuestionType {
	if c, ok := q.Data.(ChoiceData); ok && c.AllowMultiple {
		return QuestionMultiChoice
	}
	return q.Type
}

func (q Question) AutoGradable() bool {
	return q.Type.AutoGradable()
}

// Validate checks the question invariants: known type, non-negative points and a
// variant payload that matches the type and is internally consistent.
func (q Question) Validate() error {
	if !q.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidQuestion, q.Type)
	}
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuestion, err)
	}
	if q.Data == nil {
		return fmt.Errorf("%w: missing type_specific_data for %s", ErrInvalidQuestion, q.Type)
	}
	if err := validate.Struct(q.Data); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuestion, err)
	}

	switch d := q.Data.(type) {
	case ChoiceData:
		if q.Type != QuestionSingleChoice && q.Type != QuestionMultiChoice {
			return variantMismatch(q.Type, d)
		}
		return validateChoice(q.EffectiveType(), d)
	case TrueFalseData:
		if q.Type != QuestionTrueFalse {
			return variantMismatch(q.Type, d)
		}
	case ShortAnswerData:
		if q.Type != QuestionShortAnswer {
			return variantMismatch(q.Type, d)
		}
	case MatchingData:
		if q.Type != QuestionMatching {
			return variantMismatch(q.Type, d)
		}
		seen := make(map[string]bool, len(d.Pairs))
		for _, p := range d.Pairs {
			if seen[p.LeftItem] {
				return fmt.Errorf("%w: duplicate matching item %q", ErrInvalidQuestion, p.LeftItem)
			}
			seen[p.LeftItem] = true
		}
	case FillBlankData:
		if q.Type != QuestionFillBlank {
			return variantMismatch(q.Type, d)
		}
		if len(ParseBlanks(d.Template)) == 0 {
			return fmt.Errorf("%w: fill_blank template has no [blank] markers", ErrInvalidQuestion)
		}
	case EssayData:
		if q.Type != QuestionEssay {
			return variantMismatch(q.Type, d)
		}
		if d.MinWords != nil && d.MaxWords != nil && *d.MinWords > *d.MaxWords {
			return fmt.Errorf("%w: min_words greater than max_words", ErrInvalidQuestion)
		}
	case CodeData:
		if q.Type != QuestionCode {
			return variantMismatch(q.Type, d)
		}
	default:
		return fmt.Errorf("%w: unsupported payload %T", ErrInvalidQuestion, q.Data)
	}
	return nil
}

func validateChoice(t QuestionType, d ChoiceData) error {
	correct := 0
	seen := make(map[string]bool, len(d.Options))
	for _, o := range d.Options {
		key := strings.TrimSpace(o.Text)
		if seen[key] {
			return fmt.Errorf("%w: duplicate option %q", ErrInvalidQuestion, o.Text)
		}
		seen[key] = true
		if o.IsCorrect {
			correct++
		}
	}
	if t == QuestionSingleChoice && correct != 1 {
		return fmt.Errorf("%w: single_choice needs exactly one correct option, got %d", ErrInvalidQuestion, correct)
	}
	if t == QuestionMultiChoice && correct == 0 {
		return fmt.Errorf("%w: multi_choice needs at least one correct option", ErrInvalidQuestion)
	}
	return nil
}

func variantMismatch(t QuestionType, d QuestionData) error {
	return fmt.Errorf("%w: %T does not belong to %s", ErrInvalidQuestion, d, t)
}

// CorrectOptions returns the texts of the options flagged correct, in order.
func (d ChoiceData) CorrectOptions() []string {
	out := make([]string, 0, len(d.Options))
	for _, o := range d.Options {
		if o.IsCorrect {
			out = append(out, o.Text)
		}
	}
	return out
}

// HasOption reports whether text names one of the options.
func (d ChoiceData) HasOption(text string) bool {
	for _, o := range d.Options {
		if o.Text == text {
			return true
		}
	}
	return false
}
