package model

import (
	"encoding/json"
	"time"
)

// StartAttemptResult is what a learner receives when an attempt opens.
type StartAttemptResult struct {
	AttemptID        string         `json:"attempt_id"`
	StartTime        time.Time      `json:"start_time"`
	TimeLimitMinutes *int           `json:"time_limit_minutes,omitempty"`
	Deadline         *time.Time     `json:"deadline,omitempty"`
	Status           AttemptStatus  `json:"status"`
	Assessment       PublicSnapshot `json:"assessment"`
	Answers          Answers        `json:"answers,omitempty"`
}

type SubmitAttemptRequest struct {
	Answers Answers `json:"answers"`
	Forced  bool    `json:"forced"`
}

type SaveDraftRequest struct {
	Answers Answers `json:"answers"`
}

type QuestionGrade struct {
	QuestionID    string  `json:"question_id" binding:"required"`
	AwardedPoints float64 `json:"awarded_points"`
	Comment       string  `json:"comment"`
}

// GradeAttemptRequest carries a manual grade. Score overrides the summed
// per-question points when set.
type GradeAttemptRequest struct {
	Score     *float64        `json:"score"`
	Feedback  *string         `json:"feedback"`
	Questions []QuestionGrade `json:"questions"`
}

type RegradeAttemptRequest struct {
	GradeAttemptRequest
	Reason string `json:"reason" binding:"required"`
}

type QuestionInput struct {
	Text             string          `json:"text" binding:"required"`
	Type             QuestionType    `json:"type" binding:"required"`
	Points           float64         `json:"points"`
	Feedback         string          `json:"feedback"`
	Order            *int            `json:"order"`
	TypeSpecificData json.RawMessage `json:"type_specific_data"`
}

// ToQuestion decodes the variant payload; validation is left to the caller.
func (in QuestionInput) ToQuestion(id string) (Question, error) {
	data, err := DecodeQuestionData(in.Type, in.TypeSpecificData)
	if err != nil {
		return Question{}, err
	}
	q := Question{ID: id, Text: in.Text, Type: in.Type, Points: in.Points, Feedback: in.Feedback, Data: data}
	if in.Order != nil {
		q.Order = *in.Order
	}
	return q, nil
}

type AssessmentInput struct {
	Title                  string      `json:"title" binding:"required"`
	Description            string      `json:"description"`
	TimeLimitMinutes       *int        `json:"time_limit_minutes"`
	MaxAttempts            int         `json:"max_attempts"`
	PassMarkPercentage     float64     `json:"pass_mark_percentage"`
	GradingType            GradingType `json:"grading_type"`
	ShowResultsImmediately bool        `json:"show_results_immediately"`
	ShuffleQuestions       bool        `json:"shuffle_questions"`
}

// AssessmentDetail is the instructor view, answer keys included.
type AssessmentDetail struct {
	Assessment
	Questions []Question `json:"questions"`
}

// LearnerAttempt is what GET /attempts/:id returns to the owner: the attempt
// with results hidden as configured, plus the learner view of its snapshot.
type LearnerAttempt struct {
	AssessmentAttempt
	Assessment   PublicSnapshot `json:"assessment"`
	DraftAnswers Answers        `json:"draft_answers,omitempty"`
}

// ExportArchive describes a CSV export written to storage.
type ExportArchive struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Rows int    `json:"rows"`
}
