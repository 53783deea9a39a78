package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type GradingType string

const (
	GradingAuto   GradingType = "AUTO"
	GradingManual GradingType = "MANUAL"
	GradingHybrid GradingType = "HYBRID"
)

// swagger:model Assessment
type Assessment struct {
	BaseModel
	Title                  string      `gorm:"size:255;not null" json:"title" validate:"required,max=255"`
	Description            string      `gorm:"type:text" json:"description"`
	CreatorID              uint        `gorm:"index" json:"creator_id"`
	TimeLimitMinutes       *int        `json:"time_limit_minutes,omitempty" validate:"omitempty,gte=1"`
	MaxAttempts            int         `gorm:"default:0" json:"max_attempts" validate:"gte=0"` // 0 = unlimited
	PassMarkPercentage     float64     `gorm:"default:0" json:"pass_mark_percentage" validate:"gte=0,lte=100"`
	GradingType            GradingType `gorm:"size:10;not null;default:'AUTO'" json:"grading_type" validate:"oneof=AUTO MANUAL HYBRID"`
	ShowResultsImmediately bool        `gorm:"not null" json:"show_results_immediately"`
	ShuffleQuestions       bool        `gorm:"not null" json:"shuffle_questions"`
	ArchivedAt             *time.Time  `json:"archived_at,omitempty"`

	Questions []AssessmentQuestion `gorm:"foreignKey:AssessmentID" json:"-"`
}

func (Assessment) TableName() string {
	return "assessments"
}

func (a *Assessment) Archived() bool {
	return a.ArchivedAt != nil
}

// ValidateSettings checks the assessment level fields.
func (a *Assessment) ValidateSettings() error {
	return validate.Struct(a)
}

// DomainQuestions decodes the stored rows in authoring order.
func (a *Assessment) DomainQuestions() ([]Question, error) {
	out := make([]Question, 0, len(a.Questions))
	for _, row := range a.Questions {
		q, err := row.ToQuestion()
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

// AssessmentQuestion is the persisted form of a Question.
// swagger:model AssessmentQuestion
type AssessmentQuestion struct {
	UUIDBase
	AssessmentID uint           `gorm:"index;not null" json:"assessment_id"`
	Text         string         `gorm:"type:text;not null" json:"text"`
	Type         QuestionType   `gorm:"size:20;not null" json:"type"`
	Points       float64        `gorm:"not null;default:0" json:"points"`
	Feedback     string         `gorm:"type:text" json:"feedback"`
	SortOrder    int            `gorm:"column:sort_order;default:0" json:"order"`
	Data         datatypes.JSON `json:"type_specific_data"`
}

func (AssessmentQuestion) TableName() string {
	return "assessment_questions"
}

func (r AssessmentQuestion) ToQuestion() (Question, error) {
	data, err := DecodeQuestionData(r.Type, []byte(r.Data))
	if err != nil {
		return Question{}, err
	}
	return Question{
		ID:       r.ID,
		Text:     r.Text,
		Type:     r.Type,
		Points:   r.Points,
		Feedback: r.Feedback,
		Order:    r.SortOrder,
		Data:     data,
	}, nil
}

// NewAssessmentQuestion converts a validated Question into its row.
func NewAssessmentQuestion(assessmentID uint, q Question) (AssessmentQuestion, error) {
	b, err := json.Marshal(q.Data)
	if err != nil {
		return AssessmentQuestion{}, err
	}
	row := AssessmentQuestion{
		AssessmentID: assessmentID,
		Text:         q.Text,
		Type:         q.Type,
		Points:       q.Points,
		Feedback:     q.Feedback,
		SortOrder:    q.Order,
		Data:         datatypes.JSON(b),
	}
	row.ID = q.ID
	return row, nil
}

// AssessmentSnapshot freezes an assessment at attempt start. Later edits to
// the assessment never reach an attempt through its snapshot.
type AssessmentSnapshot struct {
	AssessmentID           uint        `json:"assessment_id"`
	Title                  string      `json:"title"`
	TimeLimitMinutes       *int        `json:"time_limit_minutes,omitempty"`
	PassMarkPercentage     float64     `json:"pass_mark_percentage"`
	GradingType            GradingType `json:"grading_type"`
	ShowResultsImmediately bool        `json:"show_results_immediately"`
	ShuffleQuestions       bool        `json:"shuffle_questions"`
	Questions              []Question  `json:"questions"`
}

func NewSnapshot(a *Assessment, questions []Question) AssessmentSnapshot {
	return AssessmentSnapshot{
		AssessmentID:           a.ID,
		Title:                  a.Title,
		TimeLimitMinutes:       a.TimeLimitMinutes,
		PassMarkPercentage:     a.PassMarkPercentage,
		GradingType:            a.GradingType,
		ShowResultsImmediately: a.ShowResultsImmediately,
		ShuffleQuestions:       a.ShuffleQuestions,
		Questions:              questions,
	}
}

// MaxScore is the sum of question points.
func (s AssessmentSnapshot) MaxScore() float64 {
	var total float64
	for _, q := range s.Questions {
		total += q.Points
	}
	return total
}

// FullyAutoGradable reports whether submit can move straight to GRADED.
func (s AssessmentSnapshot) FullyAutoGradable() bool {
	if s.GradingType != GradingAuto {
		return false
	}
	for _, q := range s.Questions {
		if !q.AutoGradable() {
			return false
		}
	}
	return true
}

func (s AssessmentSnapshot) Question(id string) (Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// PublicSnapshot is the learner facing snapshot returned by start.
type PublicSnapshot struct {
	AssessmentID           uint             `json:"assessment_id"`
	Title                  string           `json:"title"`
	TimeLimitMinutes       *int             `json:"time_limit_minutes,omitempty"`
	PassMarkPercentage     float64          `json:"pass_mark_percentage"`
	GradingType            GradingType      `json:"grading_type"`
	ShowResultsImmediately bool             `json:"show_results_immediately"`
	Questions              []PublicQuestion `json:"questions"`
}
