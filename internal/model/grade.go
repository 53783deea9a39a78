package model

import "time"

type GraderKind string

const (
	GraderAuto   GraderKind = "AUTO"
	GraderManual GraderKind = "MANUAL"
)

// GradeRecord is the per-question outcome. AwardedPoints nil means the
// question waits for a manual grade.
// swagger:model GradeRecord
type GradeRecord struct {
	BaseModel
	AttemptID     string     `gorm:"index;type:varchar(36);not null" json:"-"`
	QuestionID    string     `gorm:"type:varchar(36);not null" json:"question_id"`
	AwardedPoints *float64   `json:"awarded_points"`
	MaxPoints     float64    `gorm:"not null" json:"max_points"`
	IsCorrect     *bool      `json:"is_correct"`
	Grader        GraderKind `gorm:"size:10;not null" json:"grader"`
	GraderID      *uint      `json:"grader_id,omitempty"`
	Comment       string     `gorm:"type:text" json:"comment,omitempty"`
}

func (GradeRecord) TableName() string {
	return "attempt_grade_records"
}

func (r GradeRecord) Pending() bool {
	return r.AwardedPoints == nil
}

type GradeAction string

const (
	GradeActionGrade   GradeAction = "grade"
	GradeActionRegrade GradeAction = "regrade"
)

// GradeAudit keeps the before and after of every manual grading action.
// swagger:model GradeAudit
type GradeAudit struct {
	BaseModel
	AttemptID   string      `gorm:"index;type:varchar(36);not null" json:"attempt_id"`
	GraderID    uint        `gorm:"not null" json:"grader_id"`
	Action      GradeAction `gorm:"size:10;not null" json:"action"`
	OldScore    *float64    `json:"old_score"`
	NewScore    *float64    `json:"new_score"`
	OldIsPassed *bool       `json:"old_is_passed"`
	NewIsPassed *bool       `json:"new_is_passed"`
	OldFeedback string      `gorm:"type:text" json:"old_feedback"`
	NewFeedback string      `gorm:"type:text" json:"new_feedback"`
	Reason      string      `gorm:"type:text" json:"reason,omitempty"`
	GradedAt    time.Time   `gorm:"not null" json:"graded_at"`
}

func (GradeAudit) TableName() string {
	return "attempt_grade_audits"
}
