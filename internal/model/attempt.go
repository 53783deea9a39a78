package model

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "IN_PROGRESS"
	AttemptSubmitted  AttemptStatus = "SUBMITTED"
	AttemptGraded     AttemptStatus = "GRADED"
)

// Finished reports whether the attempt has left IN_PROGRESS.
func (s AttemptStatus) Finished() bool {
	return s == AttemptSubmitted || s == AttemptGraded
}

// Answers maps question id to the raw answer value. Its shape depends on the
// question type and is checked by the grading schema.
type Answers map[string]json.RawMessage

// swagger:model AssessmentAttempt
type AssessmentAttempt struct {
	UUIDBase
	AssessmentID     uint                                  `gorm:"index;not null" json:"assessment_id"`
	UserID           uint                                  `gorm:"index;not null" json:"user_id"`
	User             *User                                 `gorm:"foreignKey:UserID" json:"user,omitempty"`
	StartTime        time.Time                             `gorm:"not null" json:"start_time"`
	EndTime          *time.Time                            `json:"end_time,omitempty"`
	TimeLimitMinutes *int                                  `json:"time_limit_minutes,omitempty"`
	Deadline         *time.Time                            `gorm:"index" json:"deadline,omitempty"`
	Status           AttemptStatus                         `gorm:"size:20;index;not null" json:"status"`
	Answers          datatypes.JSONType[Answers]           `json:"answers"`
	DraftAnswers     datatypes.JSONType[Answers]           `json:"-"`
	Score            *float64                              `json:"score"`
	MaxScore         float64                               `gorm:"not null" json:"max_score"`
	IsPassed         *bool                                 `json:"is_passed"`
	Feedback         string                                `gorm:"type:text" json:"feedback,omitempty"`
	Forced           bool                                  `gorm:"not null" json:"forced"`
	GradedAt         *time.Time                            `json:"graded_at,omitempty"`
	GraderID         *uint                                 `json:"grader_id,omitempty"`
	Snapshot         datatypes.JSONType[AssessmentSnapshot] `json:"-"`
	ActiveSlot       *string                               `gorm:"size:64;uniqueIndex" json:"-"`

	Records []GradeRecord `gorm:"foreignKey:AttemptID" json:"records,omitempty"`
}

func (AssessmentAttempt) TableName() string {
	return "assessment_attempts"
}

// ActiveSlotKey is the unique key held by an IN_PROGRESS attempt.
func ActiveSlotKey(userID, assessmentID uint) string {
	return fmt.Sprintf("%d:%d", userID, assessmentID)
}

// DeadlineFor returns start + limit, or nil for untimed attempts.
func DeadlineFor(start time.Time, timeLimitMinutes *int) *time.Time {
	if timeLimitMinutes == nil || *timeLimitMinutes <= 0 {
		return nil
	}
	d := start.Add(time.Duration(*timeLimitMinutes) * time.Minute)
	return &d
}

// Expired reports whether the deadline plus grace lies before now.
func (a *AssessmentAttempt) Expired(now time.Time, grace time.Duration) bool {
	return a.Status == AttemptInProgress && a.Deadline != nil && now.After(a.Deadline.Add(grace))
}

// Percentage returns score/max*100, 0 when the score is pending or max is 0.
func (a *AssessmentAttempt) Percentage() float64 {
	if a.Score == nil || a.MaxScore <= 0 {
		return 0
	}
	return *a.Score / a.MaxScore * 100
}

// Duration is end minus start, false while either is missing.
func (a *AssessmentAttempt) Duration() (time.Duration, bool) {
	if a.EndTime == nil || a.StartTime.IsZero() {
		return 0, false
	}
	return a.EndTime.Sub(a.StartTime), true
}

// LearnerView hides results the learner may not see yet.
func (a AssessmentAttempt) LearnerView() AssessmentAttempt {
	a.User = nil
	snap := a.Snapshot.Data()
	if a.Status == AttemptGraded || snap.ShowResultsImmediately {
		return a
	}
	a.Score = nil
	a.IsPassed = nil
	a.Feedback = ""
	a.Records = nil
	return a
}
