package repository

import (
	"assessment_backend/internal/apperr"
	"assessment_backend/internal/model"
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func orderedRecords(db *gorm.DB) *gorm.DB {
	return db.Order("id asc")
}

// Create inserts a new IN_PROGRESS attempt. The unique active slot turns a
// concurrent second start into ErrAlreadyInProgress.
func (r *AttemptRepository) Create(ctx context.Context, a *model.AssessmentAttempt) error {
	err := r.DB.WithContext(ctx).Omit("User", "Records").Create(a).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("create attempt: %w", apperr.ErrAlreadyInProgress)
	}
	return err
}

func (r *AttemptRepository) FindByID(ctx context.Context, id string) (*model.AssessmentAttempt, error) {
	var a model.AssessmentAttempt
	err := r.DB.WithContext(ctx).
		Preload("User").
		Preload("Records", orderedRecords).
		Where("id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// FindActive returns the caller's IN_PROGRESS attempt, or nil when there is none.
func (r *AttemptRepository) FindActive(ctx context.Context, userID, assessmentID uint) (*model.AssessmentAttempt, error) {
	var a model.AssessmentAttempt
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND assessment_id = ? AND status = ?", userID, assessmentID, model.AttemptInProgress).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CountCompleted counts SUBMITTED and GRADED attempts, the ones max_attempts limits.
func (r *AttemptRepository) CountCompleted(ctx context.Context, userID, assessmentID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.AssessmentAttempt{}).
		Where("user_id = ? AND assessment_id = ? AND status IN ?", userID, assessmentID,
			[]model.AttemptStatus{model.AttemptSubmitted, model.AttemptGraded}).
		Count(&count).Error
	return count, err
}

func (r *AttemptRepository) ListByAssessment(ctx context.Context, assessmentID uint) ([]model.AssessmentAttempt, error) {
	var list []model.AssessmentAttempt
	err := r.DB.WithContext(ctx).
		Preload("User").
		Preload("Records", orderedRecords).
		Where("assessment_id = ?", assessmentID).
		Order("start_time desc").
		Find(&list).Error
	return list, err
}

func (r *AttemptRepository) ListByUser(ctx context.Context, userID uint) ([]model.AssessmentAttempt, error) {
	var list []model.AssessmentAttempt
	err := r.DB.WithContext(ctx).
		Preload("Records", orderedRecords).
		Where("user_id = ?", userID).
		Order("start_time desc").
		Find(&list).Error
	return list, err
}

// ListOverdue returns IN_PROGRESS attempts whose deadline is before cutoff.
func (r *AttemptRepository) ListOverdue(ctx context.Context, cutoff time.Time, limit int) ([]model.AssessmentAttempt, error) {
	var list []model.AssessmentAttempt
	err := r.DB.WithContext(ctx).
		Where("status = ? AND deadline IS NOT NULL AND deadline < ?", model.AttemptInProgress, cutoff).
		Order("deadline asc").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// SaveDraft stores answers of an IN_PROGRESS attempt owned by userID.
func (r *AttemptRepository) SaveDraft(ctx context.Context, attemptID string, userID uint, answers model.Answers) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&model.AssessmentAttempt{}).
		Where("id = ? AND user_id = ? AND status = ?", attemptID, userID, model.AttemptInProgress).
		Update("draft_answers", datatypes.NewJSONType(answers))
	return res.RowsAffected > 0, res.Error
}

// SubmitUpdate is everything a successful submit writes.
type SubmitUpdate struct {
	Status   model.AttemptStatus
	EndTime  time.Time
	Answers  model.Answers
	Score    *float64
	MaxScore float64
	IsPassed *bool
	Forced   bool
	GradedAt *time.Time
	Records  []model.GradeRecord
}

// CompleteSubmit moves an attempt out of IN_PROGRESS. The status condition
// makes the update a compare-and-swap: when another submit already won,
// nothing is written and ErrAlreadySubmitted is returned.
func (r *AttemptRepository) CompleteSubmit(ctx context.Context, attemptID string, u SubmitUpdate) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.AssessmentAttempt{}).
			Where("id = ? AND status = ?", attemptID, model.AttemptInProgress).
			Updates(map[string]interface{}{
				"status":      u.Status,
				"end_time":    u.EndTime,
				"answers":     datatypes.NewJSONType(u.Answers),
				"score":       u.Score,
				"max_score":   u.MaxScore,
				"is_passed":   u.IsPassed,
				"forced":      u.Forced,
				"graded_at":   u.GradedAt,
				"active_slot": nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.ErrAlreadySubmitted
		}
		if len(u.Records) == 0 {
			return nil
		}
		for i := range u.Records {
			u.Records[i].AttemptID = attemptID
		}
		return tx.Create(&u.Records).Error
	})
}

// GradeUpdate is a manual grading write. From is the status the attempt must
// still be in for the write to apply.
type GradeUpdate struct {
	From     model.AttemptStatus
	Score    *float64
	IsPassed *bool
	Feedback string
	GraderID uint
	GradedAt time.Time
	Records  []model.GradeRecord
	Audit    model.GradeAudit
}

func (r *AttemptRepository) ApplyGrade(ctx context.Context, attemptID string, u GradeUpdate) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.AssessmentAttempt{}).
			Where("id = ? AND status = ?", attemptID, u.From).
			Updates(map[string]interface{}{
				"status":    model.AttemptGraded,
				"score":     u.Score,
				"is_passed": u.IsPassed,
				"feedback":  u.Feedback,
				"grader_id": u.GraderID,
				"graded_at": u.GradedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("attempt is no longer %s: %w", u.From, apperr.ErrInvalidState)
		}
		for i := range u.Records {
			rec := &u.Records[i]
			err := tx.Model(&model.GradeRecord{}).
				Where("id = ? AND attempt_id = ?", rec.ID, attemptID).
				Updates(map[string]interface{}{
					"awarded_points": rec.AwardedPoints,
					"is_correct":     rec.IsCorrect,
					"grader":         rec.Grader,
					"grader_id":      rec.GraderID,
					"comment":        rec.Comment,
				}).Error
			if err != nil {
				return err
			}
		}
		u.Audit.AttemptID = attemptID
		return tx.Create(&u.Audit).Error
	})
}

func (r *AttemptRepository) ListAudits(ctx context.Context, attemptID string) ([]model.GradeAudit, error) {
	var list []model.GradeAudit
	err := r.DB.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("graded_at asc, id asc").
		Find(&list).Error
	return list, err
}
