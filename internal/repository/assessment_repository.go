package repository

import (
	"assessment_backend/internal/apperr"
	"assessment_backend/internal/model"
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"
)

type AssessmentRepository struct {
	DB *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: db}
}

func orderedQuestions(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order asc, created_at asc")
}

func (r *AssessmentRepository) Create(ctx context.Context, a *model.Assessment) error {
	return r.DB.WithContext(ctx).Omit("Questions").Create(a).Error
}

func (r *AssessmentRepository) Update(ctx context.Context, a *model.Assessment) error {
	return r.DB.WithContext(ctx).Omit("Questions").Save(a).Error
}

// FindByID loads the assessment with its questions in authoring order.
func (r *AssessmentRepository) FindByID(ctx context.Context, id uint) (*model.Assessment, error) {
	var a model.Assessment
	err := r.DB.WithContext(ctx).Preload("Questions", orderedQuestions).First(&a, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r *AssessmentRepository) List(ctx context.Context, creatorID uint, includeArchived bool, page, limit int) ([]model.Assessment, int64, error) {
	var (
		list  []model.Assessment
		total int64
	)
	query := r.DB.WithContext(ctx).Model(&model.Assessment{})
	if creatorID > 0 {
		query = query.Where("creator_id = ?", creatorID)
	}
	if !includeArchived {
		query = query.Where("archived_at IS NULL")
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	err := query.Order("created_at desc").Offset((page - 1) * limit).Limit(limit).Find(&list).Error
	return list, total, err
}

func (r *AssessmentRepository) Archive(ctx context.Context, id uint, at time.Time) error {
	res := r.DB.WithContext(ctx).Model(&model.Assessment{}).
		Where("id = ? AND archived_at IS NULL", id).
		Update("archived_at", at)
	return res.Error
}

func (r *AssessmentRepository) CreateQuestion(ctx context.Context, q *model.AssessmentQuestion) error {
	return r.DB.WithContext(ctx).Create(q).Error
}

func (r *AssessmentRepository) FindQuestion(ctx context.Context, assessmentID uint, questionID string) (*model.AssessmentQuestion, error) {
	var q model.AssessmentQuestion
	err := r.DB.WithContext(ctx).
		Where("id = ? AND assessment_id = ?", questionID, assessmentID).
		First(&q).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &q, nil
}

func (r *AssessmentRepository) UpdateQuestion(ctx context.Context, q *model.AssessmentQuestion) error {
	return r.DB.WithContext(ctx).Save(q).Error
}

func (r *AssessmentRepository) DeleteQuestion(ctx context.Context, assessmentID uint, questionID string) error {
	res := r.DB.WithContext(ctx).
		Where("id = ? AND assessment_id = ?", questionID, assessmentID).
		Delete(&model.AssessmentQuestion{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// NextQuestionOrder returns one past the highest sort order in use.
func (r *AssessmentRepository) NextQuestionOrder(ctx context.Context, assessmentID uint) (int, error) {
	var highest sql.NullInt64
	err := r.DB.WithContext(ctx).Model(&model.AssessmentQuestion{}).
		Where("assessment_id = ?", assessmentID).
		Select("MAX(sort_order)").Row().Scan(&highest)
	if err != nil {
		return 0, err
	}
	if !highest.Valid {
		return 0, nil
	}
	return int(highest.Int64) + 1, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrNotFound
	}
	return err
}
