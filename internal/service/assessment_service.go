package service

import (
	"assessment_backend/internal/apperr"
	"assessment_backend/internal/model"
	"assessment_backend/internal/repository"
	"assessment_backend/pkg/logger"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// AssessmentService is the instructor side: assessments and their questions.
type AssessmentService struct {
	Repo *repository.AssessmentRepository
	now  func() time.Time
}

func NewAssessmentService(repo *repository.AssessmentRepository) *AssessmentService {
	return &AssessmentService{Repo: repo, now: time.Now}
}

func applyAssessmentInput(a *model.Assessment, in model.AssessmentInput) error {
	a.Title = in.Title
	a.Description = in.Description
	a.TimeLimitMinutes = in.TimeLimitMinutes
	a.MaxAttempts = in.MaxAttempts
	a.PassMarkPercentage = in.PassMarkPercentage
	a.GradingType = in.GradingType
	if a.GradingType == "" {
		a.GradingType = model.GradingAuto
	}
	a.ShowResultsImmediately = in.ShowResultsImmediately
	a.ShuffleQuestions = in.ShuffleQuestions
	if err := a.ValidateSettings(); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	return nil
}

func (s *AssessmentService) Create(ctx context.Context, creatorID uint, in model.AssessmentInput) (*model.Assessment, error) {
	a := &model.Assessment{CreatorID: creatorID}
	if err := applyAssessmentInput(a, in); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, a); err != nil {
		return nil, err
	}
	logger.Log.Info("assessment created", zap.Uint("assessment_id", a.ID), zap.Uint("creator_id", creatorID))
	return a, nil
}

// Update changes settings. Attempts already started keep their snapshot.
func (s *AssessmentService) Update(ctx context.Context, id uint, in model.AssessmentInput) (*model.Assessment, error) {
	a, err := s.editable(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyAssessmentInput(a, in); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssessmentService) Get(ctx context.Context, id uint) (*model.AssessmentDetail, error) {
	a, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("assessment %d: %w", id, err)
	}
	questions, err := a.DomainQuestions()
	if err != nil {
		return nil, err
	}
	return &model.AssessmentDetail{Assessment: *a, Questions: questions}, nil
}

func (s *AssessmentService) List(ctx context.Context, creatorID uint, includeArchived bool, page, limit int) ([]model.Assessment, int64, error) {
	return s.Repo.List(ctx, creatorID, includeArchived, page, limit)
}

// Archive soft-deletes an assessment. Its attempts stay readable.
func (s *AssessmentService) Archive(ctx context.Context, id uint) error {
	a, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("assessment %d: %w", id, err)
	}
	if a.Archived() {
		return nil
	}
	if err := s.Repo.Archive(ctx, id, s.now()); err != nil {
		return err
	}
	logger.Log.Info("assessment archived", zap.Uint("assessment_id", id))
	return nil
}

func (s *AssessmentService) AddQuestion(ctx context.Context, assessmentID uint, in model.QuestionInput) (*model.Question, error) {
	if _, err := s.editable(ctx, assessmentID); err != nil {
		return nil, err
	}
	q, err := in.ToQuestion(model.GenerateUUID())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	if in.Order == nil {
		next, err := s.Repo.NextQuestionOrder(ctx, assessmentID)
		if err != nil {
			return nil, err
		}
		q.Order = next
	}
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	row, err := model.NewAssessmentQuestion(assessmentID, q)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.CreateQuestion(ctx, &row); err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *AssessmentService) UpdateQuestion(ctx context.Context, assessmentID uint, questionID string, in model.QuestionInput) (*model.Question, error) {
	if _, err := s.editable(ctx, assessmentID); err != nil {
		return nil, err
	}
	existing, err := s.Repo.FindQuestion(ctx, assessmentID, questionID)
	if err != nil {
		return nil, fmt.Errorf("question %s: %w", questionID, err)
	}
	q, err := in.ToQuestion(questionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	if in.Order == nil {
		q.Order = existing.SortOrder
	}
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	row, err := model.NewAssessmentQuestion(assessmentID, q)
	if err != nil {
		return nil, err
	}
	row.CreatedAt = existing.CreatedAt
	if err := s.Repo.UpdateQuestion(ctx, &row); err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *AssessmentService) RemoveQuestion(ctx context.Context, assessmentID uint, questionID string) error {
	if _, err := s.editable(ctx, assessmentID); err != nil {
		return err
	}
	if err := s.Repo.DeleteQuestion(ctx, assessmentID, questionID); err != nil {
		return fmt.Errorf("question %s: %w", questionID, err)
	}
	return nil
}

func (s *AssessmentService) editable(ctx context.Context, id uint) (*model.Assessment, error) {
	a, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("assessment %d: %w", id, err)
	}
	if a.Archived() {
		return nil, fmt.Errorf("assessment %d: %w", id, apperr.ErrAssessmentArchived)
	}
	return a, nil
}
