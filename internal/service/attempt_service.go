package service

import (
	"assessment_backend/internal/apperr"
	"assessment_backend/internal/config"
	"assessment_backend/internal/grading"
	"assessment_backend/internal/model"
	"assessment_backend/internal/report"
	"assessment_backend/internal/repository"
	"assessment_backend/internal/util"
	"assessment_backend/pkg/logger"
	"assessment_backend/pkg/monitoring"
	"assessment_backend/pkg/tracing"
	"bytes"
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// AttemptService drives the attempt lifecycle IN_PROGRESS -> SUBMITTED -> GRADED.
// The database row is the only authority; every transition is a conditional
// update on the current status.
type AttemptService struct {
	AssessmentRepo *repository.AssessmentRepository
	AttemptRepo    *repository.AttemptRepository
	Guard          repository.SubmitGuard
	Storage        *StorageService

	mu       sync.RWMutex
	settings config.AssessmentConfig
	engine   *grading.Engine

	now func() time.Time
}

func NewAttemptService(
	assessmentRepo *repository.AssessmentRepository,
	attemptRepo *repository.AttemptRepository,
	guard repository.SubmitGuard,
	storage *StorageService,
	cfg config.AssessmentConfig,
) *AttemptService {
	s := &AttemptService{
		AssessmentRepo: assessmentRepo,
		AttemptRepo:    attemptRepo,
		Guard:          guard,
		Storage:        storage,
		now:            time.Now,
	}
	s.ApplyConfig(cfg)
	return s
}

// ApplyConfig swaps the runtime settings. Safe to call while serving.
func (s *AttemptService) ApplyConfig(cfg config.AssessmentConfig) {
	engine := grading.NewEngine(grading.WithPartialMultiChoice(cfg.PartialMultiChoice))
	s.mu.Lock()
	s.settings = cfg
	s.engine = engine
	s.mu.Unlock()
}

func (s *AttemptService) current() (config.AssessmentConfig, *grading.Engine) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, s.engine
}

func (s *AttemptService) rng(attemptID, salt string) *rand.Rand {
	cfg, _ := s.current()
	h := fnv.New64a()
	h.Write([]byte(attemptID))
	h.Write([]byte(salt))
	return rand.New(rand.NewSource(cfg.ShuffleSeed ^ int64(h.Sum64())))
}

// publicSnapshot builds the learner view. The shuffle of matching items is
// seeded by the attempt id so a resumed attempt sees the same layout.
func (s *AttemptService) publicSnapshot(attemptID string, snap model.AssessmentSnapshot) model.PublicSnapshot {
	rng := s.rng(attemptID, "items")
	questions := make([]model.PublicQuestion, 0, len(snap.Questions))
	for _, q := range snap.Questions {
		questions = append(questions, q.Public(rng))
	}
	return model.PublicSnapshot{
		AssessmentID:           snap.AssessmentID,
		Title:                  snap.Title,
		TimeLimitMinutes:       snap.TimeLimitMinutes,
		PassMarkPercentage:     snap.PassMarkPercentage,
		GradingType:            snap.GradingType,
		ShowResultsImmediately: snap.ShowResultsImmediately,
		Questions:              questions,
	}
}

// Start opens a new attempt for userID.
func (s *AttemptService) Start(ctx context.Context, userID, assessmentID uint) (res *model.StartAttemptResult, err error) {
	ctx, span := tracing.Start(ctx, "AttemptService.Start",
		attribute.Int64("user_id", int64(userID)), attribute.Int64("assessment_id", int64(assessmentID)))
	defer func() { tracing.End(span, err) }()

	a, err := s.AssessmentRepo.FindByID(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("assessment %d: %w", assessmentID, err)
	}
	if a.Archived() {
		return nil, fmt.Errorf("assessment %d: %w", assessmentID, apperr.ErrAssessmentArchived)
	}

	active, err := s.AttemptRepo.FindActive(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		if !active.Expired(s.now(), 0) {
			return nil, fmt.Errorf("attempt %s: %w", active.ID, apperr.ErrAlreadyInProgress)
		}
		if _, err := s.finish(ctx, active, active.DraftAnswers.Data(), true); err != nil && !errors.Is(err, apperr.ErrAlreadySubmitted) {
			return nil, err
		}
	}

	if a.MaxAttempts > 0 {
		used, err := s.AttemptRepo.CountCompleted(ctx, userID, assessmentID)
		if err != nil {
			return nil, err
		}
		if used >= int64(a.MaxAttempts) {
			return nil, fmt.Errorf("%d of %d used: %w", used, a.MaxAttempts, apperr.ErrAttemptsExhausted)
		}
	}

	questions, err := a.DomainQuestions()
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: assessment has no questions", apperr.ErrInvalidInput)
	}

	attemptID := model.GenerateUUID()
	if a.ShuffleQuestions {
		s.rng(attemptID, "questions").Shuffle(len(questions), func(i, j int) {
			questions[i], questions[j] = questions[j], questions[i]
		})
	}
	snap := model.NewSnapshot(a, questions)
	start := s.now()
	slot := model.ActiveSlotKey(userID, assessmentID)

	attempt := &model.AssessmentAttempt{
		AssessmentID:     assessmentID,
		UserID:           userID,
		StartTime:        start,
		TimeLimitMinutes: a.TimeLimitMinutes,
		Deadline:         model.DeadlineFor(start, a.TimeLimitMinutes),
		Status:           model.AttemptInProgress,
		Answers:          datatypes.NewJSONType(model.Answers{}),
		DraftAnswers:     datatypes.NewJSONType(model.Answers{}),
		MaxScore:         snap.MaxScore(),
		Snapshot:         datatypes.NewJSONType(snap),
		ActiveSlot:       &slot,
	}
	attempt.ID = attemptID
	if err := s.AttemptRepo.Create(ctx, attempt); err != nil {
		return nil, err
	}

	monitoring.AttemptsStarted.Inc()
	logger.Log.Info("attempt started",
		zap.String("attempt_id", attemptID),
		zap.Uint("user_id", userID),
		zap.Uint("assessment_id", assessmentID))

	return &model.StartAttemptResult{
		AttemptID:        attemptID,
		StartTime:        start,
		TimeLimitMinutes: a.TimeLimitMinutes,
		Deadline:         attempt.Deadline,
		Status:           attempt.Status,
		Assessment:       s.publicSnapshot(attemptID, snap),
	}, nil
}

// owned loads an attempt and checks it belongs to userID.
func (s *AttemptService) owned(ctx context.Context, userID uint, attemptID string) (*model.AssessmentAttempt, error) {
	attempt, err := s.AttemptRepo.FindByID(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("attempt %s: %w", attemptID, err)
	}
	if attempt.UserID != userID {
		return nil, fmt.Errorf("attempt %s: %w", attemptID, apperr.ErrNotFound)
	}
	return attempt, nil
}

// GetForLearner returns the caller's attempt with results hidden as configured.
func (s *AttemptService) GetForLearner(ctx context.Context, userID uint, attemptID string) (*model.LearnerAttempt, error) {
	attempt, err := s.owned(ctx, userID, attemptID)
	if err != nil {
		return nil, err
	}
	return s.learnerAttempt(attempt), nil
}

func (s *AttemptService) learnerAttempt(attempt *model.AssessmentAttempt) *model.LearnerAttempt {
	out := &model.LearnerAttempt{
		AssessmentAttempt: attempt.LearnerView(),
		Assessment:        s.publicSnapshot(attempt.ID, attempt.Snapshot.Data()),
	}
	if attempt.Status == model.AttemptInProgress {
		out.DraftAnswers = attempt.DraftAnswers.Data()
	}
	return out
}

// SaveDraft keeps the learner's current answers so the expiry sweep can
// submit them. Best effort: the submit payload is what counts.
func (s *AttemptService) SaveDraft(ctx context.Context, userID uint, attemptID string, answers model.Answers) error {
	attempt, err := s.owned(ctx, userID, attemptID)
	if err != nil {
		return err
	}
	if attempt.Status.Finished() {
		return fmt.Errorf("attempt %s: %w", attemptID, apperr.ErrAlreadySubmitted)
	}
	schema := grading.BuildAnswerSchema(attempt.Snapshot.Data().Questions)
	if errs := schema.Validate(answers); errs != nil {
		return fmt.Errorf("%w: %w", apperr.ErrInvalidAnswerShape, errs)
	}
	clean, _ := schema.Sanitize(answers)
	saved, err := s.AttemptRepo.SaveDraft(ctx, attemptID, userID, clean)
	if err != nil {
		return err
	}
	if !saved {
		return fmt.Errorf("attempt %s: %w", attemptID, apperr.ErrAlreadySubmitted)
	}
	return nil
}

// Submit finishes the caller's attempt. A second submit, or one that loses
// the race against another, returns ErrAlreadySubmitted together with the
// attempt as stored; nothing is written in that case.
func (s *AttemptService) Submit(ctx context.Context, userID uint, attemptID string, answers model.Answers, forced bool) (out *model.LearnerAttempt, err error) {
	ctx, span := tracing.Start(ctx, "AttemptService.Submit",
		attribute.String("attempt_id", attemptID), attribute.Bool("forced", forced))
	defer func() { tracing.End(span, err) }()

	if s.Guard != nil {
		release, ok, gerr := s.Guard.Acquire(ctx, attemptID)
		if gerr != nil {
			logger.Log.Warn("submit guard unavailable", zap.String("attempt_id", attemptID), zap.Error(gerr))
		} else if !ok {
			monitoring.SubmitConflicts.WithLabelValues("in_flight").Inc()
			return nil, fmt.Errorf("attempt %s: %w", attemptID, apperr.ErrSubmitInProgress)
		} else {
			defer release()
		}
	}

	attempt, err := s.owned(ctx, userID, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Status.Finished() {
		monitoring.SubmitConflicts.WithLabelValues("finished").Inc()
		return s.learnerAttempt(attempt), fmt.Errorf("attempt %s: %w", attemptID, apperr.ErrAlreadySubmitted)
	}

	cfg, _ := s.current()
	if !forced && attempt.Expired(s.now(), cfg.DeadlineGrace) {
		forced = true
	}
	finished, err := s.finish(ctx, attempt, answers, forced)
	if finished == nil {
		return nil, err
	}
	return s.learnerAttempt(finished), err
}

// finish validates, scores and stores a submit. It returns the stored attempt
// both on success and when another submit already won.
func (s *AttemptService) finish(ctx context.Context, attempt *model.AssessmentAttempt, answers model.Answers, forced bool) (*model.AssessmentAttempt, error) {
	_, engine := s.current()
	snap := attempt.Snapshot.Data()
	schema := grading.BuildAnswerSchema(snap.Questions)

	clean, dropped := schema.Sanitize(answers)
	if len(dropped) > 0 {
		if !forced {
			return nil, fmt.Errorf("%w: %w", apperr.ErrInvalidAnswerShape, dropped)
		}
		logger.Log.Info("forced submit dropped malformed answers",
			zap.String("attempt_id", attempt.ID), zap.Int("dropped", len(dropped)))
	}

	outcome := engine.GradeAll(snap.Questions, clean)
	now := s.now()
	status := model.AttemptSubmitted
	var gradedAt *time.Time
	if snap.FullyAutoGradable() {
		status = model.AttemptGraded
		gradedAt = &now
	}

	records := make([]model.GradeRecord, 0, len(outcome.Results))
	for _, r := range outcome.Results {
		grader := model.GraderAuto
		if r.NeedsManual {
			grader = model.GraderManual
		}
		records = append(records, model.GradeRecord{
			QuestionID:    r.QuestionID,
			AwardedPoints: r.Awarded,
			MaxPoints:     r.MaxPoints,
			IsCorrect:     r.IsCorrect,
			Grader:        grader,
		})
	}

	err := s.AttemptRepo.CompleteSubmit(ctx, attempt.ID, repository.SubmitUpdate{
		Status:   status,
		EndTime:  now,
		Answers:  clean,
		Score:    outcome.Score,
		MaxScore: outcome.MaxScore,
		IsPassed: grading.Passed(outcome.Score, outcome.MaxScore, snap.PassMarkPercentage),
		Forced:   forced,
		GradedAt: gradedAt,
		Records:  records,
	})
	if errors.Is(err, apperr.ErrAlreadySubmitted) {
		monitoring.SubmitConflicts.WithLabelValues("lost_race").Inc()
		stored, ferr := s.AttemptRepo.FindByID(ctx, attempt.ID)
		if ferr != nil {
			return nil, ferr
		}
		return stored, fmt.Errorf("attempt %s: %w", attempt.ID, apperr.ErrAlreadySubmitted)
	}
	if err != nil {
		return nil, err
	}

	monitoring.AttemptsSubmitted.WithLabelValues(strconv.FormatBool(forced), string(status)).Inc()
	logger.Log.Info("attempt submitted",
		zap.String("attempt_id", attempt.ID),
		zap.String("status", string(status)),
		zap.Bool("forced", forced),
		zap.Bool("pending_manual", outcome.Pending()))

	return s.AttemptRepo.FindByID(ctx, attempt.ID)
}

// Grade applies the first manual grade to a SUBMITTED attempt.
func (s *AttemptService) Grade(ctx context.Context, graderID, assessmentID uint, attemptID string, req model.GradeAttemptRequest) (*model.AssessmentAttempt, error) {
	return s.applyGrade(ctx, graderID, assessmentID, attemptID, req, model.AttemptSubmitted, model.GradeActionGrade, "")
}

// Regrade changes the result of a GRADED attempt. The previous values are
// kept in the audit trail.
func (s *AttemptService) Regrade(ctx context.Context, graderID, assessmentID uint, attemptID string, req model.RegradeAttemptRequest) (*model.AssessmentAttempt, error) {
	if req.Reason == "" {
		return nil, fmt.Errorf("%w: a regrade needs a reason", apperr.ErrInvalidInput)
	}
	return s.applyGrade(ctx, graderID, assessmentID, attemptID, req.GradeAttemptRequest, model.AttemptGraded, model.GradeActionRegrade, req.Reason)
}

func (s *AttemptService) applyGrade(
	ctx context.Context,
	graderID, assessmentID uint,
	attemptID string,
	req model.GradeAttemptRequest,
	from model.AttemptStatus,
	action model.GradeAction,
	reason string,
) (out *model.AssessmentAttempt, err error) {
	ctx, span := tracing.Start(ctx, "AttemptService."+string(action), attribute.String("attempt_id", attemptID))
	defer func() { tracing.End(span, err) }()

	attempt, err := s.AttemptRepo.FindByID(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("attempt %s: %w", attemptID, err)
	}
	if attempt.AssessmentID != assessmentID {
		return nil, fmt.Errorf("attempt %s: %w", attemptID, apperr.ErrNotFound)
	}
	if attempt.Status != from {
		return nil, fmt.Errorf("cannot %s a %s attempt: %w", action, attempt.Status, apperr.ErrInvalidState)
	}

	snap := attempt.Snapshot.Data()
	records := make(map[string]*model.GradeRecord, len(attempt.Records))
	for i := range attempt.Records {
		records[attempt.Records[i].QuestionID] = &attempt.Records[i]
	}

	changed := make([]model.GradeRecord, 0, len(req.Questions))
	for _, g := range req.Questions {
		q, ok := snap.Question(g.QuestionID)
		if !ok {
			return nil, fmt.Errorf("%w: question %s is not part of this attempt", apperr.ErrInvalidInput, g.QuestionID)
		}
		if g.AwardedPoints < 0 || g.AwardedPoints > q.Points {
			return nil, fmt.Errorf("question %s: %v not in [0, %v]: %w", q.ID, g.AwardedPoints, q.Points, apperr.ErrGradeOutOfRange)
		}
		rec, ok := records[q.ID]
		if !ok {
			return nil, fmt.Errorf("%w: no grade record for question %s", apperr.ErrInvalidInput, q.ID)
		}
		points := g.AwardedPoints
		correct := points >= q.Points
		gid := graderID
		rec.AwardedPoints = &points
		rec.IsCorrect = &correct
		rec.Grader = model.GraderManual
		rec.GraderID = &gid
		rec.Comment = g.Comment
		changed = append(changed, *rec)
	}

	var score *float64
	if req.Score != nil {
		if *req.Score < 0 || *req.Score > attempt.MaxScore {
			return nil, fmt.Errorf("score %v not in [0, %v]: %w", *req.Score, attempt.MaxScore, apperr.ErrGradeOutOfRange)
		}
		v := *req.Score
		score = &v
	} else {
		awarded := make([]*float64, 0, len(records))
		for _, rec := range records {
			awarded = append(awarded, rec.AwardedPoints)
		}
		score = grading.Total(awarded)
		if score == nil {
			return nil, fmt.Errorf("attempt %s has ungraded questions: %w", attemptID, apperr.ErrGradingIncomplete)
		}
	}

	feedback := attempt.Feedback
	if req.Feedback != nil {
		feedback = *req.Feedback
	}
	isPassed := grading.Passed(score, attempt.MaxScore, snap.PassMarkPercentage)
	now := s.now()

	err = s.AttemptRepo.ApplyGrade(ctx, attemptID, repository.GradeUpdate{
		From:     from,
		Score:    score,
		IsPassed: isPassed,
		Feedback: feedback,
		GraderID: graderID,
		GradedAt: now,
		Records:  changed,
		Audit: model.GradeAudit{
			GraderID:    graderID,
			Action:      action,
			OldScore:    attempt.Score,
			NewScore:    score,
			OldIsPassed: attempt.IsPassed,
			NewIsPassed: isPassed,
			OldFeedback: attempt.Feedback,
			NewFeedback: feedback,
			Reason:      reason,
			GradedAt:    now,
		},
	})
	if err != nil {
		return nil, err
	}

	monitoring.AttemptsGraded.WithLabelValues(string(action)).Inc()
	logger.Log.Info("attempt graded",
		zap.String("attempt_id", attemptID),
		zap.String("action", string(action)),
		zap.Uint("grader_id", graderID),
		zap.Float64("score", *score))

	return s.AttemptRepo.FindByID(ctx, attemptID)
}

func (s *AttemptService) Get(ctx context.Context, assessmentID uint, attemptID string) (*model.AssessmentAttempt, error) {
	attempt, err := s.AttemptRepo.FindByID(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("attempt %s: %w", attemptID, err)
	}
	if attempt.AssessmentID != assessmentID {
		return nil, fmt.Errorf("attempt %s: %w", attemptID, apperr.ErrNotFound)
	}
	return attempt, nil
}

func (s *AttemptService) ListForAssessment(ctx context.Context, assessmentID uint, filter report.Filter) ([]model.AssessmentAttempt, error) {
	list, err := s.AttemptRepo.ListByAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	return filter.Apply(list), nil
}

func (s *AttemptService) ListForUser(ctx context.Context, userID uint) ([]model.AssessmentAttempt, error) {
	list, err := s.AttemptRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i] = list[i].LearnerView()
	}
	return list, nil
}

func (s *AttemptService) Audits(ctx context.Context, assessmentID uint, attemptID string) ([]model.GradeAudit, error) {
	if _, err := s.Get(ctx, assessmentID, attemptID); err != nil {
		return nil, err
	}
	return s.AttemptRepo.ListAudits(ctx, attemptID)
}

func (s *AttemptService) Statistics(ctx context.Context, assessmentID uint, filter report.Filter) (report.Statistics, error) {
	list, err := s.ListForAssessment(ctx, assessmentID, filter)
	if err != nil {
		return report.Statistics{}, err
	}
	return report.Compute(list), nil
}

// ExportCSV writes the filtered attempts of an assessment as CSV.
func (s *AttemptService) ExportCSV(ctx context.Context, assessmentID uint, filter report.Filter, w io.Writer) (int, error) {
	list, err := s.ListForAssessment(ctx, assessmentID, filter)
	if err != nil {
		return 0, err
	}
	return len(list), report.WriteCSV(w, list)
}

// ArchiveExport renders the CSV export and stores it through the storage provider.
func (s *AttemptService) ArchiveExport(ctx context.Context, assessmentID uint, filter report.Filter) (*model.ExportArchive, error) {
	if s.Storage == nil {
		return nil, fmt.Errorf("export archive: storage not configured")
	}
	var buf bytes.Buffer
	rows, err := s.ExportCSV(ctx, assessmentID, filter, &buf)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("exports/assessment-%d/attempts-%s.csv", assessmentID, s.now().UTC().Format(util.ExportTimeFormat))
	url, err := s.Storage.Upload(ctx, key, &buf, int64(buf.Len()), util.MimeCSV)
	if err != nil {
		return nil, fmt.Errorf("export archive: %w", err)
	}
	logger.Log.Info("attempt export archived", zap.Uint("assessment_id", assessmentID), zap.String("key", key), zap.Int("rows", rows))
	return &model.ExportArchive{Key: key, URL: url, Rows: rows}, nil
}

// ExpireOverdue force-submits IN_PROGRESS attempts whose deadline plus grace
// has passed, using their saved drafts. It returns how many it closed.
func (s *AttemptService) ExpireOverdue(ctx context.Context) (int, error) {
	cfg, _ := s.current()
	limit := cfg.SweepBatchSize
	if limit <= 0 {
		limit = 100
	}
	overdue, err := s.AttemptRepo.ListOverdue(ctx, s.now().Add(-cfg.DeadlineGrace), limit)
	if err != nil {
		return 0, err
	}
	closed := 0
	for i := range overdue {
		attempt := &overdue[i]
		_, err := s.finish(ctx, attempt, attempt.DraftAnswers.Data(), true)
		switch {
		case err == nil:
			closed++
			monitoring.ExpiredAttempts.Inc()
		case errors.Is(err, apperr.ErrAlreadySubmitted):
		default:
			logger.Log.Error("expire attempt failed", zap.String("attempt_id", attempt.ID), zap.Error(err))
		}
	}
	if closed > 0 {
		logger.Log.Info("expired overdue attempts", zap.Int("count", closed))
	}
	return closed, nil
}
