package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"assessment_backend/internal/apperr"
	"assessment_backend/internal/grading"
	"assessment_backend/internal/model"
	"assessment_backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	forcedSubmitAttempts = 3
	forcedSubmitBackoff  = 2 * time.Second
)

// Session holds one learner attempt on the client: the snapshot, the local
// answer map and the countdown. It is safe for concurrent use by the caller
// and the timer goroutine.
type Session struct {
	api API

	tick     time.Duration
	now      func() time.Time
	onForced func(*model.LearnerAttempt, error)
	backoff  time.Duration

	mu         sync.Mutex
	attemptID  string
	assessment model.PublicSnapshot
	schema     *grading.Schema
	answers    model.Answers
	status     model.AttemptStatus
	result     *model.LearnerAttempt
	deadline   *Deadline

	submits singleflight.Group
}

type SessionOption func(*Session)

// WithTimerTick sets the countdown refresh interval.
func WithTimerTick(d time.Duration) SessionOption {
	return func(s *Session) { s.tick = d }
}

// WithClock replaces the clock used by the countdown.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// WithForcedSubmitHandler is told the outcome of the submit the timer triggers.
func WithForcedSubmitHandler(fn func(*model.LearnerAttempt, error)) SessionOption {
	return func(s *Session) { s.onForced = fn }
}

// WithRetryBackoff sets the pause between retries of a failed forced submit.
func WithRetryBackoff(d time.Duration) SessionOption {
	return func(s *Session) { s.backoff = d }
}

func NewSession(api API, opts ...SessionOption) *Session {
	s := &Session{
		api:     api,
		tick:    defaultTick,
		now:     time.Now,
		backoff: forcedSubmitBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens a new attempt on the server.
func (s *Session) Start(ctx context.Context, assessmentID uint) error {
	res, err := s.api.StartAttempt(ctx, assessmentID)
	if err != nil {
		return err
	}
	s.open(res.AttemptID, res.Status, res.Assessment, res.Deadline, res.Answers)
	return nil
}

// Resume reattaches to an attempt, restoring the saved draft. A finished
// attempt is adopted as the result and gets no countdown.
func (s *Session) Resume(ctx context.Context, attemptID string) error {
	res, err := s.api.GetAttempt(ctx, attemptID)
	if err != nil {
		return err
	}
	if res.Status.Finished() {
		s.mu.Lock()
		s.attemptID = res.ID
		s.assessment = res.Assessment
		s.schema = grading.BuildPublicAnswerSchema(res.Assessment.Questions)
		s.answers = copyAnswers(res.Answers.Data())
		s.mu.Unlock()
		s.finish(res)
		return nil
	}
	s.open(res.ID, res.Status, res.Assessment, res.Deadline, res.DraftAnswers)
	return nil
}

func (s *Session) open(id string, status model.AttemptStatus, snap model.PublicSnapshot, deadline *time.Time, draft model.Answers) {
	schema := grading.BuildPublicAnswerSchema(snap.Questions)
	clean, _ := schema.Sanitize(draft)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deadline != nil {
		s.deadline.Stop()
		s.deadline = nil
	}
	s.attemptID = id
	s.status = status
	s.assessment = snap
	s.schema = schema
	s.answers = clean
	s.result = nil
	if deadline != nil {
		s.deadline = NewDeadline(*deadline, s.expire, WithTick(s.tick), WithNow(s.now))
	}
}

func (s *Session) AttemptID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attemptID
}

func (s *Session) Status() model.AttemptStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) Assessment() model.PublicSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assessment
}

// Result is the stored attempt once the session is finished.
func (s *Session) Result() *model.LearnerAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Remaining reports the countdown; ok is false for untimed attempts.
func (s *Session) Remaining() (time.Duration, bool) {
	s.mu.Lock()
	d := s.deadline
	s.mu.Unlock()
	if d == nil {
		return 0, false
	}
	return d.Remaining(), true
}

// Ticks exposes the countdown for display, nil when untimed.
func (s *Session) Ticks() <-chan time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deadline == nil {
		return nil
	}
	return s.deadline.C()
}

// Answers returns a copy of the local answer map.
func (s *Session) Answers() model.Answers {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyAnswers(s.answers)
}

// RecordAnswer changes the local answer map only. A nil or empty value
// clears the answer.
func (s *Session) RecordAnswer(questionID string, value any) error {
	raw, err := grading.EncodeAnswer(value)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidAnswerShape, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.activeLocked(); err != nil {
		return err
	}
	if err := s.schema.ValidateOne(questionID, raw); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrInvalidAnswerShape, grading.ValidationErrors{questionID: err.Error()})
	}
	if grading.IsBlank(raw) {
		delete(s.answers, questionID)
		return nil
	}
	s.answers[questionID] = raw
	return nil
}

// SaveDraft pushes the local answers to the server. Failures are harmless:
// only the submit payload counts.
func (s *Session) SaveDraft(ctx context.Context) error {
	s.mu.Lock()
	if err := s.activeLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	id, answers := s.attemptID, copyAnswers(s.answers)
	s.mu.Unlock()
	return s.api.SaveDraft(ctx, id, answers)
}

func (s *Session) activeLocked() error {
	switch {
	case s.attemptID == "":
		return fmt.Errorf("%w: no attempt started", apperr.ErrInvalidState)
	case s.result != nil || s.status.Finished():
		return apperr.ErrAlreadySubmitted
	}
	return nil
}

// Submit sends the local answers. Concurrent calls, including the forced
// submit of the countdown, share one request; calls after success return
// the stored result without touching the network.
func (s *Session) Submit(ctx context.Context) (*model.LearnerAttempt, error) {
	return s.submit(ctx, false)
}

func (s *Session) submit(ctx context.Context, forced bool) (*model.LearnerAttempt, error) {
	s.mu.Lock()
	if s.result != nil {
		res := s.result
		s.mu.Unlock()
		return res, nil
	}
	if s.attemptID == "" {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: no attempt started", apperr.ErrInvalidState)
	}
	id := s.attemptID
	answers := copyAnswers(s.answers)
	if !forced {
		if errs := s.schema.Validate(answers); errs != nil {
			s.mu.Unlock()
			return nil, fmt.Errorf("%w: %w", apperr.ErrInvalidAnswerShape, errs)
		}
	}
	s.mu.Unlock()

	v, err, _ := s.submits.Do(id, func() (interface{}, error) {
		if res := s.Result(); res != nil {
			return res, nil
		}
		return s.send(ctx, id, answers, forced)
	})
	res, _ := v.(*model.LearnerAttempt)
	return res, err
}

// send performs the submit and reconciles with the server when the outcome
// is unclear. Only an attempt the server reports as finished ends the session.
func (s *Session) send(ctx context.Context, id string, answers model.Answers, forced bool) (*model.LearnerAttempt, error) {
	res, err := s.api.SubmitAttempt(ctx, id, model.SubmitAttemptRequest{Answers: answers, Forced: forced})
	switch {
	case err == nil:
		s.finish(res)
		return res, nil
	case errors.Is(err, apperr.ErrAlreadySubmitted):
		if res == nil {
			return s.reconcile(ctx, id, err)
		}
		s.finish(res)
		return res, nil
	case errors.Is(err, apperr.ErrTimeout), errors.Is(err, apperr.ErrNetwork), errors.Is(err, apperr.ErrSubmitInProgress):
		return s.reconcile(ctx, id, err)
	}
	return nil, err
}

func (s *Session) reconcile(ctx context.Context, id string, cause error) (*model.LearnerAttempt, error) {
	res, err := s.api.GetAttempt(ctx, id)
	if err != nil {
		logger.Log.Warn("submit reconciliation failed", zap.String("attempt_id", id), zap.Error(err))
		return nil, cause
	}
	if !res.Status.Finished() {
		return nil, cause
	}
	s.finish(res)
	return res, nil
}

func (s *Session) finish(res *model.LearnerAttempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deadline != nil {
		s.deadline.Stop()
	}
	s.result = res
	s.status = res.Status
}

// expire runs on the timer goroutine when the countdown reaches zero.
func (s *Session) expire() {
	var (
		res *model.LearnerAttempt
		err error
	)
	for i := 0; i < forcedSubmitAttempts; i++ {
		if i > 0 {
			time.Sleep(s.backoff)
		}
		res, err = s.submit(context.Background(), true)
		if err == nil || !apperr.Retryable(err) {
			break
		}
	}
	if err != nil {
		logger.Log.Error("forced submit failed", zap.String("attempt_id", s.AttemptID()), zap.Error(err))
	}
	if s.onForced != nil {
		s.onForced(res, err)
	}
}

// Close stops the countdown without submitting.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deadline != nil {
		s.deadline.Stop()
	}
}

func copyAnswers(in model.Answers) model.Answers {
	out := make(model.Answers, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
