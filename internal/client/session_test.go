package client

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"assessment_backend/internal/apperr"
	"assessment_backend/internal/model"
)

type fakeAPI struct {
	mu sync.Mutex

	start    *model.StartAttemptResult
	attempt  *model.LearnerAttempt
	getErr   error
	submitFn func(req model.SubmitAttemptRequest) (*model.LearnerAttempt, error)
	gate     chan struct{}

	submits []model.SubmitAttemptRequest
	drafts  []model.Answers
	gets    int
}

func (f *fakeAPI) StartAttempt(context.Context, uint) (*model.StartAttemptResult, error) {
	return f.start, nil
}

func (f *fakeAPI) GetAttempt(context.Context, string) (*model.LearnerAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.attempt, nil
}

func (f *fakeAPI) SaveDraft(_ context.Context, _ string, answers model.Answers) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drafts = append(f.drafts, answers)
	return nil
}

func (f *fakeAPI) SubmitAttempt(_ context.Context, _ string, req model.SubmitAttemptRequest) (*model.LearnerAttempt, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	f.submits = append(f.submits, req)
	fn := f.submitFn
	f.mu.Unlock()
	if fn != nil {
		return fn(req)
	}
	return finished("a-1", model.AttemptGraded), nil
}

func (f *fakeAPI) submitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.submits)
}

func finished(id string, status model.AttemptStatus) *model.LearnerAttempt {
	a := &model.LearnerAttempt{}
	a.ID = id
	a.Status = status
	return a
}

func snapshot() model.PublicSnapshot {
	return model.PublicSnapshot{
		AssessmentID: 1,
		Title:        "Quiz",
		Questions: []model.PublicQuestion{
			{ID: "q1", Type: model.QuestionSingleChoice, Points: 1, Options: []string{"Paris", "Lyon"}},
			{ID: "q2", Type: model.QuestionTrueFalse, Points: 1},
		},
	}
}

func startResult(deadline *time.Time) *model.StartAttemptResult {
	return &model.StartAttemptResult{
		AttemptID:  "a-1",
		StartTime:  base,
		Deadline:   deadline,
		Status:     model.AttemptInProgress,
		Assessment: snapshot(),
	}
}

func TestSession_RecordAnswerValidatesLocally(t *testing.T) {
	api := &fakeAPI{start: startResult(nil)}
	s := NewSession(api)

	if err := s.RecordAnswer("q1", "Paris"); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("before start: err = %v, want ErrInvalidState", err)
	}
	if err := s.Start(context.Background(), 1); err != nil {
		t.Fatalf("start: %v", err)
	}

	tests := []struct {
		name    string
		id      string
		value   any
		wantErr bool
	}{
		{"known option", "q1", "Paris", false},
		{"unknown option", "q1", "Berlin", true},
		{"unknown question", "q9", "Paris", true},
		{"bool", "q2", true, false},
		{"not a bool", "q2", 3, true},
		{"clear", "q2", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.RecordAnswer(tt.id, tt.value)
			if tt.wantErr != (err != nil) {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, apperr.ErrInvalidAnswerShape) {
				t.Fatalf("err = %v, want ErrInvalidAnswerShape", err)
			}
		})
	}

	got := s.Answers()
	if len(got) != 1 || string(got["q1"]) != `"Paris"` {
		t.Fatalf("answers = %v", got)
	}
	if api.submitCount() != 0 {
		t.Fatalf("recording answers must not hit the network")
	}
}

func TestSession_ConcurrentSubmitsShareOneRequest(t *testing.T) {
	api := &fakeAPI{start: startResult(nil), gate: make(chan struct{})}
	s := NewSession(api)
	if err := s.Start(context.Background(), 1); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.RecordAnswer("q1", "Paris"); err != nil {
		t.Fatalf("record: %v", err)
	}

	var wg sync.WaitGroup
	results := make([]*model.LearnerAttempt, 2)
	errs := make([]error, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = s.Submit(context.Background())
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], errs[1] = s.submit(context.Background(), true)
	}()
	time.Sleep(20 * time.Millisecond)
	close(api.gate)
	wg.Wait()

	for i := range errs {
		if errs[i] != nil || results[i] == nil || results[i].Status != model.AttemptGraded {
			t.Fatalf("submit %d: %v %+v", i, errs[i], results[i])
		}
	}
	if n := api.submitCount(); n != 1 {
		t.Fatalf("submit requests = %d, want 1", n)
	}

	again, err := s.Submit(context.Background())
	if err != nil || again != results[0] {
		t.Fatalf("later submit must return the stored result, got %v %v", again, err)
	}
	if n := api.submitCount(); n != 1 {
		t.Fatalf("later submit hit the network")
	}
	if err := s.RecordAnswer("q2", true); !errors.Is(err, apperr.ErrAlreadySubmitted) {
		t.Fatalf("record after submit: err = %v, want ErrAlreadySubmitted", err)
	}
}

func TestSession_TimerForcesSubmitOnce(t *testing.T) {
	clock := newTestClock(base)
	deadline := base.Add(time.Minute)
	api := &fakeAPI{start: startResult(&deadline)}
	forced := make(chan error, 2)
	s := NewSession(api,
		WithClock(clock.Now),
		WithTimerTick(time.Millisecond),
		WithForcedSubmitHandler(func(_ *model.LearnerAttempt, err error) { forced <- err }),
	)
	if err := s.Start(context.Background(), 1); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.RecordAnswer("q1", "Lyon"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if r, ok := s.Remaining(); !ok || r != time.Minute {
		t.Fatalf("remaining = %v %v", r, ok)
	}

	clock.Advance(2 * time.Minute)
	select {
	case err := <-forced:
		if err != nil {
			t.Fatalf("forced submit: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timer did not force a submit")
	}
	time.Sleep(20 * time.Millisecond)

	if n := api.submitCount(); n != 1 {
		t.Fatalf("submit requests = %d, want 1", n)
	}
	api.mu.Lock()
	req := api.submits[0]
	api.mu.Unlock()
	if !req.Forced || string(req.Answers["q1"]) != `"Lyon"` {
		t.Fatalf("forced request = %+v", req)
	}
	if !s.Status().Finished() {
		t.Fatalf("session still %s after forced submit", s.Status())
	}
	if _, err := s.Submit(context.Background()); err != nil {
		t.Fatalf("manual submit after forced: %v", err)
	}
	if n := api.submitCount(); n != 1 {
		t.Fatalf("manual submit after forced hit the network")
	}
}

func TestSession_ManualSubmitStopsTimer(t *testing.T) {
	clock := newTestClock(base)
	deadline := base.Add(time.Minute)
	api := &fakeAPI{start: startResult(&deadline)}
	forced := make(chan struct{}, 1)
	s := NewSession(api,
		WithClock(clock.Now),
		WithTimerTick(time.Millisecond),
		WithForcedSubmitHandler(func(*model.LearnerAttempt, error) { forced <- struct{}{} }),
	)
	if err := s.Start(context.Background(), 1); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := s.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	clock.Advance(2 * time.Minute)
	select {
	case <-forced:
		t.Fatalf("timer fired after the attempt was submitted")
	case <-time.After(30 * time.Millisecond):
	}
	if n := api.submitCount(); n != 1 {
		t.Fatalf("submit requests = %d, want 1", n)
	}
}

func TestSession_TimeoutIsReconciled(t *testing.T) {
	tests := []struct {
		name       string
		server     *model.LearnerAttempt
		wantErr    error
		wantStatus model.AttemptStatus
	}{
		{"server recorded the submit", finished("a-1", model.AttemptSubmitted), nil, model.AttemptSubmitted},
		{"server never saw it", finished("a-1", model.AttemptInProgress), apperr.ErrTimeout, model.AttemptInProgress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{
				start:   startResult(nil),
				attempt: tt.server,
				submitFn: func(model.SubmitAttemptRequest) (*model.LearnerAttempt, error) {
					return nil, apperr.ErrTimeout
				},
			}
			s := NewSession(api)
			if err := s.Start(context.Background(), 1); err != nil {
				t.Fatalf("start: %v", err)
			}
			res, err := s.Submit(context.Background())
			if !errors.Is(err, tt.wantErr) || (tt.wantErr == nil && err != nil) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && res == nil {
				t.Fatalf("reconciled submit must return the stored attempt")
			}
			if s.Status() != tt.wantStatus {
				t.Fatalf("status = %s, want %s", s.Status(), tt.wantStatus)
			}
			if api.gets != 1 {
				t.Fatalf("reconciliation fetches = %d, want 1", api.gets)
			}
		})
	}
}

func TestSession_AlreadySubmittedAdoptsServerResult(t *testing.T) {
	stored := finished("a-1", model.AttemptGraded)
	api := &fakeAPI{
		start: startResult(nil),
		submitFn: func(model.SubmitAttemptRequest) (*model.LearnerAttempt, error) {
			return stored, apperr.FromCode(409, apperr.CodeAlreadySubmitted, "")
		},
	}
	s := NewSession(api)
	if err := s.Start(context.Background(), 1); err != nil {
		t.Fatalf("start: %v", err)
	}
	res, err := s.Submit(context.Background())
	if err != nil || res != stored {
		t.Fatalf("submit = %v %v, want stored result", res, err)
	}
	if s.Status() != model.AttemptGraded {
		t.Fatalf("status = %s", s.Status())
	}
}

func TestSession_ResumeRestoresDraftOrResult(t *testing.T) {
	inProgress := finished("a-1", model.AttemptInProgress)
	inProgress.Assessment = snapshot()
	inProgress.DraftAnswers = model.Answers{"q1": []byte(`"Paris"`), "q9": []byte(`"gone"`)}

	api := &fakeAPI{attempt: inProgress}
	s := NewSession(api)
	if err := s.Resume(context.Background(), "a-1"); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if got := s.Answers(); len(got) != 1 || string(got["q1"]) != `"Paris"` {
		t.Fatalf("restored answers = %v", got)
	}
	if _, ok := s.Remaining(); ok {
		t.Fatalf("untimed attempt must have no countdown")
	}
	if err := s.SaveDraft(context.Background()); err != nil || len(api.drafts) != 1 {
		t.Fatalf("save draft: %v (%d)", err, len(api.drafts))
	}

	done := finished("a-1", model.AttemptGraded)
	done.Assessment = snapshot()
	api2 := &fakeAPI{attempt: done}
	s2 := NewSession(api2)
	if err := s2.Resume(context.Background(), "a-1"); err != nil {
		t.Fatalf("resume finished: %v", err)
	}
	if s2.Result() != done {
		t.Fatalf("finished attempt must become the result")
	}
	if _, err := s2.Submit(context.Background()); err != nil || api2.submitCount() != 0 {
		t.Fatalf("submit on a finished session must not hit the network")
	}
}

func TestSession_InvalidAnswersRejectedBeforeNetwork(t *testing.T) {
	api := &fakeAPI{start: startResult(nil)}
	s := NewSession(api)
	if err := s.Start(context.Background(), 1); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.mu.Lock()
	s.answers["q2"] = []byte(`"maybe"`)
	s.mu.Unlock()

	if _, err := s.Submit(context.Background()); !errors.Is(err, apperr.ErrInvalidAnswerShape) {
		t.Fatalf("err = %v, want ErrInvalidAnswerShape", err)
	}
	if api.submitCount() != 0 {
		t.Fatalf("invalid answers reached the network")
	}
}

func TestSession_GatewayTimeoutIsReconciled(t *testing.T) {
	var gets atomic.Int32
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/assessments/1/attempts":
			writeEnvelope(w, http.StatusCreated, "", "created", nil, startResult(nil))
		case r.Method == http.MethodPost && r.URL.Path == "/api/attempts/a-1/submit":
			// The proxy gave up while the server committed the submit.
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusGatewayTimeout)
			w.Write([]byte("<html>504 Gateway Time-out</html>"))
		case r.Method == http.MethodGet && r.URL.Path == "/api/attempts/a-1":
			gets.Add(1)
			writeEnvelope(w, http.StatusOK, "", "success", nil, finished("a-1", model.AttemptSubmitted))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}, time.Second)

	s := NewSession(api)
	if err := s.Start(context.Background(), 1); err != nil {
		t.Fatalf("start: %v", err)
	}
	res, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res == nil || res.Status != model.AttemptSubmitted {
		t.Fatalf("result = %+v, want the stored SUBMITTED attempt", res)
	}
	if s.Status() != model.AttemptSubmitted {
		t.Fatalf("status = %s, want SUBMITTED", s.Status())
	}
	if n := gets.Load(); n != 1 {
		t.Fatalf("reconciliation fetches = %d, want 1", n)
	}
}
