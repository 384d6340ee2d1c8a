package service

import (
	"errors"
	"testing"
	"time"

	"github.com/examgate/examgate/internal/apperr"
	"github.com/examgate/examgate/internal/dto"
	"github.com/examgate/examgate/internal/model"
)

type lifecycleFixture struct {
	entitlements *fakeEntitlementRepo
	tests        *fakeTestRepo
	attempts     *fakeAttemptRepo
	answers      *fakeAnswerRepo
	service      AttemptService
	test         *model.Test
}

func newLifecycleFixture() *lifecycleFixture {
	entitlements := newFakeEntitlementRepo()
	tests := newFakeTestRepo()
	attempts := newFakeAttemptRepo()
	answers := newFakeAnswerRepo(tests)
	return &lifecycleFixture{
		entitlements: entitlements,
		tests:        tests,
		attempts:     attempts,
		answers:      answers,
		service:      NewAttemptService(entitlements, tests, attempts, answers),
		test:         seedTest(tests),
	}
}

func (f *lifecycleFixture) entitle(email string) {
	seedEntitlement(f.entitlements, email, f.test.TestID, strPtr("R-42"))
}

func (f *lifecycleFixture) sync(t *testing.T, attemptID, questionID uint, selected string) {
	t.Helper()
	answer := model.Answer{AttemptID: attemptID, QuestionID: questionID, AnsweredAt: time.Now()}
	if selected != "" {
		answer.SelectedOption = strPtr(selected)
	}
	if err := f.answers.Upsert(&answer); err != nil {
		t.Fatalf("seeding answer: %v", err)
	}
}

func TestStart_CreatesSingleAttempt(t *testing.T) {
	f := newLifecycleFixture()
	f.entitle("Student@Example.COM")

	session, err := f.service.Start("Student@Example.COM", "GO-101")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.AttemptID == 0 {
		t.Fatal("expected a non-zero attempt id")
	}
	if session.Student.Email != "student@example.com" {
		t.Fatalf("expected normalized email, got %q", session.Student.Email)
	}
	if session.Student.RollNumber != "R-42" {
		t.Fatalf("expected roll number R-42, got %q", session.Student.RollNumber)
	}
	if session.Test.TotalQuestions != 2 || len(session.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d/%d", session.Test.TotalQuestions, len(session.Questions))
	}
	if session.Questions[0].QuestionNumber != 1 || session.Questions[1].QuestionNumber != 2 {
		t.Fatal("questions not ordered by question number")
	}
	wantEnd := session.Timing.StartTime.Add(30 * time.Minute)
	if !session.Timing.EndTime.Equal(wantEnd) {
		t.Fatalf("expected end = start + 30m, got %v", session.Timing.EndTime)
	}
	if len(f.attempts.attempts) != 1 {
		t.Fatalf("expected exactly one stored attempt, got %d", len(f.attempts.attempts))
	}
}

func TestStart_NotEntitled(t *testing.T) {
	f := newLifecycleFixture()

	_, err := f.service.Start("nobody@example.com", "go-101")
	if ae := apperr.From(err); ae.Code != apperr.CodeNotEntitled {
		t.Fatalf("expected NOT_ENTITLED, got %v", err)
	}
	if len(f.attempts.attempts) != 0 {
		t.Fatal("no attempt row should exist")
	}
}

func TestStart_UnknownTest(t *testing.T) {
	f := newLifecycleFixture()
	seedEntitlement(f.entitlements, "student@example.com", "ghost-test", nil)

	_, err := f.service.Start("student@example.com", "ghost-test")
	if ae := apperr.From(err); ae.Code != apperr.CodeUnknownTest {
		t.Fatalf("expected UNKNOWN_TEST, got %v", err)
	}
}

func TestStart_SecondStartReturnsExistingAttempt(t *testing.T) {
	f := newLifecycleFixture()
	f.entitle("student@example.com")

	session, err := f.service.Start("student@example.com", "go-101")
	if err != nil {
		t.Fatalf("first start failed: %v", err)
	}

	_, err = f.service.Start("student@example.com", "go-101")
	var already *AlreadyAttemptedError
	if !errors.As(err, &already) {
		t.Fatalf("expected AlreadyAttemptedError, got %v", err)
	}
	if already.Attempt.AttemptID != session.AttemptID {
		t.Fatalf("expected existing attempt %d, got %d", session.AttemptID, already.Attempt.AttemptID)
	}
	if len(f.attempts.attempts) != 1 {
		t.Fatalf("expected exactly one stored attempt, got %d", len(f.attempts.attempts))
	}
}

func TestStart_LosesInsertRace(t *testing.T) {
	f := newLifecycleFixture()
	f.entitle("student@example.com")

	// The winner's row exists but the fast-path existence check misses once,
	// so the service goes to insert and hits the unique index.
	session, err := f.service.Start("student@example.com", "go-101")
	if err != nil {
		t.Fatalf("seeding winner attempt: %v", err)
	}
	f.attempts.lookupMisses = 1

	_, err = f.service.Start("student@example.com", "go-101")
	var already *AlreadyAttemptedError
	if !errors.As(err, &already) {
		t.Fatalf("expected AlreadyAttemptedError after duplicate key, got %v", err)
	}
	if already.Attempt.AttemptID != session.AttemptID {
		t.Fatalf("loser must reference the winner's attempt %d, got %d", session.AttemptID, already.Attempt.AttemptID)
	}
	if len(f.attempts.attempts) != 1 {
		t.Fatalf("race must not create a second attempt, got %d", len(f.attempts.attempts))
	}
}

func TestSubmit_ScoresOnce(t *testing.T) {
	f := newLifecycleFixture()
	f.entitle("student@example.com")
	session, err := f.service.Start("student@example.com", "go-101")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	q1, q2 := f.test.Questions[0].ID, f.test.Questions[1].ID
	f.sync(t, session.AttemptID, q1, "A") // correct, 1 mark
	f.sync(t, session.AttemptID, q2, "D") // wrong, correct is C

	summary, err := f.service.Submit(session.AttemptID)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if summary.Score != 1 || summary.CorrectAnswers != 1 || summary.TotalQuestions != 2 {
		t.Fatalf("expected score=1 correct=1 total=2, got %+v", summary)
	}

	stored := f.attempts.attempts[session.AttemptID]
	if stored.Status != model.AttemptCompleted || stored.Score == nil || *stored.Score != 1 {
		t.Fatalf("attempt not finalized correctly: %+v", stored)
	}
	if f.attempts.finalizeCount != 1 {
		t.Fatalf("expected one finalize write, got %d", f.attempts.finalizeCount)
	}
}

func TestSubmit_Idempotent(t *testing.T) {
	f := newLifecycleFixture()
	f.entitle("student@example.com")
	session, _ := f.service.Start("student@example.com", "go-101")
	f.sync(t, session.AttemptID, f.test.Questions[0].ID, "A")

	first, err := f.service.Submit(session.AttemptID)
	if err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	second, err := f.service.Submit(session.AttemptID)
	if err != nil {
		t.Fatalf("retried submit failed: %v", err)
	}

	if *first != *second {
		t.Fatalf("retried submit must return the identical summary: %+v vs %+v", first, second)
	}
	if f.attempts.finalizeCount != 1 {
		t.Fatalf("expected exactly one finalize write, got %d", f.attempts.finalizeCount)
	}
}

func TestSubmit_AttemptNotFound(t *testing.T) {
	f := newLifecycleFixture()

	_, err := f.service.Submit(99)
	if ae := apperr.From(err); ae.Code != apperr.CodeAttemptNotFound {
		t.Fatalf("expected ATTEMPT_NOT_FOUND, got %v", err)
	}
}

func TestSubmit_ConcurrentLoserReturnsWinnersResult(t *testing.T) {
	f := newLifecycleFixture()
	f.entitle("student@example.com")
	session, _ := f.service.Start("student@example.com", "go-101")
	f.sync(t, session.AttemptID, f.test.Questions[0].ID, "A")

	// A concurrent submit finalizes between this caller's read and its
	// guarded write.
	winnerTime := time.Now().Add(-time.Second)
	f.attempts.finalizeHook = func(a *model.Attempt) {
		score := 1.0
		correct := 1
		a.Status = model.AttemptCompleted
		a.SubmittedAt = &winnerTime
		a.Score = &score
		a.CorrectAnswers = &correct
	}

	summary, err := f.service.Submit(session.AttemptID)
	if err != nil {
		t.Fatalf("losing submit must still succeed: %v", err)
	}
	if !summary.SubmittedAt.Equal(winnerTime) {
		t.Fatalf("loser must return the winner's stored result, got %+v", summary)
	}
	if summary.Score != 1 || summary.CorrectAnswers != 1 {
		t.Fatalf("unexpected stored result: %+v", summary)
	}
}

func TestSubmit_CaseInsensitiveScoring(t *testing.T) {
	f := newLifecycleFixture()
	f.entitle("student@example.com")
	session, _ := f.service.Start("student@example.com", "go-101")

	f.sync(t, session.AttemptID, f.test.Questions[0].ID, "a") // correct answer stored as "A"
	f.sync(t, session.AttemptID, f.test.Questions[1].ID, "c") // correct answer stored as "C"

	summary, err := f.service.Submit(session.AttemptID)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if summary.Score != 4 || summary.CorrectAnswers != 2 {
		t.Fatalf("lowercase selections must score, got %+v", summary)
	}
}

func TestSubmit_SkippedAnswerNeverScores(t *testing.T) {
	f := newLifecycleFixture()
	f.entitle("student@example.com")
	session, _ := f.service.Start("student@example.com", "go-101")

	f.sync(t, session.AttemptID, f.test.Questions[0].ID, "") // explicit skip
	f.sync(t, session.AttemptID, f.test.Questions[1].ID, "C")

	summary, err := f.service.Submit(session.AttemptID)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if summary.Score != 3 || summary.CorrectAnswers != 1 || summary.TotalQuestions != 2 {
		t.Fatalf("skip must count as incorrect but still in total, got %+v", summary)
	}
}

func TestSubmit_NoAnswersScoresZero(t *testing.T) {
	f := newLifecycleFixture()
	f.entitle("student@example.com")
	session, _ := f.service.Start("student@example.com", "go-101")

	summary, err := f.service.Submit(session.AttemptID)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	want := dto.ScoreSummaryDTO{AttemptID: session.AttemptID, SubmittedAt: summary.SubmittedAt}
	if *summary != want {
		t.Fatalf("expected all-zero summary, got %+v", summary)
	}
}
