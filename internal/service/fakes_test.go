package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/examgate/examgate/internal/model"
	"github.com/examgate/examgate/internal/repository"
	"gorm.io/gorm"
)

// In-memory fakes satisfying the repository interfaces. They mimic the
// storage-layer contracts the services rely on: unique-key violations return
// gorm.ErrDuplicatedKey, missing rows return gorm.ErrRecordNotFound, and
// FinalizeScore enforces the in_progress status guard.

var (
	_ repository.EntitlementRepository = (*fakeEntitlementRepo)(nil)
	_ repository.TestRepository        = (*fakeTestRepo)(nil)
	_ repository.QuestionRepository    = (*fakeQuestionRepo)(nil)
	_ repository.AttemptRepository     = (*fakeAttemptRepo)(nil)
	_ repository.AnswerRepository      = (*fakeAnswerRepo)(nil)
)

func pairKey(email, testID string) string {
	return strings.ToLower(email) + "|" + strings.ToLower(testID)
}

type fakeEntitlementRepo struct {
	entitlements map[string]*model.Entitlement
	nextID       uint
}

func newFakeEntitlementRepo() *fakeEntitlementRepo {
	return &fakeEntitlementRepo{entitlements: map[string]*model.Entitlement{}}
}

func (f *fakeEntitlementRepo) Create(e *model.Entitlement) error {
	e.Email = strings.ToLower(e.Email)
	e.TestID = strings.ToLower(e.TestID)
	k := pairKey(e.Email, e.TestID)
	if _, ok := f.entitlements[k]; ok {
		return gorm.ErrDuplicatedKey
	}
	f.nextID++
	e.ID = f.nextID
	cp := *e
	f.entitlements[k] = &cp
	return nil
}

func (f *fakeEntitlementRepo) FindByEmailAndTest(email, testID string) (*model.Entitlement, error) {
	e, ok := f.entitlements[pairKey(email, testID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *e
	return &cp, nil
}

type fakeTestRepo struct {
	tests  map[string]*model.Test
	nextID uint
}

func newFakeTestRepo() *fakeTestRepo {
	return &fakeTestRepo{tests: map[string]*model.Test{}}
}

func (f *fakeTestRepo) Create(t *model.Test) error {
	if _, ok := f.tests[t.TestID]; ok {
		return gorm.ErrDuplicatedKey
	}
	f.nextID++
	t.ID = f.nextID
	for i := range t.Questions {
		f.nextID++
		t.Questions[i].ID = f.nextID
		t.Questions[i].TestID = t.ID
	}
	cp := *t
	f.tests[t.TestID] = &cp
	return nil
}

func (f *fakeTestRepo) FindByTestID(testID string) (*model.Test, error) {
	t, ok := f.tests[strings.ToLower(testID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	cp.Questions = nil
	return &cp, nil
}

func (f *fakeTestRepo) FindByTestIDWithQuestions(testID string) (*model.Test, error) {
	t, ok := f.tests[strings.ToLower(testID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	cp.Questions = append([]model.Question(nil), t.Questions...)
	sort.Slice(cp.Questions, func(i, j int) bool {
		return cp.Questions[i].QuestionNumber < cp.Questions[j].QuestionNumber
	})
	return &cp, nil
}

func (f *fakeTestRepo) FindAllWithQuestionCount() ([]repository.TestWithQuestionCount, error) {
	var out []repository.TestWithQuestionCount
	for _, t := range f.tests {
		out = append(out, repository.TestWithQuestionCount{Test: *t, QuestionCount: len(t.Questions)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Test.ID < out[j].Test.ID })
	return out, nil
}

func (f *fakeTestRepo) questionByID(id uint) (*model.Question, bool) {
	for _, t := range f.tests {
		for i := range t.Questions {
			if t.Questions[i].ID == id {
				q := t.Questions[i]
				return &q, true
			}
		}
	}
	return nil, false
}

type fakeQuestionRepo struct {
	tests *fakeTestRepo
}

func (f *fakeQuestionRepo) FindByID(id uint) (*model.Question, error) {
	q, ok := f.tests.questionByID(id)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return q, nil
}

func (f *fakeQuestionRepo) FindByTestID(testID uint) ([]model.Question, error) {
	for _, t := range f.tests.tests {
		if t.ID == testID {
			qs := append([]model.Question(nil), t.Questions...)
			sort.Slice(qs, func(i, j int) bool { return qs[i].QuestionNumber < qs[j].QuestionNumber })
			return qs, nil
		}
	}
	return nil, nil
}

type fakeAttemptRepo struct {
	attempts map[uint]*model.Attempt
	byPair   map[string]uint
	nextID   uint

	// lookupMisses makes FindByStudentAndTest miss that many times, to model
	// the check-then-insert race window.
	lookupMisses int
	// finalizeHook runs before the status guard, so a test can model a
	// concurrent submitter finalizing first.
	finalizeHook  func(a *model.Attempt)
	finalizeCount int
}

func newFakeAttemptRepo() *fakeAttemptRepo {
	return &fakeAttemptRepo{attempts: map[uint]*model.Attempt{}, byPair: map[string]uint{}}
}

func (f *fakeAttemptRepo) Create(a *model.Attempt) error {
	k := pairKey(a.StudentEmail, a.TestID)
	if _, ok := f.byPair[k]; ok {
		return gorm.ErrDuplicatedKey
	}
	f.nextID++
	a.ID = f.nextID
	cp := *a
	f.attempts[a.ID] = &cp
	f.byPair[k] = a.ID
	return nil
}

func (f *fakeAttemptRepo) FindByID(id uint) (*model.Attempt, error) {
	a, ok := f.attempts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAttemptRepo) FindByStudentAndTest(email, testID string) (*model.Attempt, error) {
	if f.lookupMisses > 0 {
		f.lookupMisses--
		return nil, gorm.ErrRecordNotFound
	}
	id, ok := f.byPair[pairKey(email, testID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return f.FindByID(id)
}

func (f *fakeAttemptRepo) FindAllByTest(testID string) ([]model.Attempt, error) {
	var out []model.Attempt
	for _, a := range f.attempts {
		if a.TestID == testID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeAttemptRepo) FinalizeScore(id uint, submittedAt time.Time, score float64, correctAnswers int) (bool, error) {
	a, ok := f.attempts[id]
	if !ok {
		return false, fmt.Errorf("attempt %d not found", id)
	}
	if f.finalizeHook != nil {
		hook := f.finalizeHook
		f.finalizeHook = nil
		hook(a)
	}
	if a.Status != model.AttemptInProgress {
		return false, nil
	}
	a.Status = model.AttemptCompleted
	a.SubmittedAt = &submittedAt
	a.Score = &score
	a.CorrectAnswers = &correctAnswers
	f.finalizeCount++
	return true, nil
}

type fakeAnswerRepo struct {
	answers map[string]*model.Answer
	tests   *fakeTestRepo
	nextID  uint
}

func newFakeAnswerRepo(tests *fakeTestRepo) *fakeAnswerRepo {
	return &fakeAnswerRepo{answers: map[string]*model.Answer{}, tests: tests}
}

func answerKey(attemptID, questionID uint) string {
	return fmt.Sprintf("%d|%d", attemptID, questionID)
}

func (f *fakeAnswerRepo) Upsert(a *model.Answer) error {
	k := answerKey(a.AttemptID, a.QuestionID)
	if existing, ok := f.answers[k]; ok {
		existing.SelectedOption = a.SelectedOption
		existing.AnsweredAt = a.AnsweredAt
		a.ID = existing.ID
		return nil
	}
	f.nextID++
	a.ID = f.nextID
	cp := *a
	f.answers[k] = &cp
	return nil
}

func (f *fakeAnswerRepo) FindByAttemptID(attemptID uint) ([]model.Answer, error) {
	var out []model.Answer
	for _, a := range f.answers {
		if a.AttemptID != attemptID {
			continue
		}
		cp := *a
		if q, ok := f.tests.questionByID(a.QuestionID); ok {
			cp.Question = *q
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Question.QuestionNumber < out[j].Question.QuestionNumber
	})
	return out, nil
}

// seedTest registers a two-question test used across the lifecycle tests:
// Q1 worth 1 mark with correct answer A, Q2 worth 3 marks with correct
// answer C.
func seedTest(tests *fakeTestRepo) *model.Test {
	t := &model.Test{
		TestID:          "go-101",
		Title:           "Go Basics",
		DurationMinutes: 30,
		TotalMarks:      4,
		Questions: []model.Question{
			{QuestionNumber: 1, QuestionText: "Q1", OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d", CorrectAnswer: "A", Marks: 1},
			{QuestionNumber: 2, QuestionText: "Q2", OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d", CorrectAnswer: "C", Marks: 3},
		},
	}
	if err := tests.Create(t); err != nil {
		panic(err)
	}
	return tests.tests[t.TestID]
}

// seedOtherTest registers a second, unrelated test; used to verify that
// answers cannot target questions outside the attempted test.
func seedOtherTest(tests *fakeTestRepo) *model.Test {
	t := &model.Test{
		TestID:          "py-201",
		Title:           "Python Basics",
		DurationMinutes: 15,
		TotalMarks:      1,
		Questions: []model.Question{
			{QuestionNumber: 1, QuestionText: "Other Q1", OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d", CorrectAnswer: "B", Marks: 1},
		},
	}
	if err := tests.Create(t); err != nil {
		panic(err)
	}
	return tests.tests[t.TestID]
}

func seedEntitlement(repo *fakeEntitlementRepo, email, testID string, rollNumber *string) {
	if err := repo.Create(&model.Entitlement{Email: email, TestID: testID, RollNumber: rollNumber}); err != nil {
		panic(err)
	}
}

func strPtr(s string) *string { return &s }
