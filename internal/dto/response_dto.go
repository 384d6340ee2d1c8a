package dto

import "time"

type ErrorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// StudentDTO identifies the exam taker in responses.
type StudentDTO struct {
	Email      string `json:"email"`
	RollNumber string `json:"roll_number"`
}

// TestInfoDTO carries test metadata in exam session and result responses.
type TestInfoDTO struct {
	TestID          string  `json:"test_id"`
	Title           string  `json:"title"`
	DurationMinutes int     `json:"duration_minutes"`
	TotalMarks      float64 `json:"total_marks"`
	TotalQuestions  int     `json:"total_questions"`
}

// TimingDTO is the attempt window. EndTime is informational for the client's
// countdown; the server does not reject late submissions.
type TimingDTO struct {
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
}

// ExamQuestionDTO is a question as shown to the student mid-exam. Correct
// answers and marks are withheld.
type ExamQuestionDTO struct {
	ID             uint   `json:"id"`
	QuestionNumber int    `json:"question_number"`
	QuestionText   string `json:"question_text"`
	OptionA        string `json:"option_a"`
	OptionB        string `json:"option_b"`
	OptionC        string `json:"option_c"`
	OptionD        string `json:"option_d"`
}

// ExamSessionDTO is the response to a successful exam start.
type ExamSessionDTO struct {
	AttemptID uint              `json:"attempt_id"`
	Student   StudentDTO        `json:"student"`
	Test      TestInfoDTO       `json:"test"`
	Timing    TimingDTO         `json:"timing"`
	Questions []ExamQuestionDTO `json:"questions"`
}

// AttemptSummaryDTO is a compact attempt view, returned alongside
// ALREADY_ATTEMPTED so the client can show the prior attempt.
type AttemptSummaryDTO struct {
	AttemptID      uint       `json:"attempt_id"`
	StudentEmail   string     `json:"student_email"`
	TestID         string     `json:"test_id"`
	Status         string     `json:"status"`
	StartTime      time.Time  `json:"start_time"`
	EndTime        time.Time  `json:"end_time"`
	SubmittedAt    *time.Time `json:"submitted_at,omitempty"`
	Score          *float64   `json:"score,omitempty"`
	CorrectAnswers *int       `json:"correct_answers,omitempty"`
}

// AlreadyAttemptedResponse is the 409 body for a repeated start.
type AlreadyAttemptedResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Attempt AttemptSummaryDTO `json:"attempt"`
}

// SyncAckDTO echoes the stored answer triple back to the client.
type SyncAckDTO struct {
	AttemptID      uint      `json:"attempt_id"`
	QuestionID     uint      `json:"question_id"`
	SelectedOption *string   `json:"selected_option"`
	AnsweredAt     time.Time `json:"answered_at"`
}

// ScoreSummaryDTO is the submit response. Identical on every retry of the
// same attempt.
type ScoreSummaryDTO struct {
	AttemptID      uint      `json:"attempt_id"`
	Score          float64   `json:"score"`
	CorrectAnswers int       `json:"correct_answers"`
	TotalQuestions int       `json:"total_questions"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// OptionSetDTO holds the four option texts keyed by letter.
type OptionSetDTO struct {
	A string `json:"A"`
	B string `json:"B"`
	C string `json:"C"`
	D string `json:"D"`
}

// AnswerReviewDTO is one row of the per-question result breakdown.
type AnswerReviewDTO struct {
	QuestionNumber int          `json:"question_number"`
	QuestionText   string       `json:"question_text"`
	Options        OptionSetDTO `json:"options"`
	SelectedOption *string      `json:"selected_option"`
	CorrectAnswer  string       `json:"correct_answer"`
	IsCorrect      bool         `json:"is_correct"`
	Marks          float64      `json:"marks"`
}

// ResultSummaryDTO aggregates the attempt outcome for the result view.
type ResultSummaryDTO struct {
	Score          float64    `json:"score"`
	CorrectAnswers int        `json:"correct_answers"`
	TotalQuestions int        `json:"total_questions"`
	Percentage     string     `json:"percentage"`
	Status         string     `json:"status"`
	StartTime      time.Time  `json:"start_time"`
	SubmittedAt    *time.Time `json:"submitted_at,omitempty"`
}

// ResultDTO is the full post-submission projection.
type ResultDTO struct {
	Student StudentDTO        `json:"student"`
	Test    TestInfoDTO       `json:"test"`
	Result  ResultSummaryDTO  `json:"result"`
	Answers []AnswerReviewDTO `json:"answers"`
}

// --- Admin responses ---

// TestSummaryDTO is used for admin test listing.
type TestSummaryDTO struct {
	ID              uint      `json:"id"`
	TestID          string    `json:"test_id"`
	Title           string    `json:"title"`
	DurationMinutes int       `json:"duration_minutes"`
	TotalMarks      float64   `json:"total_marks"`
	QuestionCount   int       `json:"question_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// AdminQuestionDTO includes correct answers and marks; admin-only.
type AdminQuestionDTO struct {
	ID             uint    `json:"id"`
	QuestionNumber int     `json:"question_number"`
	QuestionText   string  `json:"question_text"`
	OptionA        string  `json:"option_a"`
	OptionB        string  `json:"option_b"`
	OptionC        string  `json:"option_c"`
	OptionD        string  `json:"option_d"`
	CorrectAnswer  string  `json:"correct_answer"`
	Marks          float64 `json:"marks"`
}

// AdminTestDTO is the admin view of a created test.
type AdminTestDTO struct {
	ID              uint               `json:"id"`
	TestID          string             `json:"test_id"`
	Title           string             `json:"title"`
	DurationMinutes int                `json:"duration_minutes"`
	TotalMarks      float64            `json:"total_marks"`
	Questions       []AdminQuestionDTO `json:"questions,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

// EntitlementDTO is the admin view of a granted entitlement.
type EntitlementDTO struct {
	ID         uint      `json:"id"`
	Email      string    `json:"email"`
	TestID     string    `json:"test_id"`
	RollNumber *string   `json:"roll_number,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
