package dto

// StartExamRequest begins an attempt for an entitled student.
type StartExamRequest struct {
	Email  string `json:"email" binding:"required,email"`
	TestID string `json:"test_id" binding:"required"`
}

// SyncAnswerRequest upserts the student's current selection for one question.
// SelectedOption is a pointer: nil, empty or whitespace records an explicit
// skip; anything else must be one of A/B/C/D (either case), checked by the
// service after normalization.
type SyncAnswerRequest struct {
	AttemptID      uint    `json:"attempt_id" binding:"required"`
	QuestionID     uint    `json:"question_id" binding:"required"`
	SelectedOption *string `json:"selected_option"`
}

// SubmitExamRequest finalizes an attempt. Safe to retry; resubmitting a
// completed attempt returns the originally computed score.
type SubmitExamRequest struct {
	AttemptID uint `json:"attempt_id" binding:"required"`
}
