package dto

// QuestionCreateDTO is used within TestCreateDTO for admin test creation.
type QuestionCreateDTO struct {
	QuestionNumber int     `json:"question_number" binding:"required,min=1"`
	QuestionText   string  `json:"question_text" binding:"required"`
	OptionA        string  `json:"option_a" binding:"required"`
	OptionB        string  `json:"option_b" binding:"required"`
	OptionC        string  `json:"option_c" binding:"required"`
	OptionD        string  `json:"option_d" binding:"required"`
	CorrectAnswer  string  `json:"correct_answer" binding:"required,oneof=A B C D a b c d"`
	Marks          float64 `json:"marks" binding:"min=0"`
}

// TestCreateDTO is for admin to create a new test with all its questions.
type TestCreateDTO struct {
	TestID          string              `json:"test_id" binding:"required"`
	Title           string              `json:"title" binding:"required"`
	DurationMinutes int                 `json:"duration_minutes" binding:"required,gt=0"`
	TotalMarks      float64             `json:"total_marks" binding:"min=0"`
	Questions       []QuestionCreateDTO `json:"questions" binding:"required,min=1,dive"`
}

// EntitlementCreateDTO grants a student access to a test. In production this
// is written by the payment-verification flow; the admin endpoint stands in
// for it here.
type EntitlementCreateDTO struct {
	Email      string  `json:"email" binding:"required,email"`
	TestID     string  `json:"test_id" binding:"required"`
	RollNumber *string `json:"roll_number"`
}
