package model

import (
	"strings"
	"time"
)

// Respondent identifies the person who filled in the assessment.
type Respondent struct {
	Name         string `json:"name" bson:"name" binding:"required,min=1,max=200"`
	Email        string `json:"email" bson:"email" binding:"required,email,max=255"`
	Role         string `json:"role" bson:"role" binding:"max=200"`
	Country      string `json:"country" bson:"country" binding:"max=100"`
	MarketSector string `json:"market_sector" bson:"market_sector" binding:"max=200"`
	Date         string `json:"date,omitempty" bson:"date,omitempty" binding:"max=50"`
}

// FirstName returns the first word of the respondent's name.
func (r Respondent) FirstName() string {
	fields := strings.Fields(r.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Environment describes the system or organisational unit being assessed.
type Environment struct {
	UniqueName string `json:"unique_name" bson:"unique_name" binding:"required,min=1,max=200"`
	Type       string `json:"type" bson:"type" binding:"max=100"`
	Size       string `json:"size" bson:"size" binding:"max=100"`
	Importance string `json:"importance" bson:"importance" binding:"max=100"`
	Maturity   string `json:"maturity" bson:"maturity" binding:"max=100"`
}

// QuestionDetail is the question context the client sends alongside its answers.
// It is used to enrich the stored record and is not persisted as such.
type QuestionDetail struct {
	ID       string `json:"id" binding:"required,max=100"`
	Text     string `json:"text" binding:"max=2000"`
	Category string `json:"category" binding:"max=200"`
	Area     string `json:"area" binding:"max=200"`
	Topic    string `json:"topic" binding:"max=200"`
}

// DetailedAnswer is a question/answer pair stored with a submission.
type DetailedAnswer struct {
	QuestionID   string `json:"question_id" bson:"question_id"`
	QuestionText string `json:"question_text" bson:"question_text"`
	AnswerValue  string `json:"answer_value" bson:"answer_value"`
	AnswerLabel  string `json:"answer_label" bson:"answer_label"`
	Category     string `json:"category,omitempty" bson:"category,omitempty"`
	Area         string `json:"area,omitempty" bson:"area,omitempty"`
	Topic        string `json:"topic,omitempty" bson:"topic,omitempty"`
}

// SubmissionMetadata holds informational client data. None of it drives business logic.
type SubmissionMetadata struct {
	Language         string     `json:"language" bson:"language" binding:"omitempty,oneof=en fr"`
	StartedAt        *time.Time `json:"started_at,omitempty" bson:"started_at,omitempty"`
	SubmittedAt      time.Time  `json:"submitted_at" bson:"submitted_at"`
	DurationMS       int64      `json:"duration_ms" bson:"duration_ms" binding:"min=0"`
	UserAgent        string     `json:"user_agent,omitempty" bson:"user_agent,omitempty" binding:"max=500"`
	ScreenResolution string     `json:"screen_resolution,omitempty" bson:"screen_resolution,omitempty" binding:"max=50"`
}

// Submission is one completed assessment attempt. Records are immutable once stored.
type Submission struct {
	ID                 string             `json:"id" bson:"-"`
	SubmissionID       string             `json:"submission_id" bson:"submission_id"`
	Respondent         Respondent         `json:"respondent" bson:"respondent"`
	Environment        Environment        `json:"environment" bson:"environment"`
	Answers            map[string]string  `json:"answers" bson:"answers" binding:"required,min=1,max=1000,dive,keys,required,max=100,endkeys,answer_code"`
	SelectedCategories []string           `json:"selected_categories" bson:"selected_categories" binding:"max=100,dive,max=200"`
	SelectedAreas      []string           `json:"selected_areas" bson:"selected_areas" binding:"max=200,dive,max=200"`
	QuestionDetails    []QuestionDetail   `json:"question_details,omitempty" bson:"-" binding:"max=1000,dive"`
	DetailedAnswers    []DetailedAnswer   `json:"detailed_answers,omitempty" bson:"detailed_answers,omitempty"`
	Score              int                `json:"score" bson:"score" binding:"min=0,max=100"`
	ClientScore        *int               `json:"client_score,omitempty" bson:"client_score,omitempty"`
	TotalQuestions     int                `json:"total_questions" bson:"total_questions" binding:"min=0"`
	CompletedQuestions int                `json:"completed_questions" bson:"completed_questions" binding:"min=0,ltefield=TotalQuestions"`
	Metadata           SubmissionMetadata `json:"metadata" bson:"metadata"`
	CreatedAt          time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at" bson:"updated_at"`
}

// Fingerprint is the identity+outcome tuple used for duplicate detection.
type Fingerprint struct {
	Email              string
	EnvironmentName    string
	Score              int
	TotalQuestions     int
	CompletedQuestions int
}

// Fingerprint returns the duplicate-detection tuple of the submission.
func (s *Submission) Fingerprint() Fingerprint {
	return Fingerprint{
		Email:              s.Respondent.Email,
		EnvironmentName:    s.Environment.UniqueName,
		Score:              s.Score,
		TotalQuestions:     s.TotalQuestions,
		CompletedQuestions: s.CompletedQuestions,
	}
}

// SubmitStatus is the outcome of a successful submit.
type SubmitStatus string

const (
	SubmitCreated       SubmitStatus = "created"
	SubmitAlreadyExists SubmitStatus = "already_exists"
)

// SubmitResult is returned to the client after a submission is recorded.
type SubmitResult struct {
	Status   SubmitStatus `json:"status"`
	ID       string       `json:"id"`
	Score    int          `json:"score"`
	Attempts int          `json:"attempts"`
}

// SubmissionEvent is published to the admin live feed.
type SubmissionEvent struct {
	Type            string    `json:"type"`
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	EnvironmentName string    `json:"environment_name"`
	Score           int       `json:"score"`
	CreatedAt       time.Time `json:"created_at"`
}
