package notification

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sort"
	"time"

	"github.com/stemsi/cyberassess-backend/internal/mailer"
	"github.com/stemsi/cyberassess-backend/internal/model"
	"github.com/stemsi/cyberassess-backend/internal/scoring"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type mailView struct {
	model.Submission
	Lang        string
	Subject     string
	Greeting    string
	Band        scoring.Band
	Headline    string
	SubmittedAt string
	Summary     []scoring.ResponseCount
	Answers     []model.DetailedAnswer
}

func newMailView(s model.Submission, subject string) mailView {
	lang := s.Metadata.Language
	if lang != "fr" {
		lang = "en"
	}
	greeting := s.Respondent.FirstName()
	if greeting == "" {
		greeting = map[string]string{"en": "Valued Client", "fr": "Madame, Monsieur"}[lang]
	}
	band := scoring.MaturityBand(s.Score)
	return mailView{
		Submission:  s,
		Lang:        lang,
		Subject:     subject,
		Greeting:    greeting,
		Band:        band,
		Headline:    band.Headline(lang),
		SubmittedAt: s.CreatedAt.UTC().Format(time.RFC1123),
		Summary:     scoring.ResponseSummary(s.Answers),
		Answers:     answerRows(s),
	}
}

// answerRows prefers the stored detailed answers and falls back to raw codes.
func answerRows(s model.Submission) []model.DetailedAnswer {
	if len(s.DetailedAnswers) > 0 {
		return s.DetailedAnswers
	}
	ids := make([]string, 0, len(s.Answers))
	for id := range s.Answers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	rows := make([]model.DetailedAnswer, 0, len(ids))
	for _, id := range ids {
		code := scoring.Code(s.Answers[id])
		rows = append(rows, model.DetailedAnswer{QuestionID: id, AnswerValue: string(code), AnswerLabel: code.Label()})
	}
	return rows
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// InternalMessage builds the notice sent to the operations team.
func InternalMessage(s model.Submission, to string) (mailer.Message, error) {
	subject := fmt.Sprintf("New Cybersecurity Assessment - %s", s.Environment.UniqueName)
	html, err := render("internal.html", newMailView(s, subject))
	if err != nil {
		return mailer.Message{}, err
	}
	return mailer.Message{To: []string{to}, Subject: subject, HTML: html}, nil
}

// UserMessage builds the acknowledgement sent to the respondent.
func UserMessage(s model.Submission) (mailer.Message, error) {
	subject := "Your Cybersecurity Assessment has been received"
	if s.Metadata.Language == "fr" {
		subject = "Votre autoévaluation cybersécurité a bien été reçue"
	}
	html, err := render("user.html", newMailView(s, subject))
	if err != nil {
		return mailer.Message{}, err
	}
	return mailer.Message{To: []string{s.Respondent.Email}, Subject: subject, HTML: html}, nil
}

// TestMessage builds the SMTP configuration check mail.
func TestMessage(to string, now time.Time) (mailer.Message, error) {
	html, err := render("test.html", now.UTC().Format(time.RFC3339))
	if err != nil {
		return mailer.Message{}, err
	}
	return mailer.Message{To: []string{to}, Subject: "Test Email - Cybersecurity Assessment", HTML: html}, nil
}
