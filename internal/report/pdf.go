package report

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageMargin = 15.0
	lineHeight = 6.0
	bodyWidth  = 180.0
)

var labels = map[string]map[string]string{
	"en": {
		"title":       "Cybersecurity Self-Assessment Report",
		"respondent":  "Respondent",
		"environment": "Environment",
		"score":       "Overall score",
		"summary":     "Response summary",
		"categories":  "Scores by category",
		"answers":     "Answers",
		"answered":    "Answered",
		"submitted":   "Submitted",
		"generated":   "Generated",
		"page":        "Page",
	},
	"fr": {
		"title":       "Rapport d'auto-évaluation cybersécurité",
		"respondent":  "Répondant",
		"environment": "Environnement",
		"score":       "Score global",
		"summary":     "Synthèse des réponses",
		"categories":  "Scores par catégorie",
		"answers":     "Réponses",
		"answered":    "Répondues",
		"submitted":   "Soumis le",
		"generated":   "Généré le",
		"page":        "Page",
	},
}

// RenderPDF lays the report out on A4 pages.
func RenderPDF(r Report) ([]byte, error) {
	l := labels[r.Language]
	if l == nil {
		l = labels["en"]
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	// Core fonts are cp1252; accented French labels need translating.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(l["title"], true)
	pdf.SetCreator("cyberassess", true)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-pageMargin)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("%s %d", l["page"], pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(l["title"]), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	keyValue(pdf, tr, l["respondent"], fmt.Sprintf("%s <%s>", r.Respondent.Name, r.Respondent.Email))
	keyValue(pdf, tr, l["environment"], r.Environment.UniqueName)
	if !r.SubmittedAt.IsZero() {
		keyValue(pdf, tr, l["submitted"], r.SubmittedAt.UTC().Format(time.RFC1123))
	}
	keyValue(pdf, tr, l["generated"], r.GeneratedAt.UTC().Format(time.RFC1123))
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 28)
	pdf.SetTextColor(bandColor(r.Score))
	pdf.CellFormat(0, 14, fmt.Sprintf("%d%%", r.Score), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(bodyWidth, lineHeight, tr(fmt.Sprintf("%s: %s", l["score"], r.Headline)), "", "L", false)
	pdf.Ln(4)

	section(pdf, tr, l["summary"])
	for _, c := range r.Summary {
		tableRow(pdf, tr, []float64{120, 30, 30}, []string{
			c.Label, strconv.Itoa(c.Count), fmt.Sprintf("%.1f%%", c.Percentage),
		})
	}
	pdf.Ln(4)

	if len(r.Categories) > 0 {
		section(pdf, tr, l["categories"])
		for _, c := range r.Categories {
			tableRow(pdf, tr, []float64{120, 30, 30}, []string{
				c.Category, fmt.Sprintf("%s %d", l["answered"], c.Answered), fmt.Sprintf("%d%%", c.Percentage),
			})
		}
		pdf.Ln(4)
	}

	section(pdf, tr, l["answers"])
	pdf.SetFont("Helvetica", "", 9)
	for _, a := range r.Answers {
		question := a.QuestionText
		if question == "" {
			question = a.QuestionID
		}
		pdf.SetFont("Helvetica", "B", 9)
		pdf.MultiCell(bodyWidth, 5, tr(question), "", "L", false)
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(bodyWidth, 5, tr(a.AnswerLabel), "", "L", false)
		pdf.Ln(1)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("layout pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func keyValue(pdf *gofpdf.Fpdf, tr func(string) string, key, value string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(35, lineHeight, tr(key), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, lineHeight, tr(value), "", 1, "L", false, 0, "")
}

func section(pdf *gofpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetFillColor(230, 236, 245)
	pdf.CellFormat(0, 8, tr(title), "", 1, "L", true, 0, "")
	pdf.SetFont("Helvetica", "", 10)
}

func tableRow(pdf *gofpdf.Fpdf, tr func(string) string, widths []float64, cells []string) {
	for i, c := range cells {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], lineHeight, tr(c), "B", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func bandColor(score int) (int, int, int) {
	switch {
	case score >= 85:
		return 22, 128, 61
	case score >= 65:
		return 37, 99, 235
	case score >= 35:
		return 202, 138, 4
	default:
		return 185, 28, 28
	}
}
