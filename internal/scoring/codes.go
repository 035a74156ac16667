package scoring

// MaxCodeValue is the highest value of the ordinal scale.
const MaxCodeValue = 5

// Code is a response code as sent by the questionnaire.
type Code string

// Response codes. 1..5 form the ordinal scale; the rest carry no score.
const (
	CodeNoCase        Code = "1"
	CodeFewCases      Code = "2"
	CodeHalfCases     Code = "3"
	CodeMostCases     Code = "4"
	CodeAllCases      Code = "5"
	CodeDontKnow      Code = "6"
	CodeOther         Code = "7"
	CodeNotApplicable Code = "8"
	CodeNotAnswered   Code = "9"
)

// AllCodes lists every response code in display order.
var AllCodes = []Code{
	CodeNoCase, CodeFewCases, CodeHalfCases, CodeMostCases, CodeAllCases,
	CodeDontKnow, CodeOther, CodeNotApplicable, CodeNotAnswered,
}

var codeLabels = map[Code]string{
	CodeNoCase:        "In no case",
	CodeFewCases:      "In a few cases",
	CodeHalfCases:     "About half cases",
	CodeMostCases:     "In most cases",
	CodeAllCases:      "In all cases",
	CodeDontKnow:      "Don't know",
	CodeOther:         "Other",
	CodeNotApplicable: "Not applicable",
	CodeNotAnswered:   "Not answered",
}

// Valid reports whether c is a known response code.
func (c Code) Valid() bool {
	_, ok := codeLabels[c]
	return ok
}

// Label returns the English label, or "Not answered" for unknown codes.
func (c Code) Label() string {
	if l, ok := codeLabels[c]; ok {
		return l
	}
	return codeLabels[CodeNotAnswered]
}

// Value returns the ordinal value and whether the code is scorable.
func (c Code) Value() (int, bool) {
	switch c {
	case CodeNoCase:
		return 1, true
	case CodeFewCases:
		return 2, true
	case CodeHalfCases:
		return 3, true
	case CodeMostCases:
		return 4, true
	case CodeAllCases:
		return 5, true
	}
	return 0, false
}
