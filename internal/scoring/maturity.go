package scoring

// Band is a maturity level derived from a percentage score.
type Band string

const (
	BandAdvanced Band = "advanced"
	BandSolid    Band = "solid"
	BandBasic    Band = "basic"
	BandUrgent   Band = "urgent"
)

var bandHeadlines = map[Band]map[string]string{
	BandAdvanced: {
		"en": "Advanced cybersecurity maturity. Keep improving continuously.",
		"fr": "Maturité cybersécurité avancée. Continuez à vous améliorer.",
	},
	BandSolid: {
		"en": "Solid cybersecurity foundation with room for targeted improvements.",
		"fr": "Base de cybersécurité solide avec des axes d'amélioration ciblés.",
	},
	BandBasic: {
		"en": "Basic cybersecurity measures in place. Significant improvements needed.",
		"fr": "Mesures de cybersécurité de base en place. Des améliorations importantes sont nécessaires.",
	},
	BandUrgent: {
		"en": "Urgent action required to address critical cybersecurity gaps.",
		"fr": "Action urgente requise pour combler des lacunes critiques.",
	},
}

// MaturityBand maps a percentage score to its band.
func MaturityBand(score int) Band {
	switch {
	case score >= 85:
		return BandAdvanced
	case score >= 65:
		return BandSolid
	case score >= 35:
		return BandBasic
	default:
		return BandUrgent
	}
}

// Headline returns the band summary in the given language, falling back to English.
func (b Band) Headline(lang string) string {
	texts := bandHeadlines[b]
	if t, ok := texts[lang]; ok {
		return t
	}
	return texts["en"]
}
