package gemini

import "strings"

// LabelMap converts the judge's categorical labels to normalized scores.
// The model is asked for low/medium/high per axis; the Poor..Excellent set
// is accepted too because some prompts and older transcripts use it.
type LabelMap struct {
	scores       map[string]float64
	defaultScore float64
}

// DefaultLabelMap returns the stock label conversions.
func DefaultLabelMap() LabelMap {
	return LabelMap{
		scores: map[string]float64{
			"low":    0.25,
			"medium": 0.55,
			"high":   0.85,

			"poor":      0.25,
			"fair":      0.5,
			"good":      0.75,
			"excellent": 1.0,
		},
		defaultScore: 0.5,
	}
}

// Score converts one label, case-insensitively. Unknown labels fall back to
// the default score rather than failing the whole evaluation.
func (m LabelMap) Score(label string) float64 {
	if v, ok := m.scores[strings.ToLower(strings.TrimSpace(label))]; ok {
		return v
	}
	return m.defaultScore
}
