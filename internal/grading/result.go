package grading

import "math"

// CriterionScore is the outcome for a single rubric criterion within one
// analysis.
type CriterionScore struct {
	Key           string  `json:"key"`
	Criterion     string  `json:"criterion"`
	PointsAwarded float64 `json:"points_awarded"`
	MaxPoints     float64 `json:"max_points"`
	Level         string  `json:"level"`
	Comment       string  `json:"comment"`
}

// Result is the full analysis of one submitted text. It has the same shape
// whether it came from the external evaluator or the heuristic fallback,
// and is persisted as an opaque blob on the submission record.
type Result struct {
	FixedText       string           `json:"fixed_text"`
	AIGrade         float64          `json:"ai_grade"`
	TotalPoints     float64          `json:"total_points"`
	RubricTotal     float64          `json:"rubric_total"`
	RubricBreakdown []CriterionScore `json:"rubric_breakdown"`
	Mistakes        []string         `json:"mistakes"`
	Benefits        []string         `json:"benefits"`
}

// GradeFromPoints converts a point total on the rubric scale to a grade out
// of 10 with one decimal.
func GradeFromPoints(total float64) float64 {
	return round1(total / RubricTotal * 10)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round1(v float64) float64 { return math.Round(v*10) / 10 }
