package ai

import (
	"encoding/json"
	"fmt"

	"github.com/qalamlab/tabeer/internal/grading"
)

// looseFloat decodes JSON numbers strictly and everything else as zero, so
// one non-numeric points_awarded does not discard an otherwise valid
// breakdown.
type looseFloat float64

func (f *looseFloat) UnmarshalJSON(b []byte) error {
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		*f = 0
		return nil
	}
	*f = looseFloat(v)
	return nil
}

type wireCriterion struct {
	Key           string     `json:"key"`
	Criterion     string     `json:"criterion"`
	PointsAwarded looseFloat `json:"points_awarded"`
	MaxPoints     looseFloat `json:"max_points"`
	Level         string     `json:"level"`
	Comment       string     `json:"comment"`
}

type wireResult struct {
	FixedText       string          `json:"fixed_text"`
	Mistakes        []string        `json:"mistakes"`
	Benefits        []string        `json:"benefits"`
	AIGrade         *float64        `json:"ai_grade"`
	TotalPoints     *float64        `json:"total_points"`
	RubricTotal     *float64        `json:"rubric_total"`
	RubricBreakdown []wireCriterion `json:"rubric_breakdown"`
}

// decodeResult validates the model's JSON against the evaluator contract.
// A missing total_points with a key-complete breakdown is recovered by
// normalization; every other contract violation is Malformed, which the
// caller turns into a heuristic fallback.
func (c *Client) decodeResult(content string) grading.EvalOutcome {
	malformed := func(reason string) grading.EvalOutcome {
		return grading.EvalOutcome{Status: grading.EvalMalformed, Reason: reason}
	}

	var wr wireResult
	if err := json.Unmarshal([]byte(content), &wr); err != nil {
		return malformed("decode analysis: " + err.Error())
	}
	if wr.FixedText == "" {
		return malformed("missing fixed_text")
	}
	if len(wr.Mistakes) == 0 || len(wr.Benefits) == 0 {
		return malformed("missing mistakes or benefits")
	}
	if len(wr.RubricBreakdown) != len(c.rubric) {
		return malformed(fmt.Sprintf("breakdown has %d entries, want %d", len(wr.RubricBreakdown), len(c.rubric)))
	}

	byKey := make(map[string]wireCriterion, len(wr.RubricBreakdown))
	for _, row := range wr.RubricBreakdown {
		byKey[row.Key] = row
	}

	res := grading.Result{
		FixedText:       wr.FixedText,
		Mistakes:        wr.Mistakes,
		Benefits:        wr.Benefits,
		RubricBreakdown: make([]grading.CriterionScore, 0, len(c.rubric)),
	}
	// Reassemble in rubric order so downstream consumers always see the
	// fixed ordering, whatever order the model emitted.
	for _, cr := range c.rubric {
		row, ok := byKey[cr.Key]
		if !ok {
			return malformed("breakdown missing criterion " + cr.Key)
		}
		name := row.Criterion
		if name == "" {
			name = cr.Name
		}
		pts := float64(row.PointsAwarded)
		if pts < 0 || pts > cr.MaxPoints {
			return malformed(fmt.Sprintf("criterion %s points %v out of [0,%v]", cr.Key, pts, cr.MaxPoints))
		}
		level := row.Level
		if level == "" {
			level = grading.LevelForRatio(pts / cr.MaxPoints)
		}
		res.RubricBreakdown = append(res.RubricBreakdown, grading.CriterionScore{
			Key:           cr.Key,
			Criterion:     name,
			PointsAwarded: pts,
			MaxPoints:     cr.MaxPoints,
			Level:         level,
			Comment:       row.Comment,
		})
	}

	if wr.TotalPoints == nil {
		grading.NormalizeTotals(&res)
		return grading.EvalOutcome{Status: grading.EvalSucceeded, Result: res}
	}

	res.TotalPoints = *wr.TotalPoints
	res.RubricTotal = grading.RubricTotal
	if wr.AIGrade != nil {
		res.AIGrade = *wr.AIGrade
	} else {
		res.AIGrade = grading.GradeFromPoints(res.TotalPoints)
	}
	return grading.EvalOutcome{Status: grading.EvalSucceeded, Result: res}
}
