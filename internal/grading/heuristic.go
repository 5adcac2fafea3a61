package grading

import (
	"math"
	"math/rand"
	"strings"
)

const (
	// refTokens is the token count at which the length ratio saturates.
	refTokens = 120
	// defaultJitterAmp bounds the uniform score perturbation. Jitter exists
	// only so distinct submissions don't render visually identical scores.
	defaultJitterAmp = 0.08
)

var (
	introOutroMarkers = []string{"مقدمة", "في البداية", "ختامًا", "في الختام"}
	evidenceMarkers   = []string{"مثال", "على سبيل المثال", "دليل", "برهان"}
)

// One canned sentence per criterion; the heuristic path does not generate
// prose from the score.
var heuristicComments = map[string]string{
	"spelling":     "عامّةً سليمة مع هنات بسيطة غير مؤثرة.",
	"grammar":      "تراكيب صحيحة أغلب الوقت، تُراجع بعض الصياغات.",
	"punctuation":  "علامات الترقيم مستخدمة في مواضع عديدة.",
	"clarity":      "الأسلوب واضح ومباشر في معظم الجمل.",
	"vocab":        "مفردات مناسبة وفيها قدر جيّد من التنوع.",
	"organization": "تنظيم جيّد للفقرات وعناصر الفكرة.",
	"coherence":    "تسلسل منطقي مقنع بين الأفكار.",
	"evidence":     "توجد أمثلة/إشارات تدعيمية على الفكرة.",
	"imagery":      "تعابير تصويرية محدودة لكنها مناسبة.",
	"intro_outro":  "افتتاح وختام مقبولان يدعمان الفكرة.",
	"relevance":    "الطرح بقي ضمن إطار الموضوع.",
}

// HeuristicScorer derives a rubric breakdown from shallow text features.
// It is the fully local scoring path used when no AI evaluator is
// configured or the external call fails.
type HeuristicScorer struct {
	rubric    []Criterion
	jitterAmp float64
	rng       *rand.Rand
}

type ScorerOption func(*HeuristicScorer)

// WithJitter overrides the jitter amplitude. Zero disables jitter entirely,
// which makes scores exact functions of the input text.
func WithJitter(amp float64) ScorerOption {
	return func(s *HeuristicScorer) { s.jitterAmp = amp }
}

// WithRand pins the randomness source, so tests can assert exact outputs.
// The default is the process-global source.
func WithRand(rng *rand.Rand) ScorerOption {
	return func(s *HeuristicScorer) { s.rng = rng }
}

func NewHeuristicScorer(opts ...ScorerOption) *HeuristicScorer {
	s := &HeuristicScorer{rubric: DefaultRubric(), jitterAmp: defaultJitterAmp}
	for _, o := range opts {
		o(s)
	}
	return s
}

// baseRatios maps features to one pre-jitter ratio in [0,1] per criterion
// key. Spelling and grammar are fixed constants: they cannot be assessed
// without the AI path, and relevance is assumed moderate-to-good because
// the heuristic cannot judge the topic.
func (s *HeuristicScorer) baseRatios(text string, f Features) map[string]float64 {
	rLength := math.Min(1, float64(f.Tokens)/refTokens)
	rPunct := math.Min(1, float64(f.Punct())/float64(max(1, 2*f.Lines)))
	rVariety := math.Min(1, float64(f.UniqueTokens)/float64(max(1, f.Tokens))*1.6)

	rStructure := 1.0
	if f.Lines < 4 {
		rStructure = float64(f.Lines) / 4
	}

	rIntroOutro := 0.4
	switch {
	case containsAny(text, introOutroMarkers):
		rIntroOutro = 1.0
	case f.Lines >= 2:
		rIntroOutro = 0.6
	}

	rEvidence := 0.55
	if containsAny(text, evidenceMarkers) {
		rEvidence = 1.0
	}

	return map[string]float64{
		"spelling":     0.75,
		"grammar":      0.72,
		"punctuation":  rPunct,
		"clarity":      0.70 + 0.20*rLength,
		"vocab":        rVariety,
		"organization": 0.60 + 0.30*rStructure,
		"coherence":    0.60 + 0.35*rLength,
		"evidence":     rEvidence,
		"imagery":      0.55 + 0.25*rVariety,
		"intro_outro":  rIntroOutro,
		"relevance":    0.85,
	}
}

// Score produces one CriterionScore per rubric entry, in rubric order, plus
// the rounded point total and the grade out of 10. The level lookup uses
// the post-jitter clamped ratio, the same one converted to points.
func (s *HeuristicScorer) Score(text string) ([]CriterionScore, float64, float64) {
	ratios := s.baseRatios(text, ExtractFeatures(text))

	breakdown := make([]CriterionScore, 0, len(s.rubric))
	total := 0.0
	for _, c := range s.rubric {
		r := clamp01(s.jitter(ratios[c.Key]))
		pts := round2(c.MaxPoints * r)
		total += pts
		breakdown = append(breakdown, CriterionScore{
			Key:           c.Key,
			Criterion:     c.Name,
			PointsAwarded: pts,
			MaxPoints:     c.MaxPoints,
			Level:         LevelForRatio(r),
			Comment:       heuristicComments[c.Key],
		})
	}
	total = round2(total)
	return breakdown, total, GradeFromPoints(total)
}

func (s *HeuristicScorer) jitter(v float64) float64 {
	if s.jitterAmp <= 0 {
		return v
	}
	u := rand.Float64()
	if s.rng != nil {
		u = s.rng.Float64()
	}
	return v + (u*2-1)*s.jitterAmp
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
