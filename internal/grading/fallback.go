package grading

import "strings"

// Canned feedback for the offline path; deliberately not derived from the
// scores.
var (
	fallbackMistakes = []string{
		"تعديل بعض التراكيب لتصبح الجمل أكثر تماسكًا.",
		"تحسين توظيف علامات الترقيم في نهايات الجمل.",
	}
	fallbackBenefits = []string{
		"تسلسل منطقي واضح للأفكار.",
		"اختيار مفردات مناسبة لموضوع الكتابة.",
	}
)

const autoImprovedSuffix = "(نُسخة محسّنة تلقائيًا)"

// Fallback builds a complete Result without any network dependency. The
// "fixed" text is a placeholder substitution plus a marker suffix, not a
// real correction.
func (s *HeuristicScorer) Fallback(text string) Result {
	fixed := strings.ReplaceAll(text, "خطأ", "صحيح")
	fixed = strings.ReplaceAll(fixed, "مستيك", "تصحيح")
	fixed = strings.TrimSpace(fixed)
	if fixed != "" {
		fixed += " "
	}
	fixed += autoImprovedSuffix

	breakdown, total, grade := s.Score(text)
	return Result{
		FixedText:       fixed,
		AIGrade:         grade,
		TotalPoints:     total,
		RubricTotal:     RubricTotal,
		RubricBreakdown: breakdown,
		Mistakes:        fallbackMistakes,
		Benefits:        fallbackBenefits,
	}
}
