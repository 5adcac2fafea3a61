package ai

import (
	"fmt"
	"strings"

	"github.com/qalamlab/tabeer/internal/grading"
)

// systemPrompt renders the Arabic grading instructions with the rubric and
// the level thresholds embedded, so the model returns the same JSON shape
// the normalizer expects.
func systemPrompt(rubric []grading.Criterion) string {
	var criteria strings.Builder
	keys := make([]string, 0, len(rubric))
	for i, c := range rubric {
		fmt.Fprintf(&criteria, "%d. %s (key=%s، الحد الأعلى %g نقطة)\n", i+1, c.Name, c.Key, c.MaxPoints)
		keys = append(keys, c.Key)
	}

	var b strings.Builder
	b.WriteString("أنت مساعد خبير في تقويم الكتابة العربية. قيّم النص وفق الروبرك الآتي، وارجع حصراً JSON صالحًا بالمفاتيح المطلوبة.\n")
	fmt.Fprintf(&b, "الروبرك يتكوّن من %d معيارًا بمجاميع نقاط محددة، والمجموع = %g:\n", len(rubric), grading.RubricTotal)
	b.WriteString(criteria.String())
	b.WriteString("\nأعد الاستجابة بالصيغة التالية (حقول إجبارية):\n")
	b.WriteString("- \"fixed_text\": نسخة مصححة ومحسّنة بالفصحى، مع تصحيح الإملاء والنحو والأسلوب والترقيم.\n")
	b.WriteString("- \"mistakes\": قائمة أخطاء محدّدة تم تصحيحها (جُمَل قصيرة واضحة).\n")
	b.WriteString("- \"benefits\": نقاط قوة واضحة في النص.\n")
	fmt.Fprintf(&b, "- \"ai_grade\": درجة على 10 (احسبها = total_points / %g * 10، رقم عشري من منزلة واحدة).\n", grading.RubricTotal)
	fmt.Fprintf(&b, "- \"total_points\": مجموع النقاط المحصّلة على %g.\n", grading.RubricTotal)
	fmt.Fprintf(&b, "- \"rubric_total\": قيمة ثابتة = %g.\n", grading.RubricTotal)
	b.WriteString("- \"rubric_breakdown\": قائمة من العناصر، كل عنصر كائن بالمفاتيح: key، criterion، points_awarded، max_points، level، comment.\n")
	b.WriteString("   - \"level\" أحد القيم (ممتاز، جيّد، مقبول، ضعيف) بناءً على نسبة النقاط (>=85% ممتاز، >=70% جيّد، >=50% مقبول، وإلا ضعيف).\n")
	fmt.Fprintf(&b, "المفاتيح المعتمدة لمعايير الروبرك بالتسلسل: %s\n", strings.Join(keys, "، "))
	b.WriteString("\nقواعد حساب النقاط:\n")
	b.WriteString("- وزّع النقاط واقعيًا وفق الجودة الفعلية للنص في كل معيار.\n")
	b.WriteString("- احرص على اتساق \"ai_grade\" مع \"total_points\".\n")
	b.WriteString("- لا تُدرج أي نص خارج JSON.")
	return b.String()
}
