package grading

// Criterion is one weighted entry of the writing rubric.
type Criterion struct {
	Key       string  `json:"key"`
	Name      string  `json:"criterion"`
	MaxPoints float64 `json:"max_points"`
}

// RubricTotal is the fixed sum of MaxPoints across the default rubric.
// Grade normalization divides by this constant, so it must always match
// the live sum (asserted in tests).
const RubricTotal = 100.0

// defaultRubric is built once and shared read-only across the heuristic and
// AI-normalization paths.
var defaultRubric = []Criterion{
	{Key: "spelling", Name: "سلامة الإملاء", MaxPoints: 12},
	{Key: "grammar", Name: "سلامة التركيب النحوي وصحة الألفاظ", MaxPoints: 12},
	{Key: "punctuation", Name: "الدقة في علامات الترقيم", MaxPoints: 8},
	{Key: "clarity", Name: "وضوح الجمل والأسلوب", MaxPoints: 10},
	{Key: "vocab", Name: "ثروة المفردات وحسن اختيار الألفاظ", MaxPoints: 8},
	{Key: "organization", Name: "تنظيم الأفكار وشمولها", MaxPoints: 12},
	{Key: "coherence", Name: "تسلسل الأفكار وترابطها وصلتها بالموضوع", MaxPoints: 10},
	{Key: "evidence", Name: "استخدام الأدلة والبراهين/الأمثلة", MaxPoints: 8},
	{Key: "imagery", Name: "جمال التصوير والتعبير", MaxPoints: 6},
	{Key: "intro_outro", Name: "حسن البدء وحسن الختام", MaxPoints: 6},
	{Key: "relevance", Name: "الالتزام بموضوع الكتابة", MaxPoints: 8},
}

// DefaultRubric returns the 11-criterion Arabic writing rubric in display
// order. Callers must not mutate the returned slice.
func DefaultRubric() []Criterion { return defaultRubric }

// Level is a qualitative band with an inclusive lower ratio bound.
type Level struct {
	Label    string
	MinRatio float64
}

// levels are ordered highest ratio first. The last entry has MinRatio 0 so
// every ratio in [0,1] maps to a label.
var levels = []Level{
	{Label: "ممتاز", MinRatio: 0.85},
	{Label: "جيّد", MinRatio: 0.70},
	{Label: "مقبول", MinRatio: 0.50},
	{Label: "ضعيف", MinRatio: 0},
}

// Levels returns the qualitative bands, highest first.
func Levels() []Level { return levels }

// LevelForRatio returns the label of the first band whose bound the ratio
// meets, scanning high to low.
func LevelForRatio(r float64) string {
	for _, l := range levels {
		if r >= l.MinRatio {
			return l.Label
		}
	}
	return levels[len(levels)-1].Label
}
