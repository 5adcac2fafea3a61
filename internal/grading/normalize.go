package grading

// NormalizeTotals recomputes the aggregate fields of a Result from its
// breakdown: total points (2 decimals), the fixed rubric total, and the
// grade out of 10. Used when the external evaluator returns a breakdown
// but omits the totals, so a partial response never fails the request.
func NormalizeTotals(r *Result) {
	total := 0.0
	for _, row := range r.RubricBreakdown {
		total += row.PointsAwarded
	}
	r.TotalPoints = round2(total)
	r.RubricTotal = RubricTotal
	r.AIGrade = GradeFromPoints(r.TotalPoints)
}
