package http

import (
	"encoding/json"
	"net/http"

	"github.com/qalamlab/tabeer/internal/submission"
)

// GET /admin/overview — dataset counts plus the latest activity.
func OverviewHandler(store submission.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := store.Counts(r.Context())
		if err != nil {
			http.Error(w, "counts: "+err.Error(), http.StatusInternalServerError)
			return
		}
		recent, err := store.List(r.Context(), submission.ListOpts{Limit: 10})
		if err != nil {
			http.Error(w, "recent submissions: "+err.Error(), http.StatusInternalServerError)
			return
		}
		ratings, err := store.RecentRatings(r.Context(), 10)
		if err != nil {
			http.Error(w, "recent ratings: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"counts":             counts,
			"recent_submissions": recent,
			"recent_ratings":     ratings,
		})
	}
}
