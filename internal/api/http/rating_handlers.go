package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/qalamlab/tabeer/internal/auth/middleware"
	"github.com/qalamlab/tabeer/internal/submission"
)

// POST /submissions/{submissionID}/rating  { "verdict": "helpful" | "not_helpful" }
func RateSubmissionHandler(store submission.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "submissionID")
		var req struct {
			Verdict string `json:"verdict"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		var helpful int
		switch req.Verdict {
		case "helpful":
			helpful = 1
		case "not_helpful":
			helpful = 0
		default:
			http.Error(w, "verdict must be helpful or not_helpful", http.StatusBadRequest)
			return
		}

		rating, err := store.AddRating(r.Context(), submission.Rating{
			SubmissionID: id,
			UserID:       authmw.SubjectFromContext(r.Context()),
			Helpful:      helpful,
		})
		if errors.Is(err, submission.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(rating)
	}
}
