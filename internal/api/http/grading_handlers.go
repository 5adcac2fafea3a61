package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/qalamlab/tabeer/internal/audit"
	authmw "github.com/qalamlab/tabeer/internal/auth/middleware"
	"github.com/qalamlab/tabeer/internal/submission"
)

type applyGradeReq struct {
	Grade   *float64 `json:"grade"` // on 10
	Comment string   `json:"comment,omitempty"`
}

// POST /submissions/{submissionID}/grade
func ApplyTeacherGradeHandler(store submission.Store, events *audit.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "submissionID")
		var req applyGradeReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Grade == nil || *req.Grade < 0 || *req.Grade > 10 {
			http.Error(w, "grade must be between 0 and 10", http.StatusBadRequest)
			return
		}

		err := store.ApplyTeacherGrade(r.Context(), id, *req.Grade, req.Comment)
		if errors.Is(err, submission.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "apply grade: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = events.Append(r.Context(), audit.EventSubmissionGraded, id, map[string]any{
			"grader": authmw.SubjectFromContext(r.Context()),
			"grade":  *req.Grade,
		})

		sub, err := store.Get(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(sub)
	}
}
