package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/qalamlab/tabeer/internal/audit"
	authmw "github.com/qalamlab/tabeer/internal/auth/middleware"
	"github.com/qalamlab/tabeer/internal/grading"
	"github.com/qalamlab/tabeer/internal/rbac"
	"github.com/qalamlab/tabeer/internal/submission"
)

// Shown to the student when the analysis came from the local heuristic
// instead of the evaluation service.
const fallbackNotice = "تعذّر الاتصال بخدمة التقييم، فتم إنشاء تقييم تقريبي محليًا."

type createSubmissionResp struct {
	submission.Submission
	Notice string `json:"notice,omitempty"`
}

// POST /submissions  { "text": "..." }
func CreateSubmissionHandler(store submission.Store, svc *grading.Service, events *audit.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			http.Error(w, "text required", http.StatusBadRequest)
			return
		}

		res, fromAI := svc.Analyze(r.Context(), req.Text)
		source := "heuristic"
		if fromAI {
			source = "ai"
		}
		sub, err := store.Create(r.Context(), submission.Submission{
			UserID:   userID,
			Text:     req.Text,
			Source:   source,
			Analysis: res,
		})
		if err != nil {
			http.Error(w, "store submission: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = events.Append(r.Context(), audit.EventSubmissionCreated, sub.ID, map[string]any{
			"user_id": userID, "source": source, "ai_grade": res.AIGrade,
		})

		out := createSubmissionResp{Submission: sub}
		if !fromAI {
			out.Notice = fallbackNotice
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(out)
	}
}

// GET /submissions?user_id=&limit=&offset=
// Students only ever see their own rows; view-all roles may filter by user.
func ListSubmissionsHandler(store submission.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		opts := submission.ListOpts{
			Limit:  atoiOr(r.URL.Query().Get("limit"), 0),
			Offset: atoiOr(r.URL.Query().Get("offset"), 0),
		}
		if canViewAll(ctx) {
			opts.UserID = r.URL.Query().Get("user_id")
		} else {
			opts.UserID = authmw.SubjectFromContext(ctx)
		}
		subs, err := store.List(ctx, opts)
		if err != nil {
			http.Error(w, "list submissions: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(subs)
	}
}

// GET /submissions/{submissionID}
func GetSubmissionHandler(store submission.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "submissionID")
		sub, err := store.Get(r.Context(), id)
		if errors.Is(err, submission.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if sub.UserID != authmw.SubjectFromContext(r.Context()) && !canViewAll(r.Context()) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		_ = json.NewEncoder(w).Encode(sub)
	}
}

// POST /submissions/{submissionID}/reflection  { "reflection": "..." }
func SaveReflectionHandler(store submission.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "submissionID")
		var req struct {
			Reflection string `json:"reflection"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		userID := authmw.SubjectFromContext(r.Context())
		err := store.SaveReflection(r.Context(), id, userID, req.Reflection)
		if errors.Is(err, submission.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /topics — suggested writing prompts for the editor.
func TopicsHandler() http.HandlerFunc {
	topics := []string{
		"صف رحلة قمت بها وأثرها عليك.",
		"اكتب عن شخصية ملهمة في حياتك.",
		"ما رأيك في أثر التقنية على لغتنا العربية؟",
	}
	return func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string][]string{"topics": topics})
	}
}

func canViewAll(ctx context.Context) bool {
	return rbac.NewChecker(nil).Has(rbac.RoleFromContext(ctx), "submission:view-all")
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
