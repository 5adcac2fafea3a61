package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/qalamlab/tabeer/internal/audit"
	authmw "github.com/qalamlab/tabeer/internal/auth/middleware"
	"github.com/qalamlab/tabeer/internal/db"
	"github.com/qalamlab/tabeer/internal/grading"
	"github.com/qalamlab/tabeer/internal/rbac"
	"github.com/qalamlab/tabeer/internal/submission"
)

// fakeStore keeps everything in memory; ids are assigned sequentially.
type fakeStore struct {
	subs    map[string]submission.Submission
	ratings []submission.Rating
	nextID  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{subs: map[string]submission.Submission{}}
}

func (f *fakeStore) Create(_ context.Context, sub submission.Submission) (submission.Submission, error) {
	f.nextID++
	sub.ID = fmt.Sprintf("sub-%d", f.nextID)
	sub.CreatedAt = int64(f.nextID)
	f.subs[sub.ID] = sub
	return sub, nil
}

func (f *fakeStore) Get(_ context.Context, id string) (submission.Submission, error) {
	sub, ok := f.subs[id]
	if !ok {
		return submission.Submission{}, submission.ErrNotFound
	}
	return sub, nil
}

func (f *fakeStore) List(_ context.Context, opts submission.ListOpts) ([]submission.Submission, error) {
	out := []submission.Submission{}
	for _, sub := range f.subs {
		if opts.UserID == "" || sub.UserID == opts.UserID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (f *fakeStore) SaveReflection(_ context.Context, id, userID, reflection string) error {
	sub, ok := f.subs[id]
	if !ok || sub.UserID != userID {
		return submission.ErrNotFound
	}
	sub.Reflection = reflection
	f.subs[id] = sub
	return nil
}

func (f *fakeStore) ApplyTeacherGrade(_ context.Context, id string, grade float64, comment string) error {
	sub, ok := f.subs[id]
	if !ok {
		return submission.ErrNotFound
	}
	sub.TeacherGrade = &grade
	sub.TeacherComment = comment
	f.subs[id] = sub
	return nil
}

func (f *fakeStore) AddRating(_ context.Context, r submission.Rating) (submission.Rating, error) {
	if _, ok := f.subs[r.SubmissionID]; !ok {
		return submission.Rating{}, submission.ErrNotFound
	}
	r.ID = fmt.Sprintf("rating-%d", len(f.ratings)+1)
	f.ratings = append(f.ratings, r)
	return r, nil
}

func (f *fakeStore) RecentRatings(_ context.Context, _ int) ([]submission.Rating, error) {
	return f.ratings, nil
}

func (f *fakeStore) Counts(_ context.Context) (submission.Counts, error) {
	return submission.Counts{Submissions: len(f.subs), Ratings: len(f.ratings)}, nil
}

func (f *fakeStore) ExportRows(_ context.Context) ([]submission.ExportRow, error) {
	out := []submission.ExportRow{}
	for _, sub := range f.subs {
		grade := sub.Analysis.AIGrade
		if sub.TeacherGrade != nil {
			grade = *sub.TeacherGrade
		}
		out = append(out, submission.ExportRow{
			SubmissionID: sub.ID, Student: sub.Username, Text: sub.Text,
			Grade: grade, CreatedAt: sub.CreatedAt,
		})
	}
	return out, nil
}

func testEvents(t *testing.T) *audit.EventRepo {
	t.Helper()
	conn, err := db.Open(context.Background(), db.DriverSQLite,
		fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return audit.NewEventRepo(conn)
}

func asUser(r *http.Request, sub, role string) *http.Request {
	ctx := authmw.WithSubject(r.Context(), sub)
	ctx = rbac.WithRole(ctx, role)
	return r.WithContext(ctx)
}

func withURLParam(r *http.Request, key, val string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, val)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestCreateSubmissionHeuristicNotice(t *testing.T) {
	store := newFakeStore()
	svc := grading.NewService(nil, grading.NewHeuristicScorer(grading.WithJitter(0)))
	h := CreateSubmissionHandler(store, svc, testEvents(t))

	body := strings.NewReader(`{"text":"كتب الطالب نصًا عن رحلته إلى الجبل."}`)
	r := asUser(httptest.NewRequest("POST", "/submissions", body), "u1", "student")
	w := httptest.NewRecorder()
	h(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp createSubmissionResp
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Source != "heuristic" {
		t.Errorf("Source = %q", resp.Source)
	}
	if resp.Notice == "" {
		t.Error("expected fallback notice for heuristic analysis")
	}
	if resp.UserID != "u1" {
		t.Errorf("UserID = %q", resp.UserID)
	}
	if len(resp.Analysis.RubricBreakdown) != len(grading.DefaultRubric()) {
		t.Errorf("breakdown len = %d", len(resp.Analysis.RubricBreakdown))
	}
}

func TestCreateSubmissionRejectsEmptyText(t *testing.T) {
	h := CreateSubmissionHandler(newFakeStore(), grading.NewService(nil, nil), testEvents(t))
	r := asUser(httptest.NewRequest("POST", "/submissions", strings.NewReader(`{"text":"   "}`)), "u1", "student")
	w := httptest.NewRecorder()
	h(w, r)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestListSubmissionsScopedToStudent(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()
	store.Create(ctx, submission.Submission{UserID: "u1", Text: "a"})
	store.Create(ctx, submission.Submission{UserID: "u2", Text: "b"})

	h := ListSubmissionsHandler(store)

	// student sees only their own, even when asking for another user
	r := asUser(httptest.NewRequest("GET", "/submissions?user_id=u2", nil), "u1", "student")
	w := httptest.NewRecorder()
	h(w, r)
	var subs []submission.Submission
	if err := json.Unmarshal(w.Body.Bytes(), &subs); err != nil {
		t.Fatal(err)
	}
	if len(subs) != 1 || subs[0].UserID != "u1" {
		t.Fatalf("student scope broken: %+v", subs)
	}

	// teacher sees everything
	r = asUser(httptest.NewRequest("GET", "/submissions", nil), "t1", "teacher")
	w = httptest.NewRecorder()
	h(w, r)
	if err := json.Unmarshal(w.Body.Bytes(), &subs); err != nil {
		t.Fatal(err)
	}
	if len(subs) != 2 {
		t.Fatalf("teacher sees %d submissions, want 2", len(subs))
	}
}

func TestGetSubmissionOwnership(t *testing.T) {
	store := newFakeStore()
	created, _ := store.Create(context.Background(), submission.Submission{UserID: "u1", Text: "a"})
	h := GetSubmissionHandler(store)

	r := asUser(withURLParam(httptest.NewRequest("GET", "/", nil), "submissionID", created.ID), "u2", "student")
	w := httptest.NewRecorder()
	h(w, r)
	if w.Code != http.StatusForbidden {
		t.Fatalf("other student: status = %d, want 403", w.Code)
	}

	r = asUser(withURLParam(httptest.NewRequest("GET", "/", nil), "submissionID", created.ID), "t1", "teacher")
	w = httptest.NewRecorder()
	h(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("teacher: status = %d, want 200", w.Code)
	}
}

func TestSaveReflection(t *testing.T) {
	store := newFakeStore()
	created, _ := store.Create(context.Background(), submission.Submission{UserID: "u1", Text: "a"})
	h := SaveReflectionHandler(store)

	body := strings.NewReader(`{"reflection":"سأنتبه للترقيم"}`)
	r := asUser(withURLParam(httptest.NewRequest("POST", "/", body), "submissionID", created.ID), "u1", "student")
	w := httptest.NewRecorder()
	h(w, r)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d", w.Code)
	}
	got, _ := store.Get(context.Background(), created.ID)
	if got.Reflection != "سأنتبه للترقيم" {
		t.Errorf("Reflection = %q", got.Reflection)
	}
}

func TestRateSubmissionVerdicts(t *testing.T) {
	store := newFakeStore()
	created, _ := store.Create(context.Background(), submission.Submission{UserID: "u1", Text: "a"})
	h := RateSubmissionHandler(store)

	r := asUser(withURLParam(httptest.NewRequest("POST", "/", strings.NewReader(`{"verdict":"helpful"}`)), "submissionID", created.ID), "u1", "student")
	w := httptest.NewRecorder()
	h(w, r)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	var rating submission.Rating
	if err := json.Unmarshal(w.Body.Bytes(), &rating); err != nil {
		t.Fatal(err)
	}
	if rating.Helpful != 1 {
		t.Errorf("Helpful = %d", rating.Helpful)
	}

	r = asUser(withURLParam(httptest.NewRequest("POST", "/", strings.NewReader(`{"verdict":"meh"}`)), "submissionID", created.ID), "u1", "student")
	w = httptest.NewRecorder()
	h(w, r)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad verdict: status = %d", w.Code)
	}
}

func TestApplyTeacherGradeValidation(t *testing.T) {
	store := newFakeStore()
	created, _ := store.Create(context.Background(), submission.Submission{UserID: "u1", Text: "a"})
	h := ApplyTeacherGradeHandler(store, testEvents(t))

	r := asUser(withURLParam(httptest.NewRequest("POST", "/", strings.NewReader(`{"grade":11}`)), "submissionID", created.ID), "t1", "teacher")
	w := httptest.NewRecorder()
	h(w, r)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("out-of-range grade: status = %d", w.Code)
	}

	r = asUser(withURLParam(httptest.NewRequest("POST", "/", strings.NewReader(`{"grade":8.5,"comment":"أحسنت"}`)), "submissionID", created.ID), "t1", "teacher")
	w = httptest.NewRecorder()
	h(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var sub submission.Submission
	if err := json.Unmarshal(w.Body.Bytes(), &sub); err != nil {
		t.Fatal(err)
	}
	if sub.TeacherGrade == nil || *sub.TeacherGrade != 8.5 {
		t.Errorf("TeacherGrade = %v", sub.TeacherGrade)
	}
}

func TestExportCSVHasBOMAndHeader(t *testing.T) {
	store := newFakeStore()
	store.Create(context.Background(), submission.Submission{
		UserID: "u1", Username: "sara", Text: "نص",
		Analysis: grading.Result{AIGrade: 6.3},
	})
	h := ExportSubmissionsCSVHandler(store)

	w := httptest.NewRecorder()
	h(w, asUser(httptest.NewRequest("GET", "/export/submissions.csv", nil), "t1", "teacher"))

	body := w.Body.Bytes()
	if len(body) < 3 || body[0] != 0xEF || body[1] != 0xBB || body[2] != 0xBF {
		t.Fatal("missing UTF-8 BOM")
	}
	text := string(body[3:])
	if !strings.HasPrefix(text, "SubmissionID,Student,Text,Grade,CreatedAt") {
		t.Errorf("header = %q", strings.SplitN(text, "\n", 2)[0])
	}
	if !strings.Contains(text, "6.3") {
		t.Errorf("grade missing from export:\n%s", text)
	}
}

func TestTopicsHandler(t *testing.T) {
	w := httptest.NewRecorder()
	TopicsHandler()(w, httptest.NewRequest("GET", "/topics", nil))
	var resp map[string][]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp["topics"]) == 0 {
		t.Error("no topics returned")
	}
}

func TestOverviewHandler(t *testing.T) {
	store := newFakeStore()
	created, _ := store.Create(context.Background(), submission.Submission{UserID: "u1", Text: "a"})
	store.AddRating(context.Background(), submission.Rating{SubmissionID: created.ID, UserID: "u1", Helpful: 1})

	w := httptest.NewRecorder()
	OverviewHandler(store)(w, asUser(httptest.NewRequest("GET", "/admin/overview", nil), "a1", "admin"))

	var resp struct {
		Counts            submission.Counts       `json:"counts"`
		RecentSubmissions []submission.Submission `json:"recent_submissions"`
		RecentRatings     []submission.Rating     `json:"recent_ratings"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Counts.Submissions != 1 || resp.Counts.Ratings != 1 {
		t.Errorf("counts = %+v", resp.Counts)
	}
	if len(resp.RecentSubmissions) != 1 || len(resp.RecentRatings) != 1 {
		t.Errorf("recent lists: %d subs, %d ratings", len(resp.RecentSubmissions), len(resp.RecentRatings))
	}
}
