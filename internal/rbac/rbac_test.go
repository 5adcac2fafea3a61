package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDefaultPolicy(t *testing.T) {
	c := NewChecker(nil)
	cases := []struct {
		role, perm string
		want       bool
	}{
		{"student", "submission:create", true},
		{"student", "submission:view-all", false},
		{"student", "submission:grade", false},
		{"teacher", "submission:grade", true},
		{"teacher", "submission:export", true},
		{"teacher", "users:bulk_upsert", true},
		{"admin", "anything:at_all", true},
		{"", "submission:create", false},
		{"ghost", "submission:create", false},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestWildcardPrefixMatch(t *testing.T) {
	c := NewChecker(map[string][]string{"auditor": {"submission:*"}})
	if !c.Has("auditor", "submission:view-all") {
		t.Error("prefix wildcard should match")
	}
	if c.Has("auditor", "users:list") {
		t.Error("prefix wildcard matched outside its prefix")
	}
}

func TestRequireMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	h := Require("submission:grade")(ok)

	r := httptest.NewRequest("POST", "/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r.WithContext(WithRole(r.Context(), "teacher")))
	if w.Code != 200 {
		t.Errorf("teacher: status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, r.WithContext(WithRole(r.Context(), "student")))
	if w.Code != http.StatusForbidden {
		t.Errorf("student: status = %d", w.Code)
	}

	// no role in context at all
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusForbidden {
		t.Errorf("anonymous: status = %d", w.Code)
	}
}

func TestRequireAnyMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	h := RequireAny("submission:view-own", "submission:view-all")(ok)

	r := httptest.NewRequest("GET", "/", nil)
	for _, role := range []string{"student", "teacher", "admin"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r.WithContext(WithRole(r.Context(), role)))
		if w.Code != 200 {
			t.Errorf("%s: status = %d", role, w.Code)
		}
	}
}
