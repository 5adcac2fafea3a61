package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/qalamlab/tabeer/internal/grading"
)

// chatReply wraps a model payload in the chat completions envelope.
func chatReply(t *testing.T, payload map[string]any) string {
	t.Helper()
	content, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	envelope := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": string(content)}},
		},
	}
	out, err := json.Marshal(envelope)
	if err != nil {
		t.Fatal(err)
	}
	return string(out)
}

// validPayload builds a contract-complete model reply scoring 62.5% on every
// criterion.
func validPayload() map[string]any {
	breakdown := make([]map[string]any, 0, 11)
	for _, c := range grading.DefaultRubric() {
		breakdown = append(breakdown, map[string]any{
			"key":            c.Key,
			"criterion":      c.Name,
			"points_awarded": c.MaxPoints * 0.625,
			"max_points":     c.MaxPoints,
			"level":          "مقبول",
			"comment":        "تعليق",
		})
	}
	return map[string]any{
		"fixed_text":       "النص بعد التصحيح.",
		"mistakes":         []string{"خطأ إملائي"},
		"benefits":         []string{"أسلوب واضح"},
		"ai_grade":         6.3,
		"total_points":     62.5,
		"rubric_total":     100,
		"rubric_breakdown": breakdown,
	}
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "test-model"})
}

func TestEvaluateNoAPIKeyUnavailable(t *testing.T) {
	c := NewClient(Config{})
	out := c.Evaluate(context.Background(), "نص")
	if out.Status != grading.EvalUnavailable {
		t.Fatalf("Status = %d, want EvalUnavailable", out.Status)
	}
}

func TestEvaluateSuccess(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		fmt.Fprint(w, chatReply(t, validPayload()))
	}))
	defer srv.Close()

	out := newTestClient(srv).Evaluate(context.Background(), "نص الطالب")
	if out.Status != grading.EvalSucceeded {
		t.Fatalf("Status = %d, reason %q", out.Status, out.Reason)
	}
	if !strings.HasPrefix(gotAuth, "Bearer test-key") {
		t.Errorf("Authorization = %q", gotAuth)
	}
	res := out.Result
	if res.FixedText != "النص بعد التصحيح." {
		t.Errorf("FixedText = %q", res.FixedText)
	}
	if res.TotalPoints != 62.5 || res.AIGrade != 6.3 || res.RubricTotal != 100 {
		t.Errorf("aggregates: total=%v grade=%v rubric=%v", res.TotalPoints, res.AIGrade, res.RubricTotal)
	}
	rubric := grading.DefaultRubric()
	if len(res.RubricBreakdown) != len(rubric) {
		t.Fatalf("breakdown len = %d", len(res.RubricBreakdown))
	}
	for i, cs := range res.RubricBreakdown {
		if cs.Key != rubric[i].Key {
			t.Errorf("breakdown[%d].Key = %q, want %q", i, cs.Key, rubric[i].Key)
		}
	}
}

func TestEvaluateMissingTotalsNormalized(t *testing.T) {
	payload := validPayload()
	delete(payload, "total_points")
	delete(payload, "ai_grade")
	delete(payload, "rubric_total")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatReply(t, payload))
	}))
	defer srv.Close()

	out := newTestClient(srv).Evaluate(context.Background(), "نص")
	if out.Status != grading.EvalSucceeded {
		t.Fatalf("Status = %d, reason %q", out.Status, out.Reason)
	}
	if math.Abs(out.Result.TotalPoints-62.5) > 0.01 {
		t.Errorf("TotalPoints = %v, want ~62.5", out.Result.TotalPoints)
	}
	if out.Result.AIGrade != 6.3 {
		t.Errorf("AIGrade = %v, want 6.3", out.Result.AIGrade)
	}
	if out.Result.RubricTotal != grading.RubricTotal {
		t.Errorf("RubricTotal = %v", out.Result.RubricTotal)
	}
}

func TestEvaluateServerErrorTransportFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	out := newTestClient(srv).Evaluate(context.Background(), "نص")
	if out.Status != grading.EvalTransportFailed {
		t.Fatalf("Status = %d, want EvalTransportFailed", out.Status)
	}
	if !strings.Contains(out.Reason, "500") {
		t.Errorf("Reason = %q", out.Reason)
	}
}

func TestEvaluateUnreachableHostTransportFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	out := newTestClient(srv).Evaluate(context.Background(), "نص")
	if out.Status != grading.EvalTransportFailed {
		t.Fatalf("Status = %d, want EvalTransportFailed", out.Status)
	}
}

func TestEvaluateNonJSONContentMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		envelope := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "عذرًا، لا أستطيع التقييم الآن."}},
			},
		}
		json.NewEncoder(w).Encode(envelope)
	}))
	defer srv.Close()

	out := newTestClient(srv).Evaluate(context.Background(), "نص")
	if out.Status != grading.EvalMalformed {
		t.Fatalf("Status = %d, want EvalMalformed", out.Status)
	}
}

func TestEvaluateBreakdownKeyMismatchMalformed(t *testing.T) {
	payload := validPayload()
	rows := payload["rubric_breakdown"].([]map[string]any)
	rows[0]["key"] = "style" // not a rubric key
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatReply(t, payload))
	}))
	defer srv.Close()

	out := newTestClient(srv).Evaluate(context.Background(), "نص")
	if out.Status != grading.EvalMalformed {
		t.Fatalf("Status = %d, want EvalMalformed", out.Status)
	}
}

func TestEvaluateMissingFeedbackMalformed(t *testing.T) {
	payload := validPayload()
	payload["mistakes"] = []string{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatReply(t, payload))
	}))
	defer srv.Close()

	out := newTestClient(srv).Evaluate(context.Background(), "نص")
	if out.Status != grading.EvalMalformed {
		t.Fatalf("Status = %d, want EvalMalformed", out.Status)
	}
}

func TestDecodeResultNonNumericPointsTreatedAsZero(t *testing.T) {
	payload := validPayload()
	rows := payload["rubric_breakdown"].([]map[string]any)
	rows[2]["points_awarded"] = "N/A"
	delete(payload, "total_points")
	delete(payload, "ai_grade")
	content, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}

	out := NewClient(Config{APIKey: "k"}).decodeResult(string(content))
	if out.Status != grading.EvalSucceeded {
		t.Fatalf("Status = %d, reason %q", out.Status, out.Reason)
	}
	if out.Result.RubricBreakdown[2].PointsAwarded != 0 {
		t.Errorf("PointsAwarded = %v, want 0", out.Result.RubricBreakdown[2].PointsAwarded)
	}
}
