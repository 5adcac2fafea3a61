package grading

import (
	"context"
	"log"
)

// EvalStatus classifies one attempt against the external evaluator.
type EvalStatus int

const (
	EvalSucceeded EvalStatus = iota
	// EvalUnavailable means no credential is configured.
	EvalUnavailable
	// EvalTransportFailed means the request could not complete.
	EvalTransportFailed
	// EvalMalformed means the response did not match the contract.
	EvalMalformed
)

// EvalOutcome is the explicit variant result of one evaluation attempt.
// Reason carries operator-facing detail for the failure variants.
type EvalOutcome struct {
	Status EvalStatus
	Result Result
	Reason string
}

// Evaluator is the external AI collaborator. Implementations make a single
// attempt and never retry; the Service applies the fallback policy.
type Evaluator interface {
	Evaluate(ctx context.Context, text string) EvalOutcome
}

// Service selects between the external evaluator and the heuristic path.
type Service struct {
	evaluator Evaluator // nil when no credential is configured
	scorer    *HeuristicScorer
}

func NewService(evaluator Evaluator, scorer *HeuristicScorer) *Service {
	if scorer == nil {
		scorer = NewHeuristicScorer()
	}
	return &Service{evaluator: evaluator, scorer: scorer}
}

// Analyze scores text with a single evaluator attempt, falling back to the
// heuristic path on any failure variant. fromAI reports whether the
// external path produced the result; callers surface the fallback notice
// when it is false.
func (s *Service) Analyze(ctx context.Context, text string) (result Result, fromAI bool) {
	if s.evaluator == nil {
		log.Printf("grading: no evaluator configured, using heuristic scorer")
		return s.scorer.Fallback(text), false
	}
	out := s.evaluator.Evaluate(ctx, text)
	switch out.Status {
	case EvalSucceeded:
		return out.Result, true
	case EvalUnavailable:
		log.Printf("grading: evaluator unavailable, using heuristic scorer")
	case EvalTransportFailed:
		log.Printf("grading: evaluator transport failure: %s", out.Reason)
	case EvalMalformed:
		log.Printf("grading: malformed evaluator response: %s", out.Reason)
	}
	return s.scorer.Fallback(text), false
}
