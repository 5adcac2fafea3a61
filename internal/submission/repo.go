package submission

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("submission not found")

// ListOpts filters and pages List. UserID empty means all users.
type ListOpts struct {
	UserID string
	Limit  int
	Offset int
}

// Store is the persistence surface for submissions, ratings, and the
// aggregate views built on them.
type Store interface {
	Create(ctx context.Context, sub Submission) (Submission, error)
	Get(ctx context.Context, id string) (Submission, error)
	List(ctx context.Context, opts ListOpts) ([]Submission, error)
	SaveReflection(ctx context.Context, id, userID, reflection string) error
	ApplyTeacherGrade(ctx context.Context, id string, grade float64, comment string) error
	AddRating(ctx context.Context, r Rating) (Rating, error)
	RecentRatings(ctx context.Context, limit int) ([]Rating, error)
	Counts(ctx context.Context) (Counts, error)
	ExportRows(ctx context.Context) ([]ExportRow, error)
}
