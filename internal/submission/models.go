package submission

import (
	"github.com/qalamlab/tabeer/internal/grading"
)

// Submission is one student text plus its analysis and the instructor's
// follow-up. Analysis is stored as a JSON blob alongside the row.
type Submission struct {
	ID             string         `json:"id"`
	UserID         string         `json:"user_id"`
	Username       string         `json:"username,omitempty"`
	Text           string         `json:"text"`
	Source         string         `json:"source"` // "ai" or "heuristic"
	Analysis       grading.Result `json:"analysis"`
	Reflection     string         `json:"reflection,omitempty"`
	TeacherGrade   *float64       `json:"teacher_grade,omitempty"`
	TeacherComment string         `json:"teacher_comment,omitempty"`
	CreatedAt      int64          `json:"created_at"`
}

// Rating is a student's helpfulness vote on an analysis.
type Rating struct {
	ID           string `json:"id"`
	SubmissionID string `json:"submission_id"`
	UserID       string `json:"user_id"`
	Helpful      int    `json:"helpful"` // 1 helpful, 0 not
	CreatedAt    int64  `json:"created_at"`
}

// Counts summarizes the dataset for the admin overview.
type Counts struct {
	Users       int `json:"users"`
	Submissions int `json:"submissions"`
	Ratings     int `json:"ratings"`
}

// ExportRow is one line of the instructor CSV export.
type ExportRow struct {
	SubmissionID string
	Student      string
	Text         string
	Grade        float64
	CreatedAt    int64
}
