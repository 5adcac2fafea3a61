package submission

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) Create(ctx context.Context, sub Submission) (Submission, error) {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.CreatedAt == 0 {
		sub.CreatedAt = time.Now().Unix()
	}
	aj, err := json.Marshal(sub.Analysis)
	if err != nil {
		return Submission{}, err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO submissions
		(id,user_id,text,source,analysis_json,ai_grade,reflection,teacher_comment,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,'','',$7)`,
		sub.ID, sub.UserID, sub.Text, sub.Source, string(aj), sub.Analysis.AIGrade, sub.CreatedAt)
	if err != nil {
		return Submission{}, err
	}
	return s.Get(ctx, sub.ID)
}

func (s *SQLStore) Get(ctx context.Context, id string) (Submission, error) {
	row := s.db.QueryRowContext(ctx, `SELECT s.id,s.user_id,COALESCE(u.username,''),s.text,s.source,
		s.analysis_json,s.reflection,s.teacher_grade,s.teacher_comment,s.created_at
		FROM submissions s LEFT JOIN users u ON u.id=s.user_id WHERE s.id=$1`, id)
	return scanSubmission(row)
}

func (s *SQLStore) List(ctx context.Context, opts ListOpts) ([]Submission, error) {
	limit := opts.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := `SELECT s.id,s.user_id,COALESCE(u.username,''),s.text,s.source,
		s.analysis_json,s.reflection,s.teacher_grade,s.teacher_comment,s.created_at
		FROM submissions s LEFT JOIN users u ON u.id=s.user_id`
	args := []any{}
	if opts.UserID != "" {
		q += ` WHERE s.user_id=$1 ORDER BY s.created_at DESC LIMIT $2 OFFSET $3`
		args = append(args, opts.UserID, limit, opts.Offset)
	} else {
		q += ` ORDER BY s.created_at DESC LIMIT $1 OFFSET $2`
		args = append(args, limit, opts.Offset)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *SQLStore) SaveReflection(ctx context.Context, id, userID, reflection string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE submissions SET reflection=$1 WHERE id=$2 AND user_id=$3`,
		reflection, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) ApplyTeacherGrade(ctx context.Context, id string, grade float64, comment string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE submissions SET teacher_grade=$1, teacher_comment=$2 WHERE id=$3`,
		grade, comment, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) AddRating(ctx context.Context, r Rating) (Rating, error) {
	// rating must reference a stored submission
	var exist int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM submissions WHERE id=$1`, r.SubmissionID).Scan(&exist); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Rating{}, ErrNotFound
		}
		return Rating{}, err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt == 0 {
		r.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO ratings (id,submission_id,user_id,helpful,created_at)
		VALUES ($1,$2,$3,$4,$5)`,
		r.ID, r.SubmissionID, r.UserID, r.Helpful, r.CreatedAt)
	if err != nil {
		return Rating{}, err
	}
	return r, nil
}

func (s *SQLStore) RecentRatings(ctx context.Context, limit int) ([]Rating, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id,submission_id,user_id,helpful,created_at
		FROM ratings ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Rating{}
	for rows.Next() {
		var r Rating
		if err := rows.Scan(&r.ID, &r.SubmissionID, &r.UserID, &r.Helpful, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&c.Users); err != nil {
		return Counts{}, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM submissions`).Scan(&c.Submissions); err != nil {
		return Counts{}, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ratings`).Scan(&c.Ratings); err != nil {
		return Counts{}, err
	}
	return c, nil
}

// ExportRows prefers the instructor's grade over the automatic one.
func (s *SQLStore) ExportRows(ctx context.Context) ([]ExportRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT s.id,COALESCE(u.username,s.user_id),s.text,
		COALESCE(s.teacher_grade,s.ai_grade),s.created_at
		FROM submissions s LEFT JOIN users u ON u.id=s.user_id
		ORDER BY s.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ExportRow{}
	for rows.Next() {
		var r ExportRow
		if err := rows.Scan(&r.SubmissionID, &r.Student, &r.Text, &r.Grade, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (Submission, error) {
	var sub Submission
	var ajson string
	var grade sql.NullFloat64
	if err := row.Scan(&sub.ID, &sub.UserID, &sub.Username, &sub.Text, &sub.Source,
		&ajson, &sub.Reflection, &grade, &sub.TeacherComment, &sub.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Submission{}, ErrNotFound
		}
		return Submission{}, err
	}
	if err := json.Unmarshal([]byte(ajson), &sub.Analysis); err != nil {
		return Submission{}, err
	}
	if grade.Valid {
		sub.TeacherGrade = &grade.Float64
	}
	return sub, nil
}
