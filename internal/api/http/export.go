package http

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/qalamlab/tabeer/internal/submission"
)

// GET /export/submissions.csv
// The BOM keeps Arabic text readable when the file lands in Excel.
func ExportSubmissionsCSVHandler(store submission.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := store.ExportRows(r.Context())
		if err != nil {
			http.Error(w, "export: "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="submissions.csv"`)
		_, _ = w.Write([]byte{0xEF, 0xBB, 0xBF})

		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"SubmissionID", "Student", "Text", "Grade", "CreatedAt"})
		for _, row := range rows {
			_ = cw.Write([]string{
				row.SubmissionID,
				row.Student,
				row.Text,
				strconv.FormatFloat(row.Grade, 'f', 1, 64),
				time.Unix(row.CreatedAt, 0).UTC().Format(time.RFC3339),
			})
		}
		cw.Flush()
	}
}
