// Package csvexport renders cohort users as CSV. The column set is a
// fixed contract (id, phone, name) — it never reflects whatever the
// users table happens to store.
package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/llighterr/promo-task/internal/models"
)

var header = []string{"id", "phone", "name"}

// Writer emits one header row, then one row per user, in the order
// users are fed to it. It holds no rows itself, so a caller driving it
// from a batched cohort iterator streams the export end to end.
type Writer struct {
	cw          *csv.Writer
	wroteHeader bool
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{cw: csv.NewWriter(w)}
}

func (w *Writer) WriteUser(u models.CohortUser) error {
	if !w.wroteHeader {
		if err := w.cw.Write(header); err != nil {
			return err
		}
		w.wroteHeader = true
	}
	return w.cw.Write([]string{u.ID.String(), u.Phone, u.Name})
}

// Flush finishes the export. Call it once after the last user; it also
// emits the header for an empty cohort so the file is never zero rows.
func (w *Writer) Flush() error {
	if !w.wroteHeader {
		if err := w.cw.Write(header); err != nil {
			return err
		}
		w.wroteHeader = true
	}
	w.cw.Flush()
	return w.cw.Error()
}

// Filename is the download name convention: promotion-users-<day>.csv.
func Filename(now time.Time) string {
	return fmt.Sprintf("promotion-users-%s.csv", now.UTC().Format("2006-01-02"))
}
