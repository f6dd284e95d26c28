package tasks

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// ContentType returns the media type Export writes for format.
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case "csv":
		return "text/csv; charset=utf-8"
	case "pdf":
		return "application/pdf"
	default:
		return "application/json"
	}
}

// Export writes the view's items in the given format.
func Export(w io.Writer, format string, v View) error {
	switch strings.ToLower(format) {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v.Items)
	case "csv":
		return exportCSV(w, v.Items)
	case "pdf":
		return exportPDF(w, v)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func exportCSV(w io.Writer, items []Task) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "text", "priority", "completed", "created_at", "completed_at"})
	for _, t := range items {
		_ = cw.Write([]string{
			strconv.FormatInt(t.ID, 10),
			t.Text,
			string(t.Priority),
			strconv.FormatBool(t.Completed),
			t.CreatedAt.Format(time.RFC3339),
			formatOptionalTime(t.CompletedAt),
		})
	}
	cw.Flush()
	return cw.Error()
}

func exportPDF(w io.Writer, v View) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Task List")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Total: %d  Completed: %d  Pending: %d  Filter: %s",
		v.Stats.Total, v.Stats.Completed, v.Stats.Pending, v.Filter))
	pdf.Ln(10)

	for _, t := range v.Items {
		mark := "[ ]"
		if t.Completed {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s #%d (%s) %s - created %s", mark, t.ID, t.Priority, t.Text,
			t.CreatedAt.Format("2006-01-02"))
		if t.CompletedAt != nil {
			line += ", completed " + t.CompletedAt.Format("2006-01-02")
		}
		pdf.MultiCell(0, 6, tr(line), "0", "L", false)
	}
	return pdf.Output(w)
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
