package export

import (
	"fmt"
	"io"
	"strings"

	"disclosure-feed/internal/domain/entity"

	"github.com/mattn/go-runewidth"
)

var tableHeader = []string{"時刻", "コード", "会社名", "表題", "取引所"}

// WriteTable renders records as a pipe table padded by display width, so
// full-width Japanese text lines up in a terminal. Cells wider than maxWidth
// are truncated with "…"; maxWidth <= 0 disables truncation.
func WriteTable(w io.Writer, records []entity.Disclosure, maxWidth int) error {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, append([]string(nil), tableHeader...))
	for _, r := range records {
		rows = append(rows, []string{r.Time, r.Code, r.CompanyName, r.Title, r.Exchange})
	}

	if maxWidth > 0 {
		for _, row := range rows {
			for i, cell := range row {
				row[i] = runewidth.Truncate(cell, maxWidth, "…")
			}
		}
	}

	widths := make([]int, len(tableHeader))
	for _, row := range rows {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	for n, row := range rows {
		if _, err := fmt.Fprintln(w, formatRow(row, widths)); err != nil {
			return err
		}
		if n == 0 {
			sep := make([]string, len(widths))
			for i, wd := range widths {
				sep[i] = strings.Repeat("-", wd)
			}
			if _, err := fmt.Fprintln(w, formatRow(sep, widths)); err != nil {
				return err
			}
		}
	}
	return nil
}

func formatRow(row []string, widths []int) string {
	var sb strings.Builder
	sb.WriteString("|")
	for i, cell := range row {
		sb.WriteString(" ")
		sb.WriteString(runewidth.FillRight(cell, widths[i]))
		sb.WriteString(" |")
	}
	return sb.String()
}

// WritePreview prints the first n records field by field. Records without a
// linked document show "(none)" as their document_url.
func WritePreview(w io.Writer, records []entity.Disclosure, n int) error {
	if n > len(records) {
		n = len(records)
	}
	for i := 0; i < n; i++ {
		r := records[i]
		doc := "(none)"
		if r.HasDocument() {
			doc = r.DocumentURL
		}
		fields := [][2]string{
			{"time", r.Time},
			{"code", r.Code},
			{"company_name", r.CompanyName},
			{"title", r.Title},
			{"document_url", doc},
			{"exchange", r.Exchange},
		}
		if _, err := fmt.Fprintf(w, "\nRecord %d:\n", i+1); err != nil {
			return err
		}
		for _, f := range fields {
			if _, err := fmt.Fprintf(w, "  %s: %s\n", f[0], f[1]); err != nil {
				return err
			}
		}
	}
	return nil
}
