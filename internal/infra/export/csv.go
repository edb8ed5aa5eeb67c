// Package export writes extracted disclosures to flat files and terminals.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"disclosure-feed/internal/domain/entity"
)

// CSVHeader is the column order of CSV dumps.
var CSVHeader = []string{"time", "code", "company_name", "title", "document_url", "exchange", "xbrl_url", "place"}

// FileName returns the conventional dump name for date, e.g. tdnet_data_20250611.csv.
func FileName(date string) string {
	return fmt.Sprintf("tdnet_data_%s.csv", date)
}

// WriteCSV writes the header followed by one line per record, in order.
func WriteCSV(w io.Writer, records []entity.Disclosure) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range records {
		row := []string{r.Time, r.Code, r.CompanyName, r.Title, r.DocumentURL, r.Exchange, r.XBRLURL, r.Place}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteCSVFile writes records to path, creating parent directories as needed.
// The file is written to a temporary sibling first and renamed into place.
func WriteCSVFile(path string, records []entity.Disclosure) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tdnet-*.csv")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := WriteCSV(tmp, records); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}
