package importer

import (
	"encoding/csv"
	"fmt"
	"os"
)

// ReadCSVFile loads a local CSV export into the same grid shape the
// spreadsheet reader produces, so header detection and normalization work
// identically for both sources. Ragged rows are allowed; the export's
// footer lines often have fewer cells than the header.
func ReadCSVFile(path string) ([][]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv file: %w", err)
	}

	rows := make([][]any, len(records))
	for i, record := range records {
		row := make([]any, len(record))
		for j, cell := range record {
			row[j] = cell
		}
		rows[i] = row
	}
	return rows, nil
}
