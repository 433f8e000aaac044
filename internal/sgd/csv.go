package sgd

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/roach88/dpvalidate/internal/errs"
)

// ReadCSV parses a numeric CSV into a Dataset.
//
// labelColumn selects the label; every other column is a feature, in file
// order. A first row that does not parse as numbers is treated as a header.
func ReadCSV(r io.Reader, labelColumn int) (Dataset, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return Dataset{}, fmt.Errorf("read csv: %w", err)
	}
	if len(records) > 0 && !numericRow(records[0]) {
		records = records[1:]
	}
	if len(records) == 0 {
		return Dataset{}, errs.Prepend("data", errs.Shape("dataset is empty"))
	}

	width := len(records[0])
	if labelColumn < 0 || labelColumn >= width {
		return Dataset{}, errs.Prepend("label_column", errs.Invalid("must be between 0 and %d, got %d", width-1, labelColumn))
	}

	var d Dataset
	for i, rec := range records {
		row := make([]float64, 0, width-1)
		for j, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return Dataset{}, errs.Prepend("data", errs.Type("row %d column %d is not a number: %q", i+1, j, field))
			}
			if j == labelColumn {
				d.Y = append(d.Y, v)
				continue
			}
			row = append(row, v)
		}
		d.X = append(d.X, row)
	}
	return d, nil
}

func numericRow(rec []string) bool {
	for _, field := range rec {
		if _, err := strconv.ParseFloat(strings.TrimSpace(field), 64); err != nil {
			return false
		}
	}
	return true
}
