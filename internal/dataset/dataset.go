// Package dataset reads delimited entity datasets and writes mapping output:
// the mapped table, the summary statistics, and optional reference slices of
// problematic rows.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kgfoundry/biomapper/pkg/types"
)

// placeholders are cell values that mean "no value" in common metabolomics
// exports.
var placeholders = map[string]bool{
	"":         true,
	"-":        true,
	"NO_MATCH": true,
	"NA":       true,
	"N/A":      true,
}

// Dataset is one loaded input table.
type Dataset struct {
	// Path is the source file path.
	Path string

	// Columns are the header columns in file order.
	Columns []string

	// Entities holds one entity per data row. Placeholder cells are
	// omitted from the entity's fields.
	Entities []types.Entity
}

// Load reads a TSV or CSV dataset into entities of the given type. The
// delimiter follows the file extension: tab for everything except ".csv".
func Load(path, entityType string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = delimiterFor(path)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading dataset %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset %s is empty", path)
	}

	columns := rows[0]
	for i, col := range columns {
		columns[i] = strings.TrimSpace(col)
	}

	entities := make([]types.Entity, 0, len(rows)-1)
	for _, row := range rows[1:] {
		fields := make(map[string]any, len(columns))
		for i, col := range columns {
			if i >= len(row) {
				break
			}
			value := strings.TrimSpace(row[i])
			if placeholders[value] {
				continue
			}
			fields[col] = value
		}
		entities = append(entities, types.NewEntity(entityType, fields))
	}

	return &Dataset{Path: path, Columns: columns, Entities: entities}, nil
}

func delimiterFor(path string) rune {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return ','
	}
	return '\t'
}
