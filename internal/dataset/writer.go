package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kgfoundry/biomapper/pkg/types"
)

// Appended output columns on the mapped table.
var resultColumns = []string{"kg_node", "mapping_status", "votes", "supporting_curies", "dropped_ids"}

// WriteMapped writes the mapped dataset as TSV: the original columns followed
// by the mapping outcome columns, one row per result.
func WriteMapped(path string, columns []string, results []types.MappingResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating mapped output: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = '\t'

	header := append(append([]string{}, columns...), resultColumns...)
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range results {
		if err := w.Write(mappedRow(columns, &results[i])); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func mappedRow(columns []string, r *types.MappingResult) []string {
	row := make([]string, 0, len(columns)+len(resultColumns))
	for _, col := range columns {
		row = append(row, strings.Join(r.Entity.Values(col), ";"))
	}

	overall := r.Resolution.Overall
	supporting := ""
	for _, candidate := range overall.Candidates {
		if candidate.NodeID == overall.NodeID {
			supporting = strings.Join(candidate.CURIEs, ";")
			break
		}
	}
	row = append(row,
		overall.NodeID,
		string(overall.Status),
		strconv.Itoa(overall.Votes),
		supporting,
		strconv.Itoa(r.IDs.DropCount()),
	)
	return row
}

// WriteStats writes the summary statistics as indented JSON.
func WriteStats(path string, stats types.SummaryStats) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding stats: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}
	return nil
}

// WriteReferenceSlices writes the review TSVs next to the mapped output:
// unmapped rows, rows with invalid IDs, and rows with one-to-many or
// many-to-one mappings. base is the output path without extension.
func WriteReferenceSlices(base string, columns []string, results []types.MappingResult) error {
	owners := make(map[string]int)
	for i := range results {
		if node := results[i].ChosenNode(); node != "" {
			owners[node]++
		}
	}

	slices := map[string]func(*types.MappingResult) bool{
		"unmapped": func(r *types.MappingResult) bool {
			return r.Resolution.Overall.Status != types.StatusResolved
		},
		"invalid_ids": func(r *types.MappingResult) bool {
			return r.IDs.DropCount() > 0
		},
		"one_to_many": func(r *types.MappingResult) bool {
			return len(r.Candidates.Nodes) > 1
		},
		"many_to_one": func(r *types.MappingResult) bool {
			node := r.ChosenNode()
			return node != "" && owners[node] > 1
		},
	}

	for name, include := range slices {
		var subset []types.MappingResult
		for i := range results {
			if include(&results[i]) {
				subset = append(subset, results[i])
			}
		}
		if len(subset) == 0 {
			continue
		}
		if err := WriteMapped(base+"_"+name+".tsv", columns, subset); err != nil {
			return err
		}
	}
	return nil
}
