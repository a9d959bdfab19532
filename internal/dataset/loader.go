// Package dataset loads labeled training records from CSV files or a remote
// dataset service. Producer-boundary normalization (defaulting, vocabulary
// fallback) happens here, so the engine only ever sees canonical records.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"

	"campscore/internal/schema"
)

// labelColumn is the extra CSV column carrying the binary outcome.
const labelColumn = "label"

// LoadCSV reads labeled records from a CSV file. The header names columns by
// schema field name plus a "label" column; unknown columns are ignored and
// missing ones default through schema.Normalize.
func LoadCSV(path string) ([]schema.Record, []int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses labeled records from any CSV stream.
func ReadCSV(r io.Reader) ([]schema.Record, []int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	labelIdx := -1
	for i, name := range header {
		if name == labelColumn {
			labelIdx = i
		}
	}
	if labelIdx == -1 {
		return nil, nil, fmt.Errorf("dataset: missing %q column", labelColumn)
	}

	var (
		records []schema.Record
		labels  []int
		skipped int
		line    = 1
	)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}

		raw := make(map[string]any, len(header))
		for i, name := range header {
			if i == labelIdx || i >= len(row) || name == "" {
				continue
			}
			cell := row[i]
			if cell == "" {
				continue
			}
			idx := schema.Index(name)
			if idx < 0 {
				continue // unknown column
			}
			if schema.Fields[idx].Categorical {
				raw[name] = cell
			} else if v, err := strconv.ParseFloat(cell, 64); err == nil {
				raw[name] = v
			}
		}

		rec, err := schema.Normalize(raw)
		if err != nil {
			skipped++
			continue
		}
		label, err := strconv.Atoi(row[labelIdx])
		if err != nil || (label != 0 && label != 1) {
			skipped++
			continue
		}
		records = append(records, rec)
		labels = append(labels, label)
	}

	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Int("loaded", len(records)).Msg("dataset rows skipped")
	}
	return records, labels, nil
}
