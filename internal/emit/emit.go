// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package emit writes the two output relations as CSV tables.
package emit

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/OrjadaShkoza/chembl-uniprot-drug-targets/pkg/types"
)

// Output file names, fixed by the downstream consumers of the tables.
const (
	DrugTargetsFile    = "drug_targets.csv"
	TargetKeywordsFile = "target_keywords.csv"
)

const listSeparator = ", "

// WriteTables writes both relations under dir, header row first, and
// returns the paths written. Rows are written once, after both resolution
// phases finished, so a partially completed run leaves no output behind.
func WriteTables(dir string, drugRows []types.DrugTargetRow, keywordRows []types.TargetKeywordRow) (drugPath, keywordPath string, err error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("creating output directory: %w", err)
	}

	drugPath = filepath.Join(dir, DrugTargetsFile)
	records := make([][]string, 0, len(drugRows)+1)
	records = append(records, []string{"Drug Name", "Approval Year", "Targets"})
	for _, row := range drugRows {
		records = append(records, []string{row.DrugName, row.ApprovalYear, strings.Join(row.Targets, listSeparator)})
	}
	if err := writeCSV(drugPath, records); err != nil {
		return "", "", err
	}

	keywordPath = filepath.Join(dir, TargetKeywordsFile)
	records = records[:0]
	records = append(records, []string{"UniProt ID", "Keywords"})
	for _, row := range keywordRows {
		records = append(records, []string{row.Accession, strings.Join(row.Keywords, listSeparator)})
	}
	if err := writeCSV(keywordPath, records); err != nil {
		return "", "", err
	}

	return drugPath, keywordPath, nil
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	writer := csv.NewWriter(f)
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			f.Close()
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
