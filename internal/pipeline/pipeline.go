// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline composes cohort selection, target resolution, and
// keyword extraction into one run, and emits the two output tables.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/OrjadaShkoza/chembl-uniprot-drug-targets/internal/chembl"
	"github.com/OrjadaShkoza/chembl-uniprot-drug-targets/internal/emit"
	"github.com/OrjadaShkoza/chembl-uniprot-drug-targets/internal/store"
	"github.com/OrjadaShkoza/chembl-uniprot-drug-targets/internal/uniprot"
	"github.com/OrjadaShkoza/chembl-uniprot-drug-targets/pkg/types"
)

// markerEscapedFailure is recorded for an accession whose keyword lookup
// escaped the extractor's own error taxonomy (a defensive outer catch).
const markerEscapedFailure = "ERROR"

const (
	defaultTargetWorkers  = 4
	defaultKeywordWorkers = 1
)

// Pipeline holds the collaborators of one run.
type Pipeline struct {
	ChEMBL  *chembl.Client
	UniProt *uniprot.Client

	// Out receives progress and summary lines.
	Out io.Writer
}

// Result accumulates the run state: the two output relations in emission
// order plus the counters the summary and report need.
type Result struct {
	Report      types.RunReport
	DrugRows    []types.DrugTargetRow
	KeywordRows []types.TargetKeywordRow
}

// Run executes the whole pipeline: select the cohort, resolve targets per
// drug, resolve keywords per unique accession, then emit both tables at
// once. An empty cohort is a clean early exit, not an error. Item-level
// failures are logged and isolated; only emission failures and a dead
// context surface as errors.
func (p *Pipeline) Run(ctx context.Context, cfg types.PipelineConfig) (Result, error) {
	var result Result
	result.Report.CutoffYear = cfg.ChEMBL.CutoffYear
	result.Report.StartedAt = time.Now().UTC()

	fmt.Fprintln(p.Out, "Retrieving approved drugs from ChEMBL...")
	cohort, approved := p.ChEMBL.SelectCohort(ctx, cfg.ChEMBL.CutoffYear, p.Out)
	if approved == 0 {
		fmt.Fprintln(p.Out, "No approved drugs found or error retrieving data")
		return result, nil
	}
	fmt.Fprintf(p.Out, "\nFound %d drugs approved since %d\n", len(cohort), cfg.ChEMBL.CutoffYear)
	if len(cohort) == 0 {
		fmt.Fprintln(p.Out, "No recent drugs found")
		return result, nil
	}
	result.Report.CohortSize = len(cohort)

	fmt.Fprintln(p.Out, "\nProcessing drugs and collecting targets...")
	accessions := p.resolveTargetPhase(ctx, cfg, cohort, &result)

	result.Report.UniqueTargets = len(accessions)
	fmt.Fprintf(p.Out, "\nFetching keywords for %d unique targets...\n", len(accessions))
	p.resolveKeywordPhase(ctx, cfg, accessions, &result)

	if err := ctx.Err(); err != nil {
		// Emit what completed before the cancellation, then surface it.
		if emitErr := p.emit(ctx, cfg, &result); emitErr != nil {
			return result, emitErr
		}
		return result, err
	}

	result.Report.FinishedAt = time.Now().UTC()
	if err := p.emit(ctx, cfg, &result); err != nil {
		return result, err
	}

	fmt.Fprintln(p.Out, "\nProcessing complete!")
	fmt.Fprintln(p.Out, "Results saved to:")
	fmt.Fprintf(p.Out, "- %s (Drug to target mappings)\n", emit.DrugTargetsFile)
	fmt.Fprintf(p.Out, "- %s (Target to keyword mappings)\n", emit.TargetKeywordsFile)
	return result, nil
}

// resolveTargetPhase fills result.DrugRows in cohort order and returns
// the global accession set in first-seen (cohort) order. Worker failures
// are logged and become empty target sets for their drug.
func (p *Pipeline) resolveTargetPhase(ctx context.Context, cfg types.PipelineConfig, cohort []types.DrugRecord, result *Result) []string {
	workers := cfg.ChEMBL.TargetWorkers
	if workers <= 0 {
		workers = defaultTargetWorkers
	}

	// Index-addressed so rows keep cohort order however workers finish.
	// attempted marks indices that were actually dispatched, so a run
	// cancelled mid-phase emits no rows for drugs that never ran.
	targetsByDrug := make([][]string, len(cohort))
	attempted := make([]bool, len(cohort))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	indices := make(chan int)

	for n := 0; n < workers; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				attempted[i] = true
				targets, err := p.ChEMBL.ResolveTargets(ctx, cohort[i])
				if err != nil {
					mu.Lock()
					fmt.Fprintf(p.Out, "Error getting targets for drug %s: %v\n", cohort[i].DisplayName(), err)
					result.Report.DrugFailures++
					mu.Unlock()
					continue
				}
				targetsByDrug[i] = targets
			}
		}()
	}

	for i := range cohort {
		select {
		case indices <- i:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(indices)
	wg.Wait()

	seen := make(map[string]bool)
	var accessions []string
	for i, drug := range cohort {
		if !attempted[i] {
			continue
		}
		result.DrugRows = append(result.DrugRows, types.DrugTargetRow{
			DrugName:     drug.DisplayName(),
			ApprovalYear: drug.FirstApproval.String(),
			Targets:      targetsByDrug[i],
		})
		for _, acc := range targetsByDrug[i] {
			if !seen[acc] {
				seen[acc] = true
				accessions = append(accessions, acc)
			}
		}
	}
	return accessions
}

// resolveKeywordPhase fills result.KeywordRows in accession first-seen
// order. The extractor already converts its failures to markers; the
// recover here is a last fence so a panic in one lookup records ERROR for
// that accession instead of aborting the run.
func (p *Pipeline) resolveKeywordPhase(ctx context.Context, cfg types.PipelineConfig, accessions []string, result *Result) {
	workers := cfg.UniProt.KeywordWorkers
	if workers <= 0 {
		workers = defaultKeywordWorkers
	}

	keywordsByTarget := make([][]string, len(accessions))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	indices := make(chan int)

	for n := 0; n < workers; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				keywordsByTarget[i] = p.lookupKeywords(ctx, accessions[i], &mu)
			}
		}()
	}

	for i := range accessions {
		select {
		case indices <- i:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(indices)
	wg.Wait()

	for i, acc := range accessions {
		keywords := keywordsByTarget[i]
		if len(keywords) == 0 {
			// Item never ran (cancelled mid-phase).
			continue
		}
		if isErrorMarker(keywords) {
			result.Report.KeywordErrors++
		}
		result.KeywordRows = append(result.KeywordRows, types.TargetKeywordRow{
			Accession: acc,
			Keywords:  keywords,
		})
	}
}

func (p *Pipeline) lookupKeywords(ctx context.Context, accession string, mu *sync.Mutex) (keywords []string) {
	defer func() {
		if r := recover(); r != nil {
			mu.Lock()
			fmt.Fprintf(p.Out, "Error processing target %s: %v\n", accession, r)
			mu.Unlock()
			keywords = []string{markerEscapedFailure}
		}
	}()
	return p.UniProt.Keywords(ctx, accession)
}

// isErrorMarker reports whether a keyword set is a single failure marker.
// MarkerNoKeywords is a successful lookup with nothing extractable, not
// a failure.
func isErrorMarker(keywords []string) bool {
	if len(keywords) != 1 {
		return false
	}
	switch keywords[0] {
	case uniprot.MarkerNoKeywords:
		return false
	case uniprot.MarkerNotFound, uniprot.MarkerRequestError, uniprot.MarkerProcessError, markerEscapedFailure:
		return true
	}
	return strings.HasPrefix(keywords[0], uniprot.MarkerHTTPPrefix)
}

// emit writes both CSV tables and, when configured, the SQLite sink and
// the YAML run report.
func (p *Pipeline) emit(ctx context.Context, cfg types.PipelineConfig, result *Result) error {
	if _, _, err := emit.WriteTables(cfg.Output.Dir, result.DrugRows, result.KeywordRows); err != nil {
		return err
	}

	if cfg.Output.DatabasePath != "" {
		db, err := store.Open(cfg.Output.DatabasePath)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.SaveRun(context.WithoutCancel(ctx), result.DrugRows, result.KeywordRows); err != nil {
			return err
		}
	}

	if cfg.Output.ReportPath != "" {
		if result.Report.FinishedAt.IsZero() {
			result.Report.FinishedAt = time.Now().UTC()
		}
		data, err := yaml.Marshal(result.Report)
		if err != nil {
			return fmt.Errorf("marshaling run report: %w", err)
		}
		if err := os.WriteFile(cfg.Output.ReportPath, data, 0o644); err != nil {
			return fmt.Errorf("writing run report: %w", err)
		}
	}
	return nil
}
