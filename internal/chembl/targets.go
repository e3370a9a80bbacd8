// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chembl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/OrjadaShkoza/chembl-uniprot-drug-targets/pkg/types"
)

// ensemblGenePrefix marks Ensembl gene identifiers that surface in the
// accession field of some target components. They are not UniProt
// accessions and the proteins API cannot resolve them, so they are
// excluded wholesale.
const ensemblGenePrefix = "ENSG"

// ResolveTargets walks drug → mechanism → target → component and returns
// the drug's distinct UniProt accessions, sorted. Empty accessions and
// Ensembl gene identifiers are dropped. An error covers the whole walk;
// the caller logs it and substitutes an empty set, so one broken drug
// never aborts the cohort.
func (c *Client) ResolveTargets(ctx context.Context, drug types.DrugRecord) ([]string, error) {
	links, err := c.mechanisms(ctx, drug.MoleculeChemblID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, link := range links {
		if link.TargetChemblID == "" {
			continue
		}
		records, err := c.targets(ctx, link.TargetChemblID)
		if err != nil {
			return nil, err
		}
		for _, record := range records {
			for _, component := range record.TargetComponents {
				acc := strings.TrimSpace(component.Accession)
				if acc == "" || strings.HasPrefix(acc, ensemblGenePrefix) {
					continue
				}
				seen[acc] = true
			}
		}
	}

	accessions := make([]string, 0, len(seen))
	for acc := range seen {
		accessions = append(accessions, acc)
	}
	sort.Strings(accessions)
	return accessions, nil
}

// mechanisms fetches all mechanism-of-action links for one molecule.
func (c *Client) mechanisms(ctx context.Context, moleculeID string) ([]types.MechanismLink, error) {
	params := url.Values{"molecule_chembl_id": {moleculeID}}

	var links []types.MechanismLink
	err := c.collect(ctx, "/mechanism.json", params, func(body io.Reader) (string, error) {
		var page mechanismPage
		if err := json.NewDecoder(body).Decode(&page); err != nil {
			return "", fmt.Errorf("parsing mechanism page: %w", err)
		}
		links = append(links, page.Mechanisms...)
		return page.PageMeta.Next, nil
	})
	if err != nil {
		return nil, err
	}
	return links, nil
}

// targets fetches the target records for one target ID, requesting only
// the target-components projection.
func (c *Client) targets(ctx context.Context, targetID string) ([]types.TargetRecord, error) {
	params := url.Values{
		"target_chembl_id": {targetID},
		"only":             {"target_components"},
	}

	var records []types.TargetRecord
	err := c.collect(ctx, "/target.json", params, func(body io.Reader) (string, error) {
		var page targetPage
		if err := json.NewDecoder(body).Decode(&page); err != nil {
			return "", fmt.Errorf("parsing target page: %w", err)
		}
		records = append(records, page.Targets...)
		return page.PageMeta.Next, nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
