// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chembl queries the ChEMBL web services for the approved-drug
// cohort and for drug target accessions.
package chembl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/OrjadaShkoza/chembl-uniprot-drug-targets/internal/httputil"
	"github.com/OrjadaShkoza/chembl-uniprot-drug-targets/pkg/types"
)

// DefaultBaseURL is the ChEMBL web services data root.
const DefaultBaseURL = "https://www.ebi.ac.uk/chembl/api/data"

// approvedPhase is the max_phase value ChEMBL assigns to approved drugs.
const approvedPhase = "4"

const defaultPageSize = 100

// Client queries the ChEMBL REST collections.
type Client struct {
	// HTTP is the client used for all requests.
	HTTP *http.Client

	// BaseURL is the data root; tests point it at an httptest server.
	BaseURL string

	// UserAgent is sent with every request.
	UserAgent string

	// PageSize is the collection page size (default 100).
	PageSize int
}

// moleculePage mirrors one page of the ChEMBL molecule collection.
type moleculePage struct {
	Molecules []types.DrugRecord `json:"molecules"`
	PageMeta  pageMeta           `json:"page_meta"`
}

type mechanismPage struct {
	Mechanisms []types.MechanismLink `json:"mechanisms"`
	PageMeta   pageMeta              `json:"page_meta"`
}

type targetPage struct {
	Targets  []types.TargetRecord `json:"targets"`
	PageMeta pageMeta             `json:"page_meta"`
}

type pageMeta struct {
	Next string `json:"next"`
}

// SelectCohort retrieves the approved drugs first approved at or after
// cutoffYear, ordered by (approval year, preferred name). Records with a
// missing or non-integer approval year are excluded silently. approved is
// the pre-filter size of the approved set, so the caller can distinguish
// an empty upstream result from a cutoff that filtered everything out.
// The call fails soft: any upstream error is logged to w and an empty
// cohort is returned, which the caller treats as nothing-to-do.
func (c *Client) SelectCohort(ctx context.Context, cutoffYear int, w io.Writer) (cohort []types.DrugRecord, approved int) {
	// ChEMBL's tastypie backend takes multiple sort keys as repeated
	// order_by parameters, not one comma-joined value.
	params := url.Values{
		"max_phase": {approvedPhase},
		"order_by":  {"first_approval", "pref_name"},
	}

	err := c.collect(ctx, "/molecule.json", params, func(body io.Reader) (string, error) {
		var page moleculePage
		if err := json.NewDecoder(body).Decode(&page); err != nil {
			return "", fmt.Errorf("parsing molecule page: %w", err)
		}
		approved += len(page.Molecules)
		for _, drug := range page.Molecules {
			year, ok := drug.FirstApproval.Year()
			if !ok || year < cutoffYear {
				continue
			}
			cohort = append(cohort, drug)
		}
		return page.PageMeta.Next, nil
	})
	if err != nil {
		fmt.Fprintf(w, "Error retrieving approved drugs: %v\n", err)
		return nil, 0
	}

	// The query asks ChEMBL to order by (first_approval, pref_name); the
	// sort below makes the ordering a local guarantee rather than an
	// upstream one. Stable so equal keys keep arrival order.
	sort.SliceStable(cohort, func(i, j int) bool {
		yi, _ := cohort[i].FirstApproval.Year()
		yj, _ := cohort[j].FirstApproval.Year()
		if yi != yj {
			return yi < yj
		}
		return cohort[i].DisplayName() < cohort[j].DisplayName()
	})
	return cohort, approved
}

// collect walks a paginated ChEMBL collection. decode consumes one page
// body and returns the next-page path from page_meta, or "" when done.
func (c *Client) collect(ctx context.Context, path string, params url.Values, decode func(io.Reader) (string, error)) error {
	pageSize := c.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	params.Set("limit", strconv.Itoa(pageSize))

	next := path + "?" + params.Encode()
	for next != "" {
		body, err := c.get(ctx, next)
		if err != nil {
			return err
		}
		nextPath, decodeErr := decode(body)
		body.Close()
		if decodeErr != nil {
			return decodeErr
		}
		next = nextPath
	}
	return nil
}

// get issues one GET against the data root. ChEMBL's page_meta.next links
// repeat the /chembl/api/data prefix; both forms are accepted.
func (c *Client) get(ctx context.Context, path string) (io.ReadCloser, error) {
	reqURL, err := c.resolve(path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, 0)
	if err != nil {
		return nil, fmt.Errorf("ChEMBL API request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("ChEMBL API returned HTTP %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func (c *Client) resolve(path string) (string, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid request path %q: %w", path, err)
	}
	// page_meta.next arrives as an absolute path containing the data-root
	// prefix; strip it so the path resolves under BaseURL.
	if p, ok := trimPrefixPath(ref.Path, baseURL.Path); ok {
		ref.Path = p
	}
	resolved := base + ref.Path
	if ref.RawQuery != "" {
		resolved += "?" + ref.RawQuery
	}
	return resolved, nil
}

func trimPrefixPath(p, prefix string) (string, bool) {
	if prefix == "" || len(p) <= len(prefix) || p[:len(prefix)] != prefix {
		return p, false
	}
	return p[len(prefix):], true
}
