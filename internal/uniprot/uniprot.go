// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package uniprot queries the EBI proteins API and derives descriptive
// keyword sets for target accessions.
package uniprot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/OrjadaShkoza/chembl-uniprot-drug-targets/internal/httputil"
)

// DefaultBaseURL is the proteins API entry endpoint root.
const DefaultBaseURL = "https://www.ebi.ac.uk/proteins/api/proteins"

// Client fetches protein entries by accession.
type Client struct {
	// HTTP is the client used for all requests.
	HTTP *http.Client

	// BaseURL is the entry endpoint root; tests point it at an httptest server.
	BaseURL string

	// UserAgent is sent with every request.
	UserAgent string

	// Gate paces requests; every fetch ends with one gate pause, on the
	// success path and on every error path alike.
	Gate *httputil.Gate
}

// errParse marks failures decoding a fetched entry, so they classify as
// processing failures rather than transport ones.
var errParse = errors.New("parsing protein entry")

// StatusError reports a non-2xx response from the proteins API.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("proteins API returned HTTP %d", e.StatusCode)
}

// Entry is the subset of a proteins-API document the extractor reads.
// The upstream record is heterogeneous and partially populated; every
// section here may be absent.
type Entry struct {
	Keywords     []Keyword     `json:"keywords"`
	Protein      Protein       `json:"protein"`
	DBReferences []DBReference `json:"dbReferences"`
	Comments     []Comment     `json:"comments"`
}

// Keyword is one entry of the document's explicit keyword section.
type Keyword struct {
	Name string `json:"name"`
}

type Protein struct {
	RecommendedName RecommendedName `json:"recommendedName"`
}

type RecommendedName struct {
	FullName FullName `json:"fullName"`
}

type FullName struct {
	Value string `json:"value"`
}

// DBReference is one cross-reference entry; GO references carry the term
// text in Properties.
type DBReference struct {
	Type       string       `json:"type"`
	Properties DBProperties `json:"properties"`
}

type DBProperties struct {
	Term string `json:"term"`
}

// Comment is one free-text commentary entry.
type Comment struct {
	Type string        `json:"type"`
	Text []CommentText `json:"text"`
}

type CommentText struct {
	Value string `json:"value"`
}

// fetch retrieves the protein entry for one accession. It distinguishes
// transport failures (returned as-is) from non-2xx statuses (returned as
// *StatusError) so the caller can map them to distinct markers.
func (c *Client) fetch(ctx context.Context, accession string) (*Entry, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/"+accession, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var entry Entry
	if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
		return nil, fmt.Errorf("%w: %v", errParse, err)
	}
	return &entry, nil
}
