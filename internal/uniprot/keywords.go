// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package uniprot

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// Marker values returned as single-element keyword sets. MarkerNoKeywords
// means the entry was fetched and parsed but none of the extraction
// strategies produced anything; the others classify why extraction never
// ran. A marker is never mixed with real keywords.
const (
	MarkerNoKeywords   = "NO_KEYWORDS_FOUND"
	MarkerNotFound     = "UNIPROT_ENTRY_NOT_FOUND"
	MarkerRequestError = "REQUEST_ERROR"
	MarkerProcessError = "PROCESSING_ERROR"

	// MarkerHTTPPrefix is followed by the numeric status of a non-404
	// error response.
	MarkerHTTPPrefix = "HTTP_ERROR_"
)

// goMolecularFunctionPrefix marks GO terms of the molecular-function
// aspect, e.g. "F:ATP binding; IEA:...".
const goMolecularFunctionPrefix = "F:"

// descriptionCues maps case-insensitive substrings of the recommended
// protein name to canonical tags. Cues are not mutually exclusive.
var descriptionCues = []struct {
	cue string
	tag string
}{
	{"receptor", "Receptor"},
	{"enzyme", "Enzyme"},
	{"channel", "Channel"},
	{"transporter", "Transporter"},
}

// Keywords fetches the protein entry for accession and returns its
// keyword set: real keywords when any strategy matched, or exactly one
// marker. It never returns an empty set and never propagates an error.
// Every invocation ends with one shared gate pause, regardless of outcome.
func (c *Client) Keywords(ctx context.Context, accession string) []string {
	defer c.Gate.Pause(ctx)

	entry, err := c.fetch(ctx, accession)
	if err != nil {
		return []string{markerFor(err)}
	}
	return ExtractKeywords(entry)
}

// markerFor classifies a fetch error. A response with a status was
// received for StatusError; anything else that is not a parse failure is
// a transport-level condition and maps to MarkerRequestError.
func markerFor(err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode == http.StatusNotFound {
			return MarkerNotFound
		}
		return MarkerHTTPPrefix + strconv.Itoa(statusErr.StatusCode)
	}
	if errors.Is(err, errParse) {
		return MarkerProcessError
	}
	return MarkerRequestError
}

// ExtractKeywords applies the four extraction strategies to a decoded
// entry, unions their matches, trims and drops empties, and returns the
// sorted result, or {MarkerNoKeywords} when nothing was extractable.
// The heuristics mirror the upstream record conventions exactly; their
// matching rules are load-bearing and must not be tightened.
func ExtractKeywords(entry *Entry) []string {
	found := make(map[string]bool)
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s != "" {
			found[s] = true
		}
	}

	// 1. Explicit keyword section.
	for _, kw := range entry.Keywords {
		add(kw.Name)
	}

	// 2. Functional cues in the recommended full name.
	desc := strings.ToLower(entry.Protein.RecommendedName.FullName.Value)
	for _, c := range descriptionCues {
		if strings.Contains(desc, c.cue) {
			add(c.tag)
		}
	}

	// 3. GO molecular-function cross-references.
	for _, ref := range entry.DBReferences {
		if ref.Type != "GO" {
			continue
		}
		term := ref.Properties.Term
		if !strings.HasPrefix(term, goMolecularFunctionPrefix) {
			continue
		}
		term = term[len(goMolecularFunctionPrefix):]
		add(strings.SplitN(term, ";", 2)[0])
	}

	// 4. Family tags from similarity commentary. The match is done on the
	// lower-cased text but the tag keeps the original casing, cut at the
	// first period.
	for _, comment := range entry.Comments {
		if comment.Type != "similarity" || len(comment.Text) == 0 {
			continue
		}
		text := comment.Text[0].Value
		lower := strings.ToLower(text)
		if strings.Contains(lower, "belongs to the") || strings.Contains(lower, "protein family") {
			add(strings.SplitN(text, ".", 2)[0])
		}
	}

	if len(found) == 0 {
		return []string{MarkerNoKeywords}
	}

	keywords := make([]string, 0, len(found))
	for kw := range found {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)
	return keywords
}
