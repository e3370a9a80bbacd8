// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chembl

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/OrjadaShkoza/chembl-uniprot-drug-targets/internal/httputil"
)

func init() {
	httputil.RetryBaseDelay = 1 * time.Millisecond
}

func newTestClient(ts *httptest.Server) *Client {
	return &Client{
		HTTP:      ts.Client(),
		BaseURL:   ts.URL,
		UserAgent: "drugtargets-test",
	}
}

const cohortMoleculesJSON = `{
  "molecules": [
    {"molecule_chembl_id": "CHEMBL1", "pref_name": "ZETA", "first_approval": 2020, "max_phase": 4},
    {"molecule_chembl_id": "CHEMBL2", "pref_name": "BROKEN", "first_approval": "x", "max_phase": 4},
    {"molecule_chembl_id": "CHEMBL3", "pref_name": "ALPHA", "first_approval": 2019, "max_phase": 4},
    {"molecule_chembl_id": "CHEMBL4", "pref_name": "OMEGA", "first_approval": 2021, "max_phase": 4},
    {"molecule_chembl_id": "CHEMBL5", "pref_name": "OLD", "first_approval": 1998, "max_phase": 4},
    {"molecule_chembl_id": "CHEMBL6", "pref_name": "NOYEAR", "first_approval": null, "max_phase": 4}
  ],
  "page_meta": {"next": ""}
}`

func TestSelectCohort_FilterAndOrder(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/molecule.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("max_phase"); got != "4" {
			t.Errorf("max_phase = %q, want %q", got, "4")
		}
		// Multiple sort keys travel as repeated order_by parameters.
		if got := r.URL.Query()["order_by"]; len(got) != 2 || got[0] != "first_approval" || got[1] != "pref_name" {
			t.Errorf("order_by = %v, want [first_approval pref_name]", got)
		}
		fmt.Fprint(w, cohortMoleculesJSON)
	}))
	defer ts.Close()

	var log bytes.Buffer
	cohort, approved := newTestClient(ts).SelectCohort(context.Background(), 2019, &log)

	if approved != 6 {
		t.Errorf("approved = %d, want 6", approved)
	}

	var got []string
	for _, d := range cohort {
		year, _ := d.FirstApproval.Year()
		got = append(got, fmt.Sprintf("%d/%s", year, d.DisplayName()))
	}
	want := []string{"2019/ALPHA", "2020/ZETA", "2021/OMEGA"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("cohort = %v, want %v", got, want)
	}
}

func TestSelectCohort_NameBreaksYearTies(t *testing.T) {
	const tied = `{
	  "molecules": [
	    {"molecule_chembl_id": "CHEMBL1", "pref_name": "BETA", "first_approval": 2020},
	    {"molecule_chembl_id": "CHEMBL2", "pref_name": "ALPHA", "first_approval": 2020},
	    {"molecule_chembl_id": "CHEMBL3", "first_approval": 2020}
	  ],
	  "page_meta": {"next": ""}
	}`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, tied)
	}))
	defer ts.Close()

	var log bytes.Buffer
	cohort, _ := newTestClient(ts).SelectCohort(context.Background(), 2019, &log)

	var got []string
	for _, d := range cohort {
		got = append(got, d.DisplayName())
	}
	// The unnamed record displays as "Unknown" and sorts with that label.
	want := "ALPHA,BETA,Unknown"
	if strings.Join(got, ",") != want {
		t.Errorf("order = %q, want %q", strings.Join(got, ","), want)
	}
}

func TestSelectCohort_FollowsPagination(t *testing.T) {
	var pages int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		if r.URL.Query().Get("offset") == "" {
			fmt.Fprint(w, `{
			  "molecules": [{"molecule_chembl_id": "CHEMBL1", "pref_name": "ONE", "first_approval": 2020}],
			  "page_meta": {"next": "/molecule.json?limit=1&offset=1"}
			}`)
			return
		}
		fmt.Fprint(w, `{
		  "molecules": [{"molecule_chembl_id": "CHEMBL2", "pref_name": "TWO", "first_approval": 2021}],
		  "page_meta": {"next": ""}
		}`)
	}))
	defer ts.Close()

	var log bytes.Buffer
	cohort, approved := newTestClient(ts).SelectCohort(context.Background(), 2019, &log)

	if pages != 2 {
		t.Errorf("pages fetched = %d, want 2", pages)
	}
	if approved != 2 || len(cohort) != 2 {
		t.Errorf("approved = %d, cohort = %d, want 2 and 2", approved, len(cohort))
	}
}

func TestSelectCohort_FailsSoftOnServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	var log bytes.Buffer
	cohort, approved := newTestClient(ts).SelectCohort(context.Background(), 2019, &log)

	if cohort != nil || approved != 0 {
		t.Errorf("SelectCohort() = (%v, %d), want empty", cohort, approved)
	}
	if !strings.Contains(log.String(), "Error retrieving approved drugs") {
		t.Errorf("log = %q, want retrieval error message", log.String())
	}
}

func TestSelectCohort_FailsSoftOnBadJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"molecules": [`)
	}))
	defer ts.Close()

	var log bytes.Buffer
	cohort, approved := newTestClient(ts).SelectCohort(context.Background(), 2019, &log)

	if cohort != nil || approved != 0 {
		t.Errorf("SelectCohort() = (%v, %d), want empty", cohort, approved)
	}
}

func TestResolve_StripsDataRootFromNextLinks(t *testing.T) {
	c := &Client{BaseURL: "https://example.org/chembl/api/data"}

	got, err := c.resolve("/chembl/api/data/molecule.json?limit=5&offset=5")
	if err != nil {
		t.Fatalf("resolve() error = %v", err)
	}
	want := "https://example.org/chembl/api/data/molecule.json?limit=5&offset=5"
	if got != want {
		t.Errorf("resolve() = %q, want %q", got, want)
	}
}
