// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chembl

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/OrjadaShkoza/chembl-uniprot-drug-targets/pkg/types"
)

// mechTargetServer serves mechanism links and target records keyed by ID.
func mechTargetServer(t *testing.T, mechanisms string, targets map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/mechanism.json":
			fmt.Fprint(w, mechanisms)
		case "/target.json":
			id := r.URL.Query().Get("target_chembl_id")
			if got := r.URL.Query().Get("only"); got != "target_components" {
				t.Errorf("only = %q, want target_components", got)
			}
			body, ok := targets[id]
			if !ok {
				t.Errorf("unexpected target_chembl_id %q", id)
				http.NotFound(w, r)
				return
			}
			fmt.Fprint(w, body)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
}

func TestResolveTargets_UnionDedupAndExclusion(t *testing.T) {
	mechanisms := `{
	  "mechanisms": [
	    {"molecule_chembl_id": "CHEMBL1", "target_chembl_id": "T1"},
	    {"molecule_chembl_id": "CHEMBL1", "target_chembl_id": ""},
	    {"molecule_chembl_id": "CHEMBL1", "target_chembl_id": "T2"}
	  ],
	  "page_meta": {"next": ""}
	}`
	targets := map[string]string{
		"T1": `{
		  "targets": [{
		    "target_chembl_id": "T1",
		    "target_components": [
		      {"accession": "P35372"},
		      {"accession": "ENSG00000112038"},
		      {"accession": ""},
		      {}
		    ]
		  }],
		  "page_meta": {"next": ""}
		}`,
		"T2": `{
		  "targets": [{
		    "target_chembl_id": "T2",
		    "target_components": [
		      {"accession": "P35372"},
		      {"accession": "P41145"}
		    ]
		  }],
		  "page_meta": {"next": ""}
		}`,
	}
	ts := mechTargetServer(t, mechanisms, targets)
	defer ts.Close()

	drug := types.DrugRecord{MoleculeChemblID: "CHEMBL1", PrefName: "MORPHINE"}
	got, err := newTestClient(ts).ResolveTargets(context.Background(), drug)
	if err != nil {
		t.Fatalf("ResolveTargets() error = %v", err)
	}

	// P35372 appears under both targets but once in the result; the
	// Ensembl gene identifier and the empty accessions are dropped.
	want := "P35372,P41145"
	if strings.Join(got, ",") != want {
		t.Errorf("ResolveTargets() = %v, want %v", got, want)
	}
}

func TestResolveTargets_NoMechanisms(t *testing.T) {
	ts := mechTargetServer(t, `{"mechanisms": [], "page_meta": {"next": ""}}`, nil)
	defer ts.Close()

	drug := types.DrugRecord{MoleculeChemblID: "CHEMBL9"}
	got, err := newTestClient(ts).ResolveTargets(context.Background(), drug)
	if err != nil {
		t.Fatalf("ResolveTargets() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ResolveTargets() = %v, want empty", got)
	}
}

func TestResolveTargets_PropagatesWalkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/mechanism.json" {
			fmt.Fprint(w, `{
			  "mechanisms": [{"molecule_chembl_id": "CHEMBL1", "target_chembl_id": "T1"}],
			  "page_meta": {"next": ""}
			}`)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	drug := types.DrugRecord{MoleculeChemblID: "CHEMBL1"}
	_, err := newTestClient(ts).ResolveTargets(context.Background(), drug)
	if err == nil {
		t.Fatal("ResolveTargets() error = nil, want HTTP error")
	}
	if !strings.Contains(err.Error(), "HTTP 500") {
		t.Errorf("error = %v, want HTTP 500", err)
	}
}
