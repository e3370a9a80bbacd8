// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the drug-target pipeline.
package types

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// UnknownLabel is the display value used when a drug record lacks a
// preferred name or an approval year.
const UnknownLabel = "Unknown"

// FlexibleYear holds an approval year that ChEMBL may deliver as a JSON
// number, a numeric string, or null. The raw form is preserved for display;
// Year reports whether the value parses as an integer.
type FlexibleYear struct {
	raw string
}

// UnmarshalJSON accepts a number, a string, or null.
func (y *FlexibleYear) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		y.raw = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		y.raw = strings.TrimSpace(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	y.raw = n.String()
	return nil
}

// MarshalJSON round-trips the raw value.
func (y FlexibleYear) MarshalJSON() ([]byte, error) {
	if y.raw == "" {
		return []byte("null"), nil
	}
	if _, ok := y.Year(); ok {
		return []byte(y.raw), nil
	}
	return json.Marshal(y.raw)
}

// Year returns the parsed integer year. ok is false when the value is
// absent or not an integer.
func (y FlexibleYear) Year() (int, bool) {
	if y.raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(y.raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// String returns the raw value, or UnknownLabel when absent.
func (y FlexibleYear) String() string {
	if y.raw == "" {
		return UnknownLabel
	}
	return y.raw
}

// YearOf builds a FlexibleYear from a raw string. Tests and synthetic
// cohorts use it; API responses populate the field through UnmarshalJSON.
func YearOf(raw string) FlexibleYear {
	return FlexibleYear{raw: strings.TrimSpace(raw)}
}

// DrugRecord is one approved molecule from the ChEMBL molecule collection.
type DrugRecord struct {
	// MoleculeChemblID is the opaque unique molecule identifier.
	MoleculeChemblID string `json:"molecule_chembl_id" yaml:"molecule_chembl_id"`

	// PrefName is the preferred drug name; may be empty.
	PrefName string `json:"pref_name" yaml:"pref_name"`

	// FirstApproval is the first-approval year as delivered by ChEMBL.
	FirstApproval FlexibleYear `json:"first_approval" yaml:"first_approval"`

	// MaxPhase is the development phase; the cohort query filters on it
	// server-side, so retained records always carry the approved phase.
	MaxPhase json.Number `json:"max_phase,omitempty" yaml:"max_phase,omitempty"`
}

// DisplayName returns the preferred name, or UnknownLabel when absent.
func (d DrugRecord) DisplayName() string {
	if strings.TrimSpace(d.PrefName) == "" {
		return UnknownLabel
	}
	return d.PrefName
}

// MechanismLink associates a molecule with a mechanism-of-action target.
type MechanismLink struct {
	MoleculeChemblID string `json:"molecule_chembl_id" yaml:"molecule_chembl_id"`

	// TargetChemblID may be empty; such links are skipped during resolution.
	TargetChemblID string `json:"target_chembl_id" yaml:"target_chembl_id"`
}

// TargetComponent is one component of a ChEMBL target; Accession is the
// UniProt cross-reference of interest and may be absent.
type TargetComponent struct {
	Accession string `json:"accession" yaml:"accession"`
}

// TargetRecord is a ChEMBL target with its component list.
type TargetRecord struct {
	TargetChemblID   string            `json:"target_chembl_id" yaml:"target_chembl_id"`
	TargetComponents []TargetComponent `json:"target_components" yaml:"target_components"`
}

// DrugTargetRow is one row of the drug→targets output table, kept in
// cohort order.
type DrugTargetRow struct {
	DrugName     string   `json:"drug_name" yaml:"drug_name"`
	ApprovalYear string   `json:"approval_year" yaml:"approval_year"`
	Targets      []string `json:"targets" yaml:"targets"`
}

// TargetKeywordRow is one row of the target→keywords output table, kept
// in first-seen accession order.
type TargetKeywordRow struct {
	Accession string   `json:"accession" yaml:"accession"`
	Keywords  []string `json:"keywords" yaml:"keywords"`
}
