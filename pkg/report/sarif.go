// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/kraklabs/sigil/pkg/model"
	"github.com/kraklabs/sigil/pkg/signatures"
)

// SARIF 2.1.0 wire types, restricted to the subset the scan/quarantine
// pipeline needs to populate: a single run, one tool driver, and results
// with a physical location.
type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name            string      `json:"name"`
	InformationURI  string      `json:"informationUri,omitempty"`
	Rules           []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string                 `json:"id"`
	ShortDescription sarifMessage           `json:"shortDescription"`
	Properties       map[string]interface{} `json:"properties,omitempty"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine,omitempty"`
}

func writeSARIF(w io.Writer, r *model.ScanResult) error {
	ruleSeen := map[string]bool{}
	var rules []sarifRule
	var results []sarifResult

	for _, f := range r.Findings {
		if !ruleSeen[f.RuleID] {
			ruleSeen[f.RuleID] = true
			rules = append(rules, sarifRule{
				ID:               f.RuleID,
				ShortDescription: sarifMessage{Text: fmt.Sprintf("%s (%s)", f.RuleID, f.Phase)},
				Properties:       map[string]interface{}{"phase": f.Phase, "severity": f.Severity},
			})
		}
		loc := sarifLocation{PhysicalLocation: sarifPhysicalLocation{
			ArtifactLocation: sarifArtifactLocation{URI: f.File},
		}}
		if f.Line > 0 {
			loc.PhysicalLocation.Region = sarifRegion{StartLine: f.Line}
		}
		results = append(results, sarifResult{
			RuleID:    f.RuleID,
			Level:     sarifLevel(f.Severity),
			Message:   sarifMessage{Text: f.Snippet},
			Locations: []sarifLocation{loc},
		})
	}

	out := sarifLog{
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:           "sigil",
				InformationURI: "",
				Rules:          rules,
			}},
			Results: results,
		}},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func sarifLevel(sev signatures.Severity) string {
	switch sev {
	case signatures.SeverityCritical, signatures.SeverityHigh:
		return "error"
	case signatures.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}
