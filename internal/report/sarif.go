package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ckeyscan/ckeyscan/internal/scanner"
	"github.com/ckeyscan/ckeyscan/internal/types"
)

// ToolVersion is reported as the SARIF driver version.
var ToolVersion = "dev"

type sarif struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool       sarifTool      `json:"tool"`
	Results    []sarifResult  `json:"results"`
	Properties map[string]int `json:"properties,omitempty"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifResult struct {
	RuleID              string            `json:"ruleId"`
	RuleIndex           int               `json:"ruleIndex"`
	Level               string            `json:"level"`
	Message             sarifMessage      `json:"message"`
	Locations           []sarifLoc        `json:"locations"`
	PartialFingerprints map[string]string `json:"partialFingerprints,omitempty"`
	Properties          *sarifEntry       `json:"properties,omitempty"`
}

// sarifEntry locates a record inside a backup archive. The artifact
// location then names the archive on disk.
type sarifEntry struct {
	VirtualPath string `json:"virtualPath"`
	Depth       int    `json:"depth"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLoc struct {
	PhysicalLocation sarifPhys `json:"physicalLocation"`
}

type sarifPhys struct {
	ArtifactLocation sarifArt    `json:"artifactLocation"`
	Region           sarifRegion `json:"region"`
}

type sarifArt struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	ByteOffset int `json:"byteOffset"`
	ByteLength int `json:"byteLength"`
}

var ruleDescriptions = map[types.Mode]string{
	types.ModeLegacy:     "ckey record delimited by SOH/EOT control bytes",
	types.ModeStructural: "ckey record at a fixed offset from its tag",
}

// WriteSARIF writes records as SARIF 2.1.0 to the provided writer.
func WriteSARIF(w io.Writer, records []types.Record) error {
	return WriteSARIFWithStats(w, records, nil)
}

// WriteSARIFWithStats also attaches stats as run properties.
func WriteSARIFWithStats(w io.Writer, records []types.Record, stats map[string]int) error {
	run := sarifRun{
		Tool:       sarifTool{Driver: sarifDriver{Name: "ckeyscan", Version: ToolVersion}},
		Results:    []sarifResult{},
		Properties: stats,
	}
	ruleIndex := map[types.Mode]int{}
	for _, r := range records {
		idx, ok := ruleIndex[r.Mode]
		if !ok {
			idx = len(run.Tool.Driver.Rules)
			ruleIndex[r.Mode] = idx
			run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, sarifRule{
				ID:               string(r.Mode),
				ShortDescription: sarifMessage{Text: ruleDescriptions[r.Mode]},
			})
		}
		uri := r.Path
		var entry *sarifEntry
		if scanner.IsVirtualPath(r.Path) {
			uri = scanner.GetArtifactRoot(r.Path)
			entry = &sarifEntry{VirtualPath: r.Path, Depth: scanner.GetDepth(r.Path)}
		}
		run.Results = append(run.Results, sarifResult{
			RuleID:    string(r.Mode),
			RuleIndex: idx,
			Level:     "warning",
			Message:   sarifMessage{Text: fmt.Sprintf("%s record (%d bytes)", types.Label, len(r.Hex)/2)},
			Locations: []sarifLoc{{
				PhysicalLocation: sarifPhys{
					ArtifactLocation: sarifArt{URI: uri},
					Region:           sarifRegion{ByteOffset: r.MarkerOffset, ByteLength: len(r.Hex) / 2},
				},
			}},
			PartialFingerprints: map[string]string{"payload/xxhash64": r.Fingerprint},
			Properties:          entry,
		})
	}
	if run.Tool.Driver.Rules == nil {
		run.Tool.Driver.Rules = []sarifRule{}
	}
	doc := sarif{
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Version: "2.1.0",
		Runs:    []sarifRun{run},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
