package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/ckeyscan/ckeyscan/internal/types"
)

// ScanResults stores the records and metadata from the last scan of a root.
type ScanResults struct {
	Records   []types.Record `json:"records"`
	Timestamp time.Time      `json:"timestamp"`
	Root      string         `json:"root"`
	Mode      types.Mode     `json:"mode"`
	Count     int            `json:"count"`
}

func resultsPath(root string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "last-"+rootKey(root)+".json"), nil
}

// SaveResults saves scan results for root.
func SaveResults(root string, mode types.Mode, records []types.Record) error {
	p, err := resultsPath(root)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return err
	}
	if records == nil {
		records = []types.Record{}
	}
	results := ScanResults{
		Records:   records,
		Timestamp: time.Now(),
		Root:      root,
		Mode:      mode,
		Count:     len(records),
	}
	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

// LoadResults loads the last scan results for root.
func LoadResults(root string) (ScanResults, error) {
	var results ScanResults
	p, err := resultsPath(root)
	if err != nil {
		return results, err
	}
	f, err := os.ReadFile(p)
	if err != nil {
		return results, err
	}
	if err := json.Unmarshal(f, &results); err != nil {
		return results, err
	}
	return results, nil
}
