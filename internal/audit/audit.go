// Package audit keeps an append-only JSONL history of scans. Entries carry
// counts and fingerprints only, never record payloads.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ckeyscan/ckeyscan/internal/types"
)

// FileName is the audit log name inside the ckeyscan config directory.
const FileName = "audit.jsonl"

type ScanRecord struct {
	Timestamp      time.Time       `json:"timestamp"`
	ScanID         string          `json:"scan_id"`
	Root           string          `json:"root"`
	Mode           types.Mode      `json:"mode"`
	SkipDegenerate bool            `json:"skip_degenerate"`
	TotalRecords   int             `json:"total_records"`
	NewRecords     int             `json:"new_records"`
	BaselinedCount int             `json:"baselined_count"`
	Rejected       int             `json:"rejected"`
	FilesScanned   int             `json:"files_scanned"`
	FileErrors     int             `json:"file_errors"`
	Duration       string          `json:"duration"`
	BaselineFile   string          `json:"baseline_file,omitempty"`
	TopRecords     []RecordSummary `json:"top_records,omitempty"`
}

// RecordSummary identifies a record without its payload.
type RecordSummary struct {
	Path        string `json:"path"`
	Offset      int    `json:"offset"`
	Fingerprint string `json:"fingerprint"`
}

type AuditLog struct {
	logPath string
}

// NewAuditLog opens the log under the user config directory.
func NewAuditLog() (*AuditLog, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("locating config dir: %w", err)
	}
	return NewAuditLogAt(filepath.Join(base, "ckeyscan", FileName)), nil
}

// NewAuditLogAt uses an explicit log path.
func NewAuditLogAt(path string) *AuditLog {
	return &AuditLog{logPath: path}
}

// Path returns the log file location.
func (a *AuditLog) Path() string { return a.logPath }

// LoadHistory returns all records, newest first. Lines that fail to decode
// are skipped.
func (a *AuditLog) LoadHistory() ([]ScanRecord, error) {
	f, err := os.Open(a.logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var records []ScanRecord
	decoder := json.NewDecoder(f)
	for decoder.More() {
		var record ScanRecord
		if err := decoder.Decode(&record); err != nil {
			break
		}
		records = append(records, record)
	}

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

func (a *AuditLog) LogScan(record ScanRecord) error {
	if record.ScanID == "" {
		record.ScanID = fmt.Sprintf("scan_%d", time.Now().UnixNano())
	}
	if err := os.MkdirAll(filepath.Dir(a.logPath), 0o700); err != nil {
		return fmt.Errorf("failed to create audit dir: %w", err)
	}

	f, err := os.OpenFile(a.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(record); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	return nil
}

// DeleteRecord removes the record at index, counted newest first as
// returned by LoadHistory.
func (a *AuditLog) DeleteRecord(index int) error {
	records, err := a.LoadHistory()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(records) {
		return fmt.Errorf("invalid index: %d", index)
	}
	records = append(records[:index], records[index+1:]...)

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	f, err := os.OpenFile(a.logPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to rewrite audit log: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	for _, record := range records {
		if err := encoder.Encode(record); err != nil {
			return fmt.Errorf("failed to write audit record: %w", err)
		}
	}
	return nil
}

// Summary holds the scan outcome CreateScanRecord needs.
type Summary struct {
	Root           string
	Mode           types.Mode
	SkipDegenerate bool
	All            []types.Record
	New            []types.Record
	Rejected       int
	FilesScanned   int
	FileErrors     int
	Duration       time.Duration
	BaselineFile   string
}

// CreateScanRecord builds an audit entry from s, keeping at most ten record
// summaries.
func CreateScanRecord(s Summary) ScanRecord {
	top := make([]RecordSummary, 0, 10)
	for i, r := range s.New {
		if i >= 10 {
			break
		}
		top = append(top, RecordSummary{Path: r.Path, Offset: r.MarkerOffset, Fingerprint: r.Fingerprint})
	}
	return ScanRecord{
		Timestamp:      time.Now(),
		Root:           s.Root,
		Mode:           s.Mode,
		SkipDegenerate: s.SkipDegenerate,
		TotalRecords:   len(s.All),
		NewRecords:     len(s.New),
		BaselinedCount: len(s.All) - len(s.New),
		Rejected:       s.Rejected,
		FilesScanned:   s.FilesScanned,
		FileErrors:     s.FileErrors,
		Duration:       s.Duration.String(),
		BaselineFile:   s.BaselineFile,
		TopRecords:     top,
	}
}
