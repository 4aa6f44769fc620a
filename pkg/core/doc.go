// Package core provides a small, stable facade over ckeyscan's internal engine
// for external integrations. It re-exports a narrow API surface so tools can
// depend on a stable import path without importing internal packages.
//
// Example:
//
//	cfg := core.Config{Root: "wallet.dat", Mode: core.ModeStructural, SkipDegenerate: true}
//	records, err := core.Scan(cfg)
//	if err != nil { /* handle */ }
//	_ = core.MarshalRecords(os.Stdout, records)
package core
