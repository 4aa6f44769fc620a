// Package engine contains the core scanning logic for ckeyscan. It loads
// wallet files, runs the selected record scanner, applies the acceptance
// policy, and returns structured records. This package is internal;
// external consumers should use the stable facade in pkg/core.
package engine
