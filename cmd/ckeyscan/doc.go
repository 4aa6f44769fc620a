// Package ckeyscan provides the command-line interface for the ckeyscan tool.
// It configures subcommands (scan, baseline, analyze, view, etc.), resolves
// flags against the configuration files and environment, and executes the
// selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/ckeyscan/ckeyscan/cmd/ckeyscan"
//	func main() { ckeyscan.Execute() }
package ckeyscan
