// Package wallet holds the in-memory view of a wallet file that every scan
// operates on. The whole file is read before scanning; scanners need random
// access in both directions from a marker.
package wallet
