// Package cache persists per-file scan results and the last scan of a root
// under the user cache directory.
package cache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/ckeyscan/ckeyscan/internal/hexcodec"
	"github.com/ckeyscan/ckeyscan/internal/scanner"
	"github.com/ckeyscan/ckeyscan/internal/types"
)

// Version is bumped whenever Entry changes shape.
const Version = 2

// Entry is the cached outcome of scanning one file with one policy.
type Entry struct {
	Hash     string         `json:"hash"`
	Policy   string         `json:"policy"`
	Records  []types.Record `json:"records"`
	Rejected int            `json:"rejected"`
}

// DB maps file paths (relative to the scan root) to entries.
type DB struct {
	Version int              `json:"version"`
	Root    string           `json:"root"`
	Entries map[string]Entry `json:"entries"`
}

// Dir returns the ckeyscan cache directory.
func Dir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "ckeyscan"), nil
}

func rootKey(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	return Key([]byte(abs))
}

func defaultPath(root string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "files-"+rootKey(root)+".json"), nil
}

// Key returns the content hash used to detect changed files.
func Key(b []byte) string { return scanner.Fingerprint(b) }

// Load reads the cache for root. On any error an empty, usable DB is
// returned together with the error.
func Load(root string) (DB, error) {
	empty := DB{Version: Version, Root: root, Entries: map[string]Entry{}}
	p, err := defaultPath(root)
	if err != nil {
		return empty, err
	}
	f, err := os.ReadFile(p)
	if err != nil {
		return empty, err
	}
	var db DB
	if err := json.Unmarshal(f, &db); err != nil {
		return empty, err
	}
	if db.Version != Version {
		return empty, nil
	}
	if db.Entries == nil {
		db.Entries = map[string]Entry{}
	}
	return db, nil
}

// Lookup returns the entry cached for rel when both the content hash and
// the policy key match. Payloads are restored from the stored hex.
func (db DB) Lookup(rel, hash, policy string) (Entry, bool) {
	e, ok := db.Entries[rel]
	if !ok || e.Hash != hash || e.Policy != policy {
		return Entry{}, false
	}
	out := make([]types.Record, len(e.Records))
	for i, r := range e.Records {
		if b, err := hexcodec.Decode(r.Hex); err == nil {
			r.Payload = b
		}
		out[i] = r
	}
	e.Records = out
	return e, true
}

// Save writes db for root, creating the cache directory when needed.
func Save(root string, db DB) error {
	if db.Entries == nil {
		return errors.New("empty cache")
	}
	p, err := defaultPath(root)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return err
	}
	db.Version = Version
	db.Root = root
	b, err := json.Marshal(db)
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}
