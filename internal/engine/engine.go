package engine

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/ckeyscan/ckeyscan/internal/artifacts"
	"github.com/ckeyscan/ckeyscan/internal/cache"
	"github.com/ckeyscan/ckeyscan/internal/scanner/factory"
	"github.com/ckeyscan/ckeyscan/internal/types"
	"github.com/ckeyscan/ckeyscan/internal/validate"
	"github.com/ckeyscan/ckeyscan/internal/wallet"
	"golang.org/x/sync/errgroup"
)

// Config controls scanning behavior including scope, performance, and filters.
type Config struct {
	Root           string
	Mode           types.Mode
	SkipDegenerate bool
	IncludeGlobs   string
	ExcludeGlobs   string
	MaxBytes       int64
	Threads        int
	NoCache        bool
	Progress       func()

	// Wallets inside backup archives (optional)
	ScanArchives    bool
	MaxArchiveBytes int64
	MaxEntries      int
	MaxDepth        int
	ScanTimeBudget  time.Duration
}

// Policy returns the acceptance policy selected by cfg.
func (cfg Config) Policy() validate.Policy {
	mode := cfg.Mode
	if mode == "" {
		mode = types.ModeLegacy
	}
	return validate.DefaultPolicy(mode, cfg.SkipDegenerate)
}

// FileResult is the outcome of scanning one wallet buffer.
type FileResult struct {
	Path     string
	Format   wallet.Format
	Records  []types.Record
	Rejected int
}

// Result contains records and basic scan statistics.
type Result struct {
	Records       []types.Record
	Rejected      int
	FilesScanned  int
	CacheHits     int
	Formats       map[string]wallet.Format
	FileErrors    []error
	ArtifactStats artifacts.Stats
	Duration      time.Duration
}

// ScanBuffer runs the policy's scanner over data and keeps the records the
// policy accepts, in file order.
func ScanBuffer(path string, data []byte, policy validate.Policy) (FileResult, error) {
	scnr, err := factory.New(policy.Mode)
	if err != nil {
		return FileResult{}, err
	}
	buf := wallet.FromBytes(path, data)
	res := FileResult{Path: path, Format: wallet.Sniff(buf)}
	if res.Format == wallet.FormatSQLite {
		log.Debugf("%s is a SQLite wallet; ckey records are not stored inline and the scan will likely find nothing", path)
	}
	for _, r := range scnr.Scan(buf) {
		if reason := policy.Check(r.Hex); reason != validate.ReasonOK {
			log.Tracef("Rejected record at %s:%d: %s", path, r.MarkerOffset, reason)
			res.Rejected++
			continue
		}
		res.Records = append(res.Records, r)
	}
	log.Debugf("Scanned %s (%s, %s): %d accepted, %d rejected",
		path, res.Format, policy.Mode, len(res.Records), res.Rejected)
	return res, nil
}

// ScanFile loads the file at path and scans it. Load failures are returned
// as *wallet.IOError.
func ScanFile(path string, policy validate.Policy) (FileResult, error) {
	buf, err := wallet.Load(path)
	if err != nil {
		return FileResult{}, err
	}
	return ScanBuffer(path, buf.Bytes(), policy)
}

// Scan runs a scan and returns only records (without stats).
func Scan(cfg Config) ([]types.Record, error) {
	res, err := ScanWithStats(cfg)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

// ScanWithStats runs a scan and returns records along with timing and counts.
func ScanWithStats(cfg Config) (Result, error) {
	return ScanWithStatsContext(context.Background(), cfg)
}

// ScanWithStatsContext is ScanWithStats with cancellation between files.
func ScanWithStatsContext(ctx context.Context, cfg Config) (Result, error) {
	started := time.Now()
	result := Result{Formats: map[string]wallet.Format{}}
	policy := cfg.Policy()
	if _, err := factory.New(policy.Mode); err != nil {
		return result, err
	}
	if cfg.Threads <= 0 {
		cfg.Threads = runtime.GOMAXPROCS(0)
	}

	if !isDir(cfg.Root) {
		fr, err := ScanFile(cfg.Root, policy)
		if err != nil {
			return result, err
		}
		result.add(fr)
		result.FilesScanned = 1
		if cfg.Progress != nil {
			cfg.Progress()
		}
		result.Duration = time.Since(started)
		return result, nil
	}

	var db cache.DB
	if !cfg.NoCache {
		var err error
		if db, err = cache.Load(cfg.Root); err != nil && !os.IsNotExist(err) {
			log.Debugf("Ignoring unreadable cache: %v", err)
		}
	} else {
		db.Entries = map[string]cache.Entry{}
	}

	var mu sync.Mutex
	onErr := func(err error) {
		mu.Lock()
		result.FileErrors = append(result.FileErrors, err)
		mu.Unlock()
	}

	targets, err := collectTargets(ctx, cfg, onErr)
	if err != nil {
		return result, err
	}
	if err := scanTargets(ctx, cfg, policy, targets, &db, onErr, &result); err != nil {
		return result, err
	}

	if cfg.ScanArchives {
		scanArtifacts(cfg, policy, &result)
	}

	sortRecords(result.Records)
	result.Duration = time.Since(started)
	if !cfg.NoCache {
		if err := cache.Save(cfg.Root, db); err != nil {
			log.Debugf("Saving cache: %v", err)
		}
	}
	return result, nil
}

func scanTargets(ctx context.Context, cfg Config, policy validate.Policy, targets []target, db *cache.DB, onErr func(error), result *Result) error {
	key := policyKey(policy)
	files := make([]*FileResult, len(targets))
	hits := make([]bool, len(targets))
	hashes := make([]string, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Threads)
	for i, t := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			buf, err := wallet.Load(t.full)
			if err != nil {
				onErr(err)
				return nil
			}
			hashes[i] = cache.Key(buf.Bytes())
			if !cfg.NoCache {
				if e, ok := db.Lookup(t.rel, hashes[i], key); ok {
					files[i] = &FileResult{Path: t.rel, Format: wallet.Sniff(buf), Records: e.Records, Rejected: e.Rejected}
					hits[i] = true
					return nil
				}
			}
			fr, err := ScanBuffer(t.rel, buf.Bytes(), policy)
			if err != nil {
				return err
			}
			files[i] = &fr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, fr := range files {
		if fr == nil {
			continue
		}
		result.add(*fr)
		result.FilesScanned++
		if hits[i] {
			result.CacheHits++
		} else if !cfg.NoCache {
			db.Entries[fr.Path] = cache.Entry{Hash: hashes[i], Policy: key, Records: fr.Records, Rejected: fr.Rejected}
		}
		if cfg.Progress != nil {
			cfg.Progress()
		}
	}
	return nil
}

func scanArtifacts(cfg Config, policy validate.Policy, result *Result) {
	lim := artifacts.Limits{
		MaxArchiveBytes: cfg.MaxArchiveBytes,
		MaxEntries:      cfg.MaxEntries,
		MaxDepth:        cfg.MaxDepth,
		TimeBudget:      cfg.ScanTimeBudget,
	}
	allow := func(rel string) bool { return allowedByGlobs(rel, cfg) }
	emit := func(p string, b []byte) {
		fr, err := ScanBuffer(p, b, policy)
		if err != nil {
			result.FileErrors = append(result.FileErrors, fmt.Errorf("scan %s: %w", p, err))
			return
		}
		result.add(fr)
		result.FilesScanned++
		if cfg.Progress != nil {
			cfg.Progress()
		}
	}
	if err := artifacts.ScanArchives(cfg.Root, lim, allow, emit, &result.ArtifactStats); err != nil {
		result.FileErrors = append(result.FileErrors, err)
	}
}

func (r *Result) add(fr FileResult) {
	r.Records = append(r.Records, fr.Records...)
	r.Rejected += fr.Rejected
	r.Formats[fr.Path] = fr.Format
}

// sortRecords orders records by path then marker offset. The sort is stable
// so records sharing an offset keep their scan order.
func sortRecords(rs []types.Record) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].Path != rs[j].Path {
			return rs[i].Path < rs[j].Path
		}
		return rs[i].MarkerOffset < rs[j].MarkerOffset
	})
}

func policyKey(p validate.Policy) string {
	return fmt.Sprintf("%s:%t:%d:%d:%d", p.Mode, p.SkipDegenerate, p.MinHexLen, p.MaxHexLen, p.DegenerateRun)
}

func isDir(p string) bool {
	st, err := os.Stat(p)
	return err == nil && st.IsDir()
}

