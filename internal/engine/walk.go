package engine

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/ckeyscan/ckeyscan/internal/artifacts"
	"github.com/ckeyscan/ckeyscan/internal/ignore"
)

// target is one file selected by Walk.
type target struct {
	rel  string
	full string
	size int64
}

// Walk traverses cfg.Root and invokes handle for each eligible file. Paths
// that cannot be visited are passed to onErr and the walk continues.
func Walk(ctx context.Context, cfg Config, ign ignore.Matcher, handle func(rel, full string, size int64), onErr func(error)) error {
	return filepath.WalkDir(cfg.Root, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if onErr != nil {
				onErr(fmt.Errorf("walk %s: %w", p, err))
			}
			return nil
		}
		rel, _ := filepath.Rel(cfg.Root, p)
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if p != cfg.Root && (isDefaultDirExcluded(d.Name()) || ign.Match(rel+"/")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if rel == ignore.FileName || isDefaultFileExcluded(rel) {
			return nil
		}
		if !allowedByGlobs(rel, cfg) || ign.Match(rel) {
			return nil
		}
		// archives are opened by the artifact walker instead
		if cfg.ScanArchives && artifacts.IsArchivePath(rel) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			if onErr != nil {
				onErr(fmt.Errorf("stat %s: %w", p, err))
			}
			return nil
		}
		if cfg.MaxBytes > 0 && info.Size() > cfg.MaxBytes {
			log.Debugf("Skipping %s: %d bytes exceeds limit", rel, info.Size())
			return nil
		}
		handle(rel, p, info.Size())
		return nil
	})
}

func collectTargets(ctx context.Context, cfg Config, onErr func(error)) ([]target, error) {
	ign, err := ignore.Load(filepath.Join(cfg.Root, ignore.FileName))
	if err != nil {
		log.Warnf("Reading %s: %v", ignore.FileName, err)
	}
	var out []target
	err = Walk(ctx, cfg, ign, func(rel, full string, size int64) {
		out = append(out, target{rel: rel, full: full, size: size})
	}, onErr)
	return out, err
}

// CountTargets estimates the number of files to process based on cfg.
// It mirrors the selection of ScanWithStats without reading file contents.
func CountTargets(cfg Config) (int, error) {
	if !isDir(cfg.Root) {
		return 1, nil
	}
	ts, err := collectTargets(context.Background(), cfg, nil)
	if err != nil {
		return 0, err
	}
	return len(ts), nil
}
