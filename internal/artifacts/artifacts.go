// Package artifacts finds wallet files inside backup archives without
// extracting them to disk.
package artifacts

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/ckeyscan/ckeyscan/internal/ignore"
	"github.com/ckeyscan/ckeyscan/internal/scanner"
)

var (
	errTimeBudget = errors.New("time budget exceeded")
	errByteBudget = errors.New("byte budget exceeded")
)

// Limits bounds the work spent on a single top-level archive.
type Limits struct {
	MaxArchiveBytes int64
	MaxEntries      int
	MaxDepth        int
	TimeBudget      time.Duration
}

// Stats counts archives whose walk stopped early, by reason.
type Stats struct {
	Archives         int
	Entries          int
	AbortedByBytes   int
	AbortedByEntries int
	AbortedByDepth   int
	AbortedByTime    int
}

// PathAllowFunc returns true if the archive at rel (relative to the root)
// should be opened. When nil, all archives are allowed.
type PathAllowFunc func(rel string) bool

// EmitFunc receives one wallet entry. path is a virtual path such as
// "backup.zip::wallets/wallet.dat".
type EmitFunc func(path string, data []byte)

// IsArchivePath reports whether name has a supported archive extension.
func IsArchivePath(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range []string{".zip", ".tar", ".tgz", ".tar.gz", ".gz"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// IsWalletName reports whether the base name of p looks like a wallet file.
func IsWalletName(p string) bool {
	base := strings.ToLower(path.Base(strings.ReplaceAll(p, "\\", "/")))
	if strings.HasPrefix(base, "wallet") {
		return true
	}
	return strings.HasSuffix(base, ".dat")
}

// ScanArchives walks root for archives and emits the wallet entries found
// inside them. Unreadable or corrupt archives are skipped.
func ScanArchives(root string, limits Limits, allow PathAllowFunc, emit EmitFunc, stats *Stats) error {
	if stats == nil {
		stats = &Stats{}
	}
	ign, _ := ignore.Load(filepath.Join(root, ignore.FileName))
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, _ := filepath.Rel(root, p)
		rel = filepath.ToSlash(rel)
		if !IsArchivePath(rel) || ign.Match(rel) {
			return nil
		}
		if allow != nil && !allow(rel) {
			return nil
		}
		ScanArchiveFile(p, rel, limits, emit, stats)
		return nil
	})
}

// ScanArchiveFile walks the archive at fullPath, reporting entries under the
// virtual prefix rel.
func ScanArchiveFile(fullPath, rel string, limits Limits, emit EmitFunc, stats *Stats) {
	f, err := os.Open(fullPath)
	if err != nil {
		log.Debugf("Skipping archive %s: %v", rel, err)
		return
	}
	defer f.Close()

	w := &walker{limits: limits, emit: emit}
	if limits.TimeBudget > 0 {
		w.deadline = time.Now().Add(limits.TimeBudget)
	}
	walletArchive := IsWalletName(strings.TrimSuffix(strings.TrimSuffix(rel, path.Ext(rel)), ".tar"))
	w.archive(rel, rel, f, 0, walletArchive)

	stats.Archives++
	stats.Entries += w.entries
	switch w.aborted {
	case errByteBudget:
		stats.AbortedByBytes++
	case errTimeBudget:
		stats.AbortedByTime++
	case errEntryBudget:
		stats.AbortedByEntries++
	case errDepthBudget:
		stats.AbortedByDepth++
	}
	if w.aborted != nil {
		log.Infof("Archive %s: %v", rel, w.aborted)
	}
}

var (
	errEntryBudget = errors.New("entry budget exceeded")
	errDepthBudget = errors.New("depth budget exceeded")
)

type walker struct {
	limits       Limits
	emit         EmitFunc
	deadline     time.Time
	decompressed int64
	entries      int
	aborted      error
}

func (w *walker) stop(err error) bool {
	if w.aborted == nil {
		w.aborted = err
	}
	return true
}

func (w *walker) exceeded(depth int) bool {
	if w.aborted != nil {
		return true
	}
	switch {
	case w.limits.MaxEntries > 0 && w.entries >= w.limits.MaxEntries:
		return w.stop(errEntryBudget)
	case w.limits.MaxArchiveBytes > 0 && w.decompressed >= w.limits.MaxArchiveBytes:
		return w.stop(errByteBudget)
	case w.limits.MaxDepth > 0 && depth > w.limits.MaxDepth:
		return w.stop(errDepthBudget)
	case !w.deadline.IsZero() && time.Now().After(w.deadline):
		return w.stop(errTimeBudget)
	}
	return false
}

// archive dispatches on the extension of name. r is either an *os.File or
// a *bytes.Reader for nested archives.
func (w *walker) archive(vpath, name string, r io.Reader, depth int, all bool) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		w.zip(vpath, r, depth, all)
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		gz, err := gzip.NewReader(r)
		if err != nil {
			return
		}
		defer gz.Close()
		w.tar(vpath, gz, depth, all)
	case strings.HasSuffix(lower, ".tar"):
		w.tar(vpath, r, depth, all)
	case strings.HasSuffix(lower, ".gz"):
		gz, err := gzip.NewReader(r)
		if err != nil {
			return
		}
		defer gz.Close()
		inner := gz.Name
		if inner == "" {
			inner = strings.TrimSuffix(path.Base(name), path.Ext(name))
		}
		b, err := w.read(gz)
		if err != nil {
			return
		}
		w.entry(vpath, inner, b, depth, all)
	}
}

func (w *walker) zip(vpath string, r io.Reader, depth int, all bool) {
	var ra io.ReaderAt
	var size int64
	switch v := r.(type) {
	case *os.File:
		fi, err := v.Stat()
		if err != nil {
			return
		}
		ra, size = v, fi.Size()
	case *bytes.Reader:
		ra, size = v, v.Size()
	default:
		return
	}
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return
	}
	for _, f := range zr.File {
		if w.exceeded(depth) {
			return
		}
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			continue
		}
		b, err := w.read(rc)
		_ = rc.Close()
		if err != nil {
			continue
		}
		w.entry(vpath, f.Name, b, depth, all)
	}
}

func (w *walker) tar(vpath string, r io.Reader, depth int, all bool) {
	tr := tar.NewReader(r)
	for {
		if w.exceeded(depth) {
			return
		}
		hdr, err := tr.Next()
		if err != nil || hdr == nil {
			return
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		b, err := w.read(tr)
		if err != nil {
			continue
		}
		w.entry(vpath, hdr.Name, b, depth, all)
	}
}

func (w *walker) entry(vpath, name string, b []byte, depth int, all bool) {
	child := scanner.BuildVirtualPath(vpath, name)
	if IsArchivePath(name) {
		if w.limits.MaxDepth > 0 && depth+1 > w.limits.MaxDepth {
			w.stop(errDepthBudget)
			return
		}
		w.archive(child, name, bytes.NewReader(b), depth+1, all)
		return
	}
	if !all && !IsWalletName(name) {
		return
	}
	w.entries++
	w.emit(child, b)
}

func (w *walker) read(r io.Reader) ([]byte, error) {
	if !w.deadline.IsZero() && time.Now().After(w.deadline) {
		w.stop(errTimeBudget)
		return nil, errTimeBudget
	}
	remain := int64(1 << 62)
	if w.limits.MaxArchiveBytes > 0 {
		remain = w.limits.MaxArchiveBytes - w.decompressed
		if remain <= 0 {
			w.stop(errByteBudget)
			return nil, errByteBudget
		}
	}
	var buf bytes.Buffer
	const chunk = 32 * 1024
	for {
		if !w.deadline.IsZero() && time.Now().After(w.deadline) {
			w.stop(errTimeBudget)
			return nil, errTimeBudget
		}
		sz := int64(chunk)
		if sz > remain {
			sz = remain
		}
		n, err := io.CopyN(&buf, r, sz)
		w.decompressed += n
		remain -= n
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return buf.Bytes(), nil
			}
			return nil, err
		}
		if remain <= 0 {
			// A truncated wallet would yield partial records.
			w.stop(errByteBudget)
			return nil, errByteBudget
		}
	}
}
