// Package ignore reads .ckeyscanignore files: one doublestar pattern per
// line, '#' comments, and a trailing '/' for whole directories.
package ignore

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

// FileName is the ignore file looked up at the scan root.
const FileName = ".ckeyscanignore"

// Matcher holds compiled ignore patterns. The zero value matches nothing.
type Matcher struct {
	patterns []string
}

// Load reads patterns from p. A missing file yields an empty matcher.
func Load(p string) (Matcher, error) {
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Matcher{}, nil
		}
		return Matcher{}, err
	}
	defer f.Close()

	var m Matcher
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		m.Add(sc.Text())
	}
	return m, sc.Err()
}

// Add appends one pattern line. Blank lines and comments are ignored.
func (m *Matcher) Add(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}
	line = strings.TrimPrefix(line, "/")
	if strings.HasSuffix(line, "/") {
		line += "**"
	}
	if !doublestar.ValidatePattern(line) {
		return
	}
	m.patterns = append(m.patterns, line)
}

// Len returns the number of patterns.
func (m Matcher) Len() int { return len(m.patterns) }

// Match reports whether rel, a slash or OS separated path relative to the
// scan root, is ignored. Patterns without a slash also match any base name.
func (m Matcher) Match(rel string) bool {
	rel = strings.ReplaceAll(rel, "\\", "/")
	base := path.Base(rel)
	for _, p := range m.patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
		if !strings.Contains(p, "/") {
			if ok, _ := doublestar.Match(p, base); ok {
				return true
			}
			continue
		}
		if ok, _ := doublestar.Match("**/"+p, rel); ok {
			return true
		}
	}
	return false
}
