// Package ignore loads .piiscanignore files. Patterns use gitignore syntax and
// are matched against slash-separated paths relative to the scan root.
package ignore

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// FileName is the ignore file looked up at the scan root.
const FileName = ".piiscanignore"

// Matcher reports whether a relative path is ignored. The zero value ignores
// nothing.
type Matcher struct {
	m     gitignore.Matcher
	count int
}

// Load reads patterns from path. A missing file yields an empty matcher.
func Load(path string) (Matcher, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Matcher{}, nil
		}
		return Matcher{}, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads gitignore-style patterns from r. Blank lines and comments are
// skipped.
func Parse(r io.Reader) (Matcher, error) {
	var ps []gitignore.Pattern
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ps = append(ps, gitignore.ParsePattern(line, nil))
	}
	if err := sc.Err(); err != nil {
		return Matcher{}, err
	}
	if len(ps) == 0 {
		return Matcher{}, nil
	}
	return Matcher{m: gitignore.NewMatcher(ps), count: len(ps)}, nil
}

// Len returns the number of loaded patterns.
func (m Matcher) Len() int { return m.count }

// Match reports whether the file at rel is ignored.
func (m Matcher) Match(rel string) bool { return m.match(rel, false) }

// MatchDir reports whether the directory at rel is ignored.
func (m Matcher) MatchDir(rel string) bool { return m.match(rel, true) }

func (m Matcher) match(rel string, isDir bool) bool {
	if m.m == nil || rel == "" || rel == "." {
		return false
	}
	rel = strings.ReplaceAll(rel, "\\", "/")
	return m.m.Match(strings.Split(strings.Trim(rel, "/"), "/"), isDir)
}
