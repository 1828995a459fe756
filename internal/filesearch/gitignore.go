package filesearch

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"regexp"
	"strings"
)

// Matcher reports whether slash-separated relative paths are excluded by a
// set of .gitignore rules. A nil Matcher excludes nothing.
type Matcher struct {
	rules []rule
}

type rule struct {
	re       *regexp.Regexp
	negate   bool
	dirOnly  bool
	anchored bool
}

// LoadMatcher reads the rules in file. A missing file yields an empty matcher.
func LoadMatcher(file string) (*Matcher, error) {
	if file == "" {
		return &Matcher{}, nil
	}
	f, err := os.Open(file)
	if errors.Is(err, fs.ErrNotExist) {
		return &Matcher{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseMatcher(f)
}

// ParseMatcher reads .gitignore rules from r. Invalid patterns are skipped.
func ParseMatcher(r io.Reader) (*Matcher, error) {
	m := &Matcher{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		if ru, ok := parseRule(line); ok {
			m.rules = append(m.rules, ru)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// Add appends rules given as pattern strings, in order.
func (m *Matcher) Add(patterns ...string) {
	for _, p := range patterns {
		if ru, ok := parseRule(p); ok {
			m.rules = append(m.rules, ru)
		}
	}
}

// Excluded reports whether rel is ignored. The last matching rule decides.
func (m *Matcher) Excluded(rel string, isDir bool) bool {
	if m == nil {
		return false
	}
	rel = strings.TrimPrefix(rel, "./")

	excluded := false
	for _, ru := range m.rules {
		if ru.matches(rel, isDir) {
			excluded = !ru.negate
		}
	}
	return excluded
}

func (ru rule) matches(rel string, isDir bool) bool {
	switch {
	case ru.dirOnly && isDir:
		return ru.re.MatchString(rel)
	case ru.dirOnly:
		return ru.re.MatchString(path.Dir(rel))
	case ru.anchored:
		return ru.re.MatchString(rel)
	default:
		return ru.re.MatchString(rel) || ru.re.MatchString(path.Base(rel))
	}
}

func parseRule(pattern string) (rule, bool) {
	var ru rule
	if strings.HasPrefix(pattern, "!") {
		ru.negate = true
		pattern = pattern[1:]
	}
	if strings.HasSuffix(pattern, "/") {
		ru.dirOnly = true
		pattern = strings.TrimSuffix(pattern, "/")
	}
	ru.anchored = strings.HasPrefix(pattern, "/")

	re, err := regexp.Compile(globRegexp(pattern))
	if err != nil {
		return rule{}, false
	}
	ru.re = re
	return ru, true
}

// globRegexp translates a gitignore glob. Unanchored globs may match at any
// directory level and also match everything beneath a matching directory.
func globRegexp(glob string) string {
	var b strings.Builder
	anchored := strings.HasPrefix(glob, "/")
	if anchored {
		b.WriteString("^")
		glob = glob[1:]
	} else {
		b.WriteString("(^|/)")
	}

	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch {
		case strings.HasPrefix(glob[i:], "**/"):
			b.WriteString("(.*/)?")
			i += 2
		case strings.HasPrefix(glob[i:], "**"):
			b.WriteString(".*")
			i++
		case c == '*':
			b.WriteString("[^/]*")
		case c == '?':
			b.WriteString("[^/]")
		case c == '[':
			end := strings.IndexByte(glob[i+1:], ']')
			if end < 0 {
				b.WriteString(`\[`)
				continue
			}
			b.WriteString(glob[i : i+end+2])
			i += end + 1
		case c == '\\' && i+1 < len(glob):
			b.WriteString(regexp.QuoteMeta(glob[i+1 : i+2]))
			i++
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}

	if anchored {
		b.WriteString("$")
	} else {
		b.WriteString("(/.*)?$")
	}
	return b.String()
}
