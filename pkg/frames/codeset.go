package frames

import (
	"fmt"
	"github.com/gobwas/glob"
)

// CodeSet is a set of code identities. Membership is by exact entry or by
// glob pattern over the function name (e.g. "runtime.*"), so a profiler can
// ignore whole families of frames without enumerating them.
type CodeSet struct {
	exact    map[Code]struct{}
	patterns []glob.Glob
}

// NewCodeSet compiles the given glob patterns into a set. An invalid pattern
// fails the whole construction.
func NewCodeSet(patterns ...string) (*CodeSet, error) {
	cs := &CodeSet{exact: map[Code]struct{}{}}
	for _, pattern := range patterns {
		if err := cs.AddPattern(pattern); err != nil {
			return nil, err
		}
	}
	return cs, nil
}

// Add inserts an exact code identity.
func (s *CodeSet) Add(code Code) {
	s.exact[code] = struct{}{}
}

// AddPattern compiles and inserts a glob pattern matched against code names.
func (s *CodeSet) AddPattern(pattern string) error {
	g, err := glob.Compile(pattern)
	if err != nil {
		return fmt.Errorf("failed to compile code pattern '%s': %w", pattern, err)
	}
	s.patterns = append(s.patterns, g)
	return nil
}

// Contains reports whether code is in the set, by exact entry or pattern.
func (s *CodeSet) Contains(code Code) bool {
	if _, ok := s.exact[code]; ok {
		return true
	}
	for _, g := range s.patterns {
		if g.Match(code.Name) {
			return true
		}
	}
	return false
}
