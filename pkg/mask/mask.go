// Package mask hides secrets in command lines and command output before they
// are drawn.
package mask

import (
	"fmt"
	"regexp"

	"github.com/b/tabdeck/pkg/config"
)

// Rule replaces every match of Pattern with Replacement, which may refer to
// capture groups as ${1}.
type Rule struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// Masker applies an ordered rule table. The zero value masks nothing.
type Masker struct {
	rules []Rule
}

// New compiles config rules. The first invalid pattern is an error.
func New(rules []config.MaskRule) (*Masker, error) {
	m := &Masker{}
	for i, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("mask rule %d: %w", i, err)
		}
		repl := r.Replacement
		if repl == "" {
			repl = "****"
		}
		m.rules = append(m.rules, Rule{Pattern: re, Replacement: repl})
	}
	return m, nil
}

// Apply returns s with every rule applied in order.
func (m *Masker) Apply(s string) string {
	if m == nil {
		return s
	}
	for _, r := range m.rules {
		s = r.Pattern.ReplaceAllString(s, r.Replacement)
	}
	return s
}

// Len returns the number of rules.
func (m *Masker) Len() int {
	if m == nil {
		return 0
	}
	return len(m.rules)
}
