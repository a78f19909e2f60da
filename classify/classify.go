// Package classify implements a layered, first-match-wins heuristic matcher.
//
// A chain of rules is evaluated in order against an input string, optionally
// backed by a reference set of known category names. The first rule producing
// a result wins and no later rule is evaluated. Both source attribution and
// log filename classification run through the same engine.
package classify

import (
	"regexp"
	"strings"
)

// Unknown is the category returned when no rule in the chain matches.
const Unknown = "unknown"

// Tier qualifies how a category was obtained.
type Tier string

const (
	// TierExact means a reference member was found verbatim inside the text.
	TierExact Tier = "exact"
	// TierFuzzy means a pattern candidate was resolved to a reference member.
	TierFuzzy Tier = "fuzzy"
	// TierRaw means a pattern candidate matched no reference member and is
	// returned as an ad hoc, not-yet-known category.
	TierRaw Tier = "raw"
	// TierNone means no rule produced a candidate.
	TierNone Tier = "none"
)

// Result is the outcome of a classification.
type Result struct {
	Category string
	Tier     Tier
}

// Rule is a single step of a chain. Match reports whether the rule produced
// a category for the given text. refs is the ordered reference set, which may
// be empty.
type Rule interface {
	Match(text string, refs []string) (Result, bool)
}

// Classify evaluates the chain in order and returns the first result.
// Rules never see each other's output: once a rule matches, evaluation stops.
// When no rule matches, the category is Unknown with TierNone.
func Classify(text string, chain []Rule, refs []string) Result {
	for _, rule := range chain {
		if res, ok := rule.Match(text, refs); ok {
			return res
		}
	}
	return Result{Category: Unknown, Tier: TierNone}
}

type referenceRule struct{}

// Reference returns a rule matching the first reference member contained,
// case-insensitively, inside the text. The reference set's order decides ties.
func Reference() Rule {
	return referenceRule{}
}

func (referenceRule) Match(text string, refs []string) (Result, bool) {
	lower := strings.ToLower(text)
	for _, ref := range refs {
		if ref != "" && strings.Contains(lower, strings.ToLower(ref)) {
			return Result{Category: ref, Tier: TierExact}, true
		}
	}
	return Result{}, false
}

type patternRule struct {
	re *regexp.Regexp
}

// Pattern returns a rule extracting a candidate substring from the lowercased
// text using the given regular expression. The candidate is the first capture
// group, or the whole match when the expression has no groups. With a
// non-empty reference set the candidate is resolved against it (TierFuzzy);
// an unresolved candidate is returned as-is (TierRaw).
//
// Pattern panics on an invalid expression; chains are package-level constants
// built at init time.
func Pattern(expr string) Rule {
	return patternRule{re: regexp.MustCompile(expr)}
}

func (r patternRule) Match(text string, refs []string) (Result, bool) {
	m := r.re.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return Result{}, false
	}
	candidate := m[0]
	if len(m) > 1 {
		candidate = m[1]
	}
	if candidate == "" {
		return Result{}, false
	}
	if ref, ok := Resolve(candidate, refs); ok {
		return Result{Category: ref, Tier: TierFuzzy}, true
	}
	return Result{Category: candidate, Tier: TierRaw}, true
}

// Resolve fuzzy-matches a candidate against the reference set. A member equal
// to the candidate (case-insensitively) always wins; otherwise the first
// member (in set order) satisfying any of: candidate contained in the member,
// member contained in the candidate, or absolute length difference of at most
// two characters. The length test is deliberately lax and can pair unrelated
// short names; callers inherit that behavior knowingly.
func Resolve(candidate string, refs []string) (string, bool) {
	lower := strings.ToLower(candidate)
	for _, ref := range refs {
		if strings.EqualFold(ref, lower) {
			return ref, true
		}
	}
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		refLower := strings.ToLower(ref)
		if strings.Contains(refLower, lower) ||
			strings.Contains(lower, refLower) ||
			abs(len(lower)-len(refLower)) <= 2 {
			return ref, true
		}
	}
	return "", false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
