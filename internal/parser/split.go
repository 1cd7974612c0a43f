package parser

import (
	"regexp"
	"strings"
)

var (
	fourSpaces = regexp.MustCompile(`\s{4,}`)
	twoSpaces  = regexp.MustCompile(`\s{2,}`)
	unitWord   = regexp.MustCompile(`^(?i)(KG|KGS|GL|GAL|G|GR|L|LT|LB|%)$`)
	// numberWord also matches a fused quantity-unit token like "2.5GL".
	numberWord = regexp.MustCompile(`^\d+([.,]\d+)?(?i:KGS|KG|GAL|GL|GR|LT|LB|G|L|%)?$`)
)

// splitColumns recovers the column structure a copy-paste destroyed. Four
// strategies in descending order of confidence: tabs, runs of 4+ spaces,
// runs of 2+ spaces, then a token-level split keyed on material codes,
// numbers and unit words.
func splitColumns(line string) []string {
	if strings.Contains(line, "\t") {
		return trimParts(strings.Split(line, "\t"))
	}

	trimmed := strings.TrimSpace(line)
	if parts := trimParts(fourSpaces.Split(trimmed, -1)); len(parts) > 3 {
		return parts
	}
	if parts := trimParts(twoSpaces.Split(trimmed, -1)); len(parts) > 3 {
		return parts
	}
	return smartSplit(trimmed)
}

// smartSplit groups consecutive words into a name buffer and breaks on
// anything that looks like a code, a bare number, or a unit.
func smartSplit(line string) []string {
	var tokens []string
	var buffer []string
	flush := func() {
		if len(buffer) > 0 {
			tokens = append(tokens, strings.Join(buffer, " "))
			buffer = buffer[:0]
		}
	}
	for _, word := range strings.Fields(line) {
		switch {
		case codePattern.MatchString(word), numberWord.MatchString(word), unitWord.MatchString(word):
			flush()
			tokens = append(tokens, word)
		default:
			buffer = append(buffer, word)
		}
	}
	flush()
	return tokens
}

func trimParts(parts []string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
