package matcher

import (
	"regexp/syntax"
	"unicode/utf8"
)

const minPrefilterLen = 3

// requiredLiteral parses a regex pattern and returns the longest literal
// that every match must contain, so texts lacking it can be skipped without
// running the regex. Literals under case folding are never returned: the
// folded forms cannot be checked with a plain substring test.
func requiredLiteral(pattern string) (string, bool) {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return "", false
	}
	re = re.Simplify()

	var best []rune
	for _, c := range literalsIn(re) {
		if len(c) > len(best) {
			best = c
		}
	}
	if len(best) < minPrefilterLen {
		return "", false
	}
	lit := string(best)
	if !utf8.ValidString(lit) {
		return "", false
	}
	return lit, true
}

// literalsIn walks the AST and returns the literal runs required by re.
func literalsIn(re *syntax.Regexp) [][]rune {
	switch re.Op {
	case syntax.OpLiteral:
		if len(re.Rune) == 0 || re.Flags&syntax.FoldCase != 0 {
			return nil
		}
		return [][]rune{re.Rune}

	case syntax.OpConcat:
		return literalsInConcat(re.Sub)

	case syntax.OpCapture, syntax.OpPlus:
		if len(re.Sub) > 0 {
			return literalsIn(re.Sub[0])
		}
		return nil

	case syntax.OpRepeat:
		// Required only if it must occur at least once.
		if re.Min >= 1 && len(re.Sub) > 0 {
			return literalsIn(re.Sub[0])
		}
		return nil

	default:
		// Star, quest, alternation, classes and anchors require nothing.
		return nil
	}
}

// literalsInConcat merges adjacent case-sensitive literal children into
// longer runs and recurses into the others.
func literalsInConcat(subs []*syntax.Regexp) [][]rune {
	var results [][]rune
	var current []rune
	flush := func() {
		if len(current) > 0 {
			results = append(results, current)
			current = nil
		}
	}

	for _, sub := range subs {
		if sub.Op == syntax.OpLiteral && len(sub.Rune) > 0 && sub.Flags&syntax.FoldCase == 0 {
			current = append(current, sub.Rune...)
			continue
		}
		flush()
		results = append(results, literalsIn(sub)...)
	}
	flush()
	return results
}
