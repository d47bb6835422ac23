package search

import "strings"

// TermSeparator splits the argument of and/or searches.
const TermSeparator = ","

// Match applies the predicate of kind to text. Matching is case-sensitive.
func Match(kind Kind, text, argument string) bool {
	switch kind {
	case KindAllBut:
		return text != argument

	case KindExact:
		return strings.Contains(text, argument)

	case KindAnd:
		for _, term := range SplitTerms(argument) {
			if !strings.Contains(text, term) {
				return false
			}
		}
		return true

	case KindOr:
		for _, term := range SplitTerms(argument) {
			if strings.Contains(text, term) {
				return true
			}
		}
		return false

	default:
		return false
	}
}

// SplitTerms splits argument on commas. Terms keep surrounding whitespace,
// and a trailing empty term is dropped, so "" yields no terms and "a,b,"
// yields ["a" "b"].
func SplitTerms(argument string) []string {
	terms := strings.Split(argument, TermSeparator)
	if terms[len(terms)-1] == "" {
		terms = terms[:len(terms)-1]
	}
	return terms
}
