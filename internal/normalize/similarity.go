package normalize

// Trigrams extracts the set of character trigrams from a normalized
// string. Strings shorter than three characters yield the whole string as
// a single gram so short titles still compare non-trivially.
func Trigrams(s string) map[string]struct{} {
	grams := make(map[string]struct{})
	runes := []rune(s)
	if len(runes) == 0 {
		return grams
	}
	if len(runes) < 3 {
		grams[string(runes)] = struct{}{}
		return grams
	}
	for i := 0; i+3 <= len(runes); i++ {
		grams[string(runes[i:i+3])] = struct{}{}
	}
	return grams
}

// Jaccard computes the Jaccard index over the character trigrams of two
// normalized strings, in [0, 1]. It is the documented, portable
// replacement for database-specific fuzzy-match operators: identical
// strings score 1, disjoint strings score 0.
func Jaccard(a, b string) float64 {
	ga := Trigrams(Title(a))
	gb := Trigrams(Title(b))
	if len(ga) == 0 && len(gb) == 0 {
		return 0
	}
	intersection := 0
	for g := range ga {
		if _, ok := gb[g]; ok {
			intersection++
		}
	}
	union := len(ga) + len(gb) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
