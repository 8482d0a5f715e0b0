package harvest

// greaterID reports whether a is a newer external id than b. Platform ids
// are monotonic: Twitter ids are decimal snowflakes, Reddit ids are base-36,
// so within one platform a longer id is always newer and equal-length ids
// order lexicographically.
func greaterID(a, b string) bool {
	if len(a) != len(b) {
		return len(a) > len(b)
	}
	return a > b
}

// maxExternalID returns the greatest id in the slice, or "" when empty
func maxExternalID(ids []string) string {
	max := ""
	for _, id := range ids {
		if max == "" || greaterID(id, max) {
			max = id
		}
	}
	return max
}
