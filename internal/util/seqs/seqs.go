package seqs

// AllEqual reports whether every element of s equals the first one. An empty
// or single-element sequence is trivially uniform. Its consumer is the
// brightness sync logic, which lives outside this bootstrap layer and uses it
// to decide whether displays have drifted apart; nothing in this layer calls
// it. Kept internal to avoid committing to external API stability pre-1.0.
func AllEqual[T comparable](s []T) bool {
	if len(s) == 0 {
		return true
	}
	for _, v := range s[1:] {
		if v != s[0] {
			return false
		}
	}
	return true
}
