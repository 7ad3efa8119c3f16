package textutil

// SequenceRatio computes a Ratcliff-Obershelp similarity ratio between two
// strings: twice the number of matching characters over the combined length,
// where matches are counted across recursively located longest common blocks.
// The result is symmetric, 1.0 for identical strings, and 0.0 for strings
// sharing no characters.
func SequenceRatio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	// Canonical argument order makes the ratio strictly symmetric even when
	// equal-length matching blocks could be chosen differently.
	if a > b {
		ra, rb = rb, ra
	}
	matched := matchingChars(ra, rb)
	if matched == 0 {
		return 0
	}
	return 2 * float64(matched) / float64(len(ra)+len(rb))
}

// matchingChars sums the lengths of the longest matching block and, recursively,
// the matching blocks to its left and right.
func matchingChars(a, b []rune) int {
	ai, bi, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingChars(a[:ai], b[:bi])
	total += matchingChars(a[ai+size:], b[bi+size:])
	return total
}

// longestMatch locates the longest common contiguous block of a and b,
// preferring the earliest occurrence in a on ties.
func longestMatch(a, b []rune) (ai, bi, size int) {
	runs := make(map[int]int, len(b))
	for i := range a {
		next := make(map[int]int, len(b))
		for j := range b {
			if a[i] != b[j] {
				continue
			}
			length := runs[j-1] + 1
			next[j] = length
			if length > size {
				ai = i - length + 1
				bi = j - length + 1
				size = length
			}
		}
		runs = next
	}
	return ai, bi, size
}
