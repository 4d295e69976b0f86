// Package match implements fuzzy string matching for question lookup.
//
// Similarity follows the Ratcliff/Obershelp sequence-matching scheme: the
// score is the ratio of characters in matching contiguous blocks to the
// total length of both strings (2.0*M/T, in [0,1]). This is deliberately
// not edit distance and not token-set overlap: a query that shares long
// runs with a stored question scores high even when words are reordered
// around them.
//
// The package is pure: no state, no I/O. Callers pass the candidate set
// on every query so newly learned questions are immediately matchable.
package match

// DefaultThreshold is the minimum similarity score for a candidate to
// count as a match.
const DefaultThreshold = 0.6

// Ratio returns the similarity of two strings in [0,1].
// Identical strings score 1.0; strings with no common characters score 0.0.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	matched := 0
	for _, block := range matchingBlocks(ra, rb) {
		matched += block.size
	}
	return 2.0 * float64(matched) / float64(total)
}

// BestMatch scans candidates in order and returns the one with the highest
// Ratio against query, provided that ratio is at least cutoff. Ties go to
// the earliest candidate (strictly-greater comparison during the scan), so
// results are deterministic for a stable candidate order.
func BestMatch(query string, candidates []string, cutoff float64) (string, bool) {
	if cutoff <= 0 {
		cutoff = DefaultThreshold
	}

	q := []rune(query)
	best := ""
	bestScore := 0.0
	found := false

	for _, candidate := range candidates {
		c := []rune(candidate)

		// Cheap upper bounds prune hopeless candidates without changing
		// results: both bound Ratio from above.
		if lengthRatioBound(len(q), len(c)) < cutoff || bestScore >= lengthRatioBound(len(q), len(c)) {
			continue
		}
		if overlapBound(q, c) < cutoff {
			continue
		}

		score := ratioRunes(q, c)
		if score >= cutoff && score > bestScore {
			best = candidate
			bestScore = score
			found = true
		}
	}

	return best, found
}

// lengthRatioBound is the maximum possible ratio given only the lengths:
// even if the shorter string matches entirely, 2*min/(la+lb) caps the score.
func lengthRatioBound(la, lb int) float64 {
	if la+lb == 0 {
		return 1.0
	}
	min := la
	if lb < la {
		min = lb
	}
	return 2.0 * float64(min) / float64(la+lb)
}

// overlapBound bounds the ratio by the multiset character overlap,
// ignoring order. Matching blocks can never use a character more often
// than it occurs in both strings.
func overlapBound(a, b []rune) float64 {
	if len(a)+len(b) == 0 {
		return 1.0
	}
	counts := make(map[rune]int, len(b))
	for _, r := range b {
		counts[r]++
	}
	overlap := 0
	for _, r := range a {
		if counts[r] > 0 {
			counts[r]--
			overlap++
		}
	}
	return 2.0 * float64(overlap) / float64(len(a)+len(b))
}

func ratioRunes(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1.0
	}
	matched := 0
	for _, block := range matchingBlocks(a, b) {
		matched += block.size
	}
	return 2.0 * float64(matched) / float64(total)
}

type block struct {
	aIdx, bIdx, size int
}

type span struct {
	alo, ahi, blo, bhi int
}

// matchingBlocks finds the non-overlapping matching blocks of a and b by
// recursively locating the longest matching block and matching the pieces
// to its left and right. Iterative with an explicit queue to avoid deep
// recursion on adversarial input.
func matchingBlocks(a, b []rune) []block {
	// Index of b: rune -> positions, rebuilt per call (candidates are short)
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	queue := []span{{0, len(a), 0, len(b)}}
	var blocks []block

	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		m := longestMatch(a, b2j, s.alo, s.ahi, s.blo, s.bhi)
		if m.size == 0 {
			continue
		}
		blocks = append(blocks, m)
		if s.alo < m.aIdx && s.blo < m.bIdx {
			queue = append(queue, span{s.alo, m.aIdx, s.blo, m.bIdx})
		}
		if m.aIdx+m.size < s.ahi && m.bIdx+m.size < s.bhi {
			queue = append(queue, span{m.aIdx + m.size, s.ahi, m.bIdx + m.size, s.bhi})
		}
	}

	return blocks
}

// longestMatch returns the longest matching block within
// a[alo:ahi] x b[blo:bhi]. Of all maximal blocks it prefers the one
// starting earliest in a, then earliest in b, which keeps results
// deterministic.
func longestMatch(a []rune, b2j map[rune][]int, alo, ahi, blo, bhi int) block {
	besti, bestj, bestsize := alo, blo, 0

	// j2len[j] = length of longest match ending at a[i-1], b[j-1]
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newj2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}

	return block{besti, bestj, bestsize}
}
