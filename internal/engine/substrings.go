package engine

import "unicode/utf8"

// Substrings returns the substring multiset of s: every contiguous slice
// s[start:end] with start < end, plus the empty string, duplicates kept.
// Slices are ordered longest first; slices of equal length are ordered by
// start position. Lengths and positions count code points, not bytes.
func Substrings(s string) []string {
	n := utf8.RuneCountInString(s)
	subs := make([]string, 0, n*(n+1)/2+1)
	eachSubstring(s, func(sub string) {
		subs = append(subs, sub)
	})
	return subs
}

// eachSubstring walks the substring multiset of s in Substrings order
// without materializing it.
func eachSubstring(s string, fn func(sub string)) {
	// offsets[i] is the byte offset of the i-th code point; the final
	// element is len(s).
	offsets := make([]int, 0, len(s)+1)
	for i := range s {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(s))
	n := len(offsets) - 1

	for length := n; length > 0; length-- {
		for start := 0; start+length <= n; start++ {
			fn(s[offsets[start]:offsets[start+length]])
		}
	}
	fn("")
}

