package docmodel

import "sort"

func computeLineStarts(b []byte) []int {
	starts := []int{0}
	for i, c := range b {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// LineAt returns the 1-based line number containing byte offset. Offsets past
// the end map to the last line.
func (d *Document) LineAt(offset int) int {
	if offset <= 0 {
		return 1
	}
	return sort.Search(len(d.lineStarts), func(i int) bool {
		return d.lineStarts[i] > offset
	})
}

// LineCount returns the number of lines in the document.
func (d *Document) LineCount() int {
	return len(d.lineStarts)
}
