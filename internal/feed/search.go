package feed

import (
	"github.com/sahilm/fuzzy"
)

type titles []*Entry

func (t titles) String(i int) string {
	return t[i].Title
}

func (t titles) Len() int {
	return len(t)
}

// Find returns the index of the entry whose title best matches query.
func (f *Feed) Find(query string) (int, bool) {
	if query == "" {
		return 0, false
	}
	matches := fuzzy.FindFrom(query, titles(f.entries))
	if len(matches) == 0 {
		return 0, false
	}
	return matches[0].Index, true
}
