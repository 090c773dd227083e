// Package analytics computes site-wide keyword context for the audit prompt.
package analytics

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// stopwords are ignored in frequency analysis: English function words plus
// navigation chrome that appears on nearly every marketing page.
var stopwords = toSet(`
a about above after again all also am an and any are as at be because been before being
below between both but by can could did do does doing down during each few for from
further had has have having he her here hers him his how i if in into is it its itself
just me more most my no nor not now of off on once only or other our ours out over own
same she should so some such than that the their theirs them then there these they this
those through to too under until up very was we were what when where which while who
whom why will with would you your yours
click button link menu page pages website site home homepage search loading load
login log sign signup cookie cookies accept privacy terms skip content main navigation
`)

func toSet(words string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(words) {
		set[w] = struct{}{}
	}
	return set
}

// isStopword checks if a word is ignored by WordFrequency.
func isStopword(word string) bool {
	_, ok := stopwords[strings.ToLower(word)]
	return ok
}

// WordFrequency counts lowercase terms in text, skipping stopwords, numbers
// and single characters.
func WordFrequency(text string) map[string]int {
	frequencies := make(map[string]int)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len([]rune(word)) < 2 || isNumeric(word) || isStopword(word) {
			continue
		}
		frequencies[word]++
	}
	return frequencies
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Reduce aggregates per-page frequency maps into one.
func Reduce(intermediate []map[string]int) map[string]int {
	final := make(map[string]int)
	for _, counts := range intermediate {
		for word, count := range counts {
			final[word] += count
		}
	}
	return final
}

// TopKeywords returns the n most frequent words formatted as "word:count".
// Ties are broken alphabetically so the prompt stays deterministic.
func TopKeywords(wordCounts map[string]int, n int) []string {
	type kv struct {
		Key   string
		Value int
	}

	ss := make([]kv, 0, len(wordCounts))
	for k, v := range wordCounts {
		ss = append(ss, kv{k, v})
	}
	sort.Slice(ss, func(i, j int) bool {
		if ss[i].Value != ss[j].Value {
			return ss[i].Value > ss[j].Value
		}
		return ss[i].Key < ss[j].Key
	})

	limit := min(n, len(ss))
	if limit < 0 {
		limit = 0
	}
	keywords := make([]string, limit)
	for i := 0; i < limit; i++ {
		keywords[i] = fmt.Sprintf("%s:%d", ss[i].Key, ss[i].Value)
	}
	return keywords
}

// SiteKeywords maps every page text to a frequency table, reduces them and
// returns the top n terms.
func SiteKeywords(texts []string, n int) []string {
	intermediate := make([]map[string]int, 0, len(texts))
	for _, text := range texts {
		intermediate = append(intermediate, WordFrequency(text))
	}
	return TopKeywords(Reduce(intermediate), n)
}
