// File: internal/policy/summarize.go
package policy

import (
	"regexp"
	"sort"
	"strings"
)

const (
	// Posts shorter than this are passed through untouched.
	summarizeMinLength = 400
	summarizeMinWords  = 60

	// DefaultSummarySentences is how many sentences a summary keeps.
	DefaultSummarySentences = 3
)

var sentenceSplit = regexp.MustCompile(`(?s)(.*?[.!?])(?:\s+|$)`)
var wordRe = regexp.MustCompile(`[\p{L}\p{N}']+`)

// stopwords excluded from sentence scoring.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"of": true, "to": true, "in": true, "on": true, "for": true, "with": true,
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true,
	"it": true, "its": true, "this": true, "that": true, "these": true,
	"i": true, "we": true, "you": true, "they": true, "he": true, "she": true,
	"my": true, "our": true, "your": true, "their": true, "at": true, "as": true,
	"by": true, "from": true, "have": true, "has": true, "had": true, "not": true,
	"so": true, "do": true, "does": true, "did": true, "will": true, "can": true,
}

// Summarize condenses long post text to roughly maxSentences sentences
// before it reaches prompt building. Short posts come back whitespace
// normalized but otherwise untouched. Sentences are scored by word
// frequency and returned in their original order.
func Summarize(text string, maxSentences int) string {
	if text == "" {
		return ""
	}
	if len(text) < summarizeMinLength || strings.Count(text, " ") < summarizeMinWords {
		return strings.TrimSpace(text)
	}
	if maxSentences <= 0 {
		maxSentences = DefaultSummarySentences
	}

	normalized := strings.Join(strings.Fields(text), " ")
	sentences := splitSentences(normalized)
	if len(sentences) <= maxSentences {
		return normalized
	}

	freq := map[string]int{}
	for _, s := range sentences {
		for _, w := range wordRe.FindAllString(strings.ToLower(s), -1) {
			if !stopwords[w] {
				freq[w]++
			}
		}
	}

	type scored struct {
		index int
		score float64
	}
	ranked := make([]scored, 0, len(sentences))
	for i, s := range sentences {
		words := wordRe.FindAllString(strings.ToLower(s), -1)
		if len(words) == 0 {
			continue
		}
		total := 0
		for _, w := range words {
			total += freq[w]
		}
		ranked = append(ranked, scored{index: i, score: float64(total) / float64(len(words))})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if len(ranked) > maxSentences {
		ranked = ranked[:maxSentences]
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].index < ranked[j].index })

	parts := make([]string, 0, len(ranked))
	for _, r := range ranked {
		parts = append(parts, sentences[r.index])
	}
	out := strings.TrimSpace(strings.Join(parts, " "))
	if out == "" {
		return normalized
	}
	return out
}

func splitSentences(text string) []string {
	matches := sentenceSplit.FindAllStringSubmatch(text, -1)
	var out []string
	consumed := 0
	for _, m := range matches {
		s := strings.TrimSpace(m[1])
		if s != "" {
			out = append(out, s)
		}
		consumed += len(m[0])
	}
	// Trailing fragment without terminal punctuation.
	if rest := strings.TrimSpace(text[consumed:]); rest != "" {
		out = append(out, rest)
	}
	return out
}
