package insights

import (
	"regexp"
	"strings"
)

var sentenceEnd = regexp.MustCompile(`[.!?]+\s+`)

// chunkText splits a long transcript into ordered chunks of at most
// maxChars, cutting at sentence boundaries so a concept is not split
// mid-thought. Text at or under the limit comes back as a single chunk.
// A single sentence longer than the limit becomes its own chunk rather
// than being cut.
func chunkText(text string, maxChars int) []string {
	if len(text) <= maxChars {
		return []string{text}
	}

	sentences := splitSentences(text)

	var chunks []string
	var current strings.Builder
	for _, sentence := range sentences {
		if current.Len() > 0 && current.Len()+len(sentence) > maxChars {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
		current.WriteString(sentence)
		current.WriteString(" ")
	}
	if strings.TrimSpace(current.String()) != "" {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}

	return chunks
}

// splitSentences splits text after sentence-ending punctuation, keeping
// the punctuation with its sentence.
func splitSentences(text string) []string {
	var sentences []string
	rest := text
	for {
		loc := sentenceEnd.FindStringIndex(rest)
		if loc == nil {
			if strings.TrimSpace(rest) != "" {
				sentences = append(sentences, strings.TrimSpace(rest))
			}
			return sentences
		}
		sentences = append(sentences, strings.TrimSpace(rest[:loc[1]]))
		rest = rest[loc[1]:]
	}
}

// dedupeStrings removes case-insensitive duplicates while preserving the
// first occurrence's order and spelling. Used when reassembling per-chunk
// results, where chunk-boundary overlap yields repeated ideas.
func dedupeStrings(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, strings.TrimSpace(item))
	}
	return out
}
