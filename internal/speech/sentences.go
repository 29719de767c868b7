package speech

import (
	"strings"
	"unicode"
)

// abbreviations that end with a period without ending the sentence. Unit
// symbols matter here: answers about conversions are full of them.
var abbreviations = func() map[string]bool {
	words := []string{
		"mr", "mrs", "ms", "dr", "prof", "sr", "jr", "st",
		"i.e", "e.g", "etc", "vs", "cf", "approx", "ca", "no",
		"u.s", "u.k", "e.u",
		"ft", "in", "yd", "mi", "oz", "lb", "lbs", "pt", "qt", "gal",
		"tsp", "tbsp", "fl", "sq", "cu",
		"hr", "hrs", "min", "mins", "sec", "secs",
	}
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}()

// Sentences splits plain text into sentences. Decimal numbers, ellipses and
// common abbreviations do not end a sentence. Blank input gives no sentences.
func Sentences(text string) []string {
	runes := []rune(text)
	var out []string
	start := 0

	emit := func(end int) {
		if s := strings.TrimSpace(string(runes[start:end])); s != "" {
			out = append(out, s)
		}
	}

	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}

		// collect runs like "?!" and a closing quote or bracket
		end := i + 1
		for end < len(runes) && isTerminal(runes[end]) {
			end++
		}
		if end < len(runes) && strings.ContainsRune(`"')]`, runes[end]) {
			end++
		}

		if !sentenceEnd(runes, i, end) {
			i = end - 1
			continue
		}

		emit(end)
		start = end
		i = end - 1
	}
	emit(len(runes))
	return out
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// sentenceEnd reports whether the punctuation run runes[pos:end] closes a
// sentence.
func sentenceEnd(runes []rune, pos, end int) bool {
	// must be followed by whitespace or the end of the text
	if end < len(runes) && !unicode.IsSpace(runes[end]) {
		return false
	}
	if runes[pos] != '.' {
		return true
	}

	// ellipsis
	if end-pos >= 3 {
		return false
	}

	// the word before the period
	wordStart := pos
	for wordStart > 0 && !unicode.IsSpace(runes[wordStart-1]) {
		wordStart--
	}
	word := strings.ToLower(strings.TrimLeft(string(runes[wordStart:pos]), `"'([`))
	if abbreviations[word] {
		return false
	}

	// a lowercase continuation means the period was not a full stop
	next := end
	for next < len(runes) && unicode.IsSpace(runes[next]) {
		next++
	}
	if next < len(runes) && unicode.IsLower(runes[next]) && len([]rune(word)) <= 4 {
		return false
	}
	return true
}
