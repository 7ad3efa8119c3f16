package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stopWords are tokens removed during normalization: articles, prepositions,
// and generic media nouns that carry no identity.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {},
	"song": {}, "music": {}, "video": {}, "audio": {}, "mp3": {}, "mp4": {},
}

var (
	// strippedPattern matches characters outside letters/digits/hyphen/space.
	strippedPattern = regexp.MustCompile(`[^\p{L}\p{N}\s-]+`)
	// whitespacePattern collapses whitespace runs.
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// asciiFolder decomposes text and drops combining marks so accented
// characters compare equal to their ASCII forms.
var asciiFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize converts a raw query into its canonical matching form: folded to
// ASCII, lowercased, stripped of punctuation, whitespace collapsed, and
// stop words removed. When the stop-word filter would remove every token the
// pre-filter text is returned instead, so a non-empty query never normalizes
// to the empty string.
func Normalize(query string) string {
	folded, _, err := transform.String(asciiFolder, query)
	if err != nil {
		folded = query
	}
	cleaned := strippedPattern.ReplaceAllString(folded, " ")
	cleaned = whitespacePattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.ToLower(strings.TrimSpace(cleaned))
	if cleaned == "" {
		return strings.ToLower(strings.TrimSpace(query))
	}

	words := strings.Split(cleaned, " ")
	filtered := make([]string, 0, len(words))
	for _, word := range words {
		if _, ok := stopWords[word]; ok {
			continue
		}
		filtered = append(filtered, word)
	}
	if len(filtered) == 0 {
		return cleaned
	}
	return strings.Join(filtered, " ")
}

// Keywords extracts the identity-bearing tokens of a query: normalized words
// longer than two characters with stop words removed.
func Keywords(query string) []string {
	words := strings.Split(Normalize(query), " ")
	keywords := make([]string, 0, len(words))
	for _, word := range words {
		if len([]rune(word)) <= 2 {
			continue
		}
		if _, ok := stopWords[word]; ok {
			continue
		}
		keywords = append(keywords, word)
	}
	return keywords
}

// KeywordOverlap returns the size of the intersection of two keyword slices.
func KeywordOverlap(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, word := range a {
		set[word] = struct{}{}
	}
	count := 0
	for _, word := range b {
		if _, ok := set[word]; ok {
			count++
			delete(set, word)
		}
	}
	return count
}
